package model

import "time"

// ReportTypeLast3Sessions is the report produced from the 3 most recent sessions
const ReportTypeLast3Sessions = "last3Sessions"

// Report is a stored insight-generation result for a context
type Report struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	UserID     string    `json:"userId" bson:"userId"`
	ContextID  string    `json:"contextId" bson:"contextId"`
	ReportType string    `json:"reportType" bson:"reportType"`
	FullReport string    `json:"fullReport" bson:"fullReport"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// InsightInput is the bounded payload forwarded to the insight generator
type InsightInput struct {
	ContextInfo     InsightContextInfo `json:"contextInfo"`
	Last3Reflection []InsightSession   `json:"last3Reflections"`
}

// InsightContextInfo describes the context being summarized
type InsightContextInfo struct {
	ContextTitle       string `json:"contextTitle"`
	ContextDescription string `json:"contextDescription"`
}

// InsightSession pairs a session's notes with its reflection, if any
type InsightSession struct {
	Reflection   *ReflectionPayload `json:"reflection"`
	SessionNotes string             `json:"sessionNotes"`
}

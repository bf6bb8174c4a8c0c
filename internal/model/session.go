package model

import "time"

// Session is one timed unit of work within a context
type Session struct {
	ID           string     `json:"id" bson:"_id,omitempty"`
	UserID       string     `json:"userId" bson:"userId"`
	ContextID    string     `json:"contextId" bson:"contextId"`
	Intention    string     `json:"intention,omitempty" bson:"intention,omitempty"` // set at creation, never updated
	Notes        string     `json:"notes" bson:"notes"`
	Duration     int        `json:"duration" bson:"duration"` // elapsed whole seconds, >= 0
	CreatedAt    time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt" bson:"updatedAt"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty" bson:"finishedAt,omitempty"`
	ReflectionID string     `json:"reflectionId,omitempty" bson:"reflectionId,omitempty"`
}

// Completed reports whether the session has been finalized.
func (s *Session) Completed() bool {
	return s.FinishedAt != nil
}

// SessionSummary joins a completed session with its reflection
type SessionSummary struct {
	Session    *Session    `json:"session"`
	Reflection *Reflection `json:"reflection,omitempty"`
}

package model

import "time"

// ReflectionPayload is the structured three-field retrospective
type ReflectionPayload struct {
	WhatWentWell string `json:"whatWentWell" bson:"whatWentWell"`
	WhatBlocked  string `json:"whatBlocked" bson:"whatBlocked"`
	WhatNext     string `json:"whatNext" bson:"whatNext"`
}

// Reflection is attached to exactly one completed session
type Reflection struct {
	ID         string            `json:"id" bson:"_id,omitempty"`
	UserID     string            `json:"userId" bson:"userId"`
	SessionID  string            `json:"sessionId" bson:"sessionId"`
	Reflection ReflectionPayload `json:"reflection" bson:"reflection"`
	CreatedAt  time.Time         `json:"createdAt" bson:"createdAt"`
}

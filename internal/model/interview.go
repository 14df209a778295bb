package model

import "time"

// InterviewStatus is the lifecycle state of one respondent's interview
type InterviewStatus string

const (
	InterviewNotStarted InterviewStatus = "not_started"
	InterviewInProgress InterviewStatus = "in_progress"
	InterviewCompleted  InterviewStatus = "completed"
	InterviewAbandoned  InterviewStatus = "abandoned"
)

// InterviewAnswer is one entry of the ordered answer log
type InterviewAnswer struct {
	QuestionCode  string    `json:"questionCode" bson:"questionCode"`
	RawValue      string    `json:"rawValue" bson:"rawValue"`
	MatchedOption string    `json:"matchedOption,omitempty" bson:"matchedOption,omitempty"` // option value
	NoMatch       bool      `json:"noMatch,omitempty" bson:"noMatch,omitempty"`
	AnsweredAt    time.Time `json:"answeredAt" bson:"answeredAt"`
}

// NoMatchAudit records a choice answer that matched none of the declared
// options. Kept for later review of under-specified option lists.
type NoMatchAudit struct {
	QuestionCode string    `json:"questionCode" bson:"questionCode"`
	RawValue     string    `json:"rawValue" bson:"rawValue"`
	At           time.Time `json:"at" bson:"at"`
}

// InterviewState is the serialized state of one interview session. It lives
// in the session cache while the interview is running and is archived to the
// response collection on completion or abandonment.
type InterviewState struct {
	ID              string            `json:"id" bson:"_id,omitempty"`
	QuestionnaireID string            `json:"questionnaireId" bson:"questionnaireId"`
	Version         int               `json:"version" bson:"version"`
	EnumeratorID    string            `json:"enumeratorId" bson:"enumeratorId"`
	Status          InterviewStatus   `json:"status" bson:"status"`
	CurrentCode     string            `json:"currentCode,omitempty" bson:"currentCode,omitempty"`
	Answers         []InterviewAnswer `json:"answers" bson:"answers"`
	Audit           []NoMatchAudit    `json:"audit,omitempty" bson:"audit,omitempty"`
	StartedAt       time.Time         `json:"startedAt" bson:"startedAt"`
	UpdatedAt       time.Time         `json:"updatedAt" bson:"updatedAt"`
	EndedAt         *time.Time        `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
}

package model

// QuestionType defines the response type of a question
type QuestionType string

const (
	QuestionTypeText         QuestionType = "text"
	QuestionTypeNumber       QuestionType = "number"
	QuestionTypeDate         QuestionType = "date"
	QuestionTypeSingleChoice QuestionType = "single_choice"
	QuestionTypeMultiChoice  QuestionType = "multi_choice"
	QuestionTypeBoolean      QuestionType = "boolean"
)

// IsChoice reports whether answers to this type are matched against declared options
func (t QuestionType) IsChoice() bool {
	return t == QuestionTypeSingleChoice || t == QuestionTypeMultiChoice || t == QuestionTypeBoolean
}

// Option is one declared answer choice of a question
type Option struct {
	Value string `json:"value" bson:"value"` // canonical token, e.g. "cote_divoire"
	Label string `json:"label" bson:"label"` // display text shown to the respondent
	// GotoTarget is the code of the question to jump to when this option is
	// chosen. Empty means fall through to the default next question.
	GotoTarget string `json:"gotoTarget,omitempty" bson:"gotoTarget,omitempty"`
}

// Question is one item of the questionnaire
type Question struct {
	Code     string       `json:"code" bson:"code"` // globally unique, e.g. "Q006"
	Text     string       `json:"text" bson:"text"`
	Type     QuestionType `json:"type" bson:"type"`
	Required bool         `json:"required" bson:"required"`
	Unit     string       `json:"unit,omitempty" bson:"unit,omitempty"` // e.g. "ha", "kg"
	Options  []Option     `json:"options,omitempty" bson:"options,omitempty"`

	// Ordering metadata, denormalized from the owning volet/section when the
	// questionnaire is flattened for graph construction
	VoletOrdre   int `json:"voletOrdre" bson:"voletOrdre"`
	SectionOrdre int `json:"sectionOrdre" bson:"sectionOrdre"`
}

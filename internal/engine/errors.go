package engine

import (
	"errors"
	"fmt"

	"agricensus/internal/model"
)

var (
	// ErrEmptyQuestionnaire is returned when a session is started against a
	// questionnaire with no questions.
	ErrEmptyQuestionnaire = errors.New("questionnaire has no questions")

	// ErrSessionNotStarted is returned by operations that need a running session.
	ErrSessionNotStarted = errors.New("interview session not started")

	// ErrSessionFinished is returned when submitting to a completed or abandoned session.
	ErrSessionFinished = errors.New("interview session already finished")

	// ErrUnknownQuestion is returned when a question code is absent from the graph.
	ErrUnknownQuestion = errors.New("question not in graph")
)

// MalformedQuestionnaireError aborts graph construction entirely.
type MalformedQuestionnaireError struct {
	QuestionCode string
	Reason       string
}

func (e *MalformedQuestionnaireError) Error() string {
	if e.QuestionCode == "" {
		return "malformed questionnaire: " + e.Reason
	}
	return fmt.Sprintf("malformed questionnaire: question %s: %s", e.QuestionCode, e.Reason)
}

// InvalidAnswerError is returned when a raw answer fails type validation.
// The session stays on the current question; the caller must resubmit.
type InvalidAnswerError struct {
	QuestionCode string
	Type         model.QuestionType
	RawValue     string
	Reason       string
}

func (e *InvalidAnswerError) Error() string {
	return fmt.Sprintf("invalid answer for %s (%s): %s", e.QuestionCode, e.Type, e.Reason)
}

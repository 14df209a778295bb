package engine

import (
	"strconv"
	"strings"
	"time"

	"agricensus/internal/model"
)

// Status is the lifecycle state of an interview session
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusAbandoned  Status = "abandoned"
)

// dateLayouts accepted for date answers. Field tablets emit both forms.
var dateLayouts = []string{"2006-01-02", "02/01/2006"}

// Session drives one respondent's traversal of the questionnaire graph from
// the first question to completion. It holds a shared read-only reference to
// the graph; a session instance must only be driven by one sequential caller.
type Session struct {
	graph *Graph

	status      Status
	currentCode string
	answers     []model.InterviewAnswer
	audit       []model.NoMatchAudit
}

// Snapshot is the serializable state of a session, used to park a running
// interview between calls and resume it against the same graph version.
type Snapshot struct {
	Status      Status                  `json:"status"`
	CurrentCode string                  `json:"currentCode,omitempty"`
	Answers     []model.InterviewAnswer `json:"answers,omitempty"`
	Audit       []model.NoMatchAudit    `json:"audit,omitempty"`
}

// NewSession creates a not-yet-started session bound to a graph version.
func NewSession(g *Graph) *Session {
	return &Session{graph: g, status: StatusNotStarted}
}

// Restore rebuilds a session from a snapshot against the graph version it was
// originally bound to.
func Restore(g *Graph, snap Snapshot) (*Session, error) {
	if snap.CurrentCode != "" {
		if _, ok := g.Node(snap.CurrentCode); !ok {
			return nil, ErrUnknownQuestion
		}
	}
	s := &Session{
		graph:       g,
		status:      snap.Status,
		currentCode: snap.CurrentCode,
		answers:     append([]model.InterviewAnswer(nil), snap.Answers...),
		audit:       append([]model.NoMatchAudit(nil), snap.Audit...),
	}
	if s.status == "" {
		s.status = StatusNotStarted
	}
	return s, nil
}

// Snapshot exports the session state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Status:      s.status,
		CurrentCode: s.currentCode,
		Answers:     append([]model.InterviewAnswer(nil), s.answers...),
		Audit:       append([]model.NoMatchAudit(nil), s.audit...),
	}
}

// Status returns the session lifecycle state.
func (s *Session) Status() Status {
	return s.status
}

// Start positions the session on the first question in global order.
func (s *Session) Start() error {
	if s.status != StatusNotStarted {
		return ErrSessionFinished
	}
	first, ok := s.graph.First()
	if !ok {
		return ErrEmptyQuestionnaire
	}
	s.currentCode = first
	s.status = StatusInProgress
	return nil
}

// CurrentQuestion returns the question the session is waiting on.
func (s *Session) CurrentQuestion() (model.Question, bool) {
	if s.status != StatusInProgress {
		return model.Question{}, false
	}
	node, ok := s.graph.Node(s.currentCode)
	if !ok {
		return model.Question{}, false
	}
	return node.Question, true
}

// SubmitAnswer validates the raw value against the current question's type,
// matches it to a declared option for choice questions, appends it to the
// answer log and advances to the resolved next question. A type validation
// failure returns InvalidAnswerError and leaves the session where it is. An
// unmatched choice answer is not an error: it advances along the default edge
// and is recorded in the no-match audit trail.
func (s *Session) SubmitAnswer(raw string) (Next, error) {
	switch s.status {
	case StatusNotStarted:
		return Next{}, ErrSessionNotStarted
	case StatusCompleted, StatusAbandoned:
		return Next{}, ErrSessionFinished
	}

	node, ok := s.graph.Node(s.currentCode)
	if !ok {
		return Next{}, ErrUnknownQuestion
	}
	q := node.Question

	if err := validateType(q, raw); err != nil {
		return Next{}, err
	}

	var match Match
	var matched bool
	if q.Type.IsChoice() {
		match, matched = matchChoice(s.graph, q, raw)
	}

	next, err := ResolveNext(s.graph, s.currentCode, match, matched)
	if err != nil {
		return Next{}, err
	}

	answer := model.InterviewAnswer{
		QuestionCode: q.Code,
		RawValue:     raw,
		AnsweredAt:   time.Now(),
	}
	if matched {
		answer.MatchedOption = match.Option.Value
	} else if q.Type.IsChoice() && strings.TrimSpace(raw) != "" {
		answer.NoMatch = true
		s.audit = append(s.audit, model.NoMatchAudit{
			QuestionCode: q.Code,
			RawValue:     raw,
			At:           answer.AnsweredAt,
		})
	}
	s.answers = append(s.answers, answer)

	if next.Terminal {
		s.currentCode = ""
		s.status = StatusCompleted
	} else {
		s.currentCode = next.Code
	}
	return next, nil
}

// Abandon ends the session from any non-terminal state, keeping the answer
// log as recorded so far.
func (s *Session) Abandon() error {
	if s.status == StatusCompleted || s.status == StatusAbandoned {
		return ErrSessionFinished
	}
	s.status = StatusAbandoned
	s.currentCode = ""
	return nil
}

// History returns a copy of the ordered answer log.
func (s *Session) History() []model.InterviewAnswer {
	return append([]model.InterviewAnswer(nil), s.answers...)
}

// Audit returns the no-match audit entries recorded so far.
func (s *Session) Audit() []model.NoMatchAudit {
	return append([]model.NoMatchAudit(nil), s.audit...)
}

// matchChoice runs the matcher for a choice question. Multi-choice answers
// may carry several selections separated by ";" or ","; the first declared
// option carrying an override wins among the matches, otherwise the first
// matched selection, mirroring the declaration-order tie-break of the
// matcher itself.
func matchChoice(g *Graph, q model.Question, raw string) (Match, bool) {
	if q.Type != model.QuestionTypeMultiChoice {
		return MatchAnswer(q, raw)
	}

	var matches []Match
	for _, part := range splitMulti(raw) {
		if m, ok := MatchAnswer(q, part); ok {
			matches = append(matches, m)
		}
	}
	if len(matches) == 0 {
		return Match{}, false
	}

	node, _ := g.Node(q.Code)
	best := matches[0]
	for _, m := range matches {
		_, hasOverride := node.Overrides[m.Option.Value]
		_, bestOverride := node.Overrides[best.Option.Value]
		switch {
		case hasOverride && !bestOverride:
			best = m
		case hasOverride == bestOverride && m.Index < best.Index:
			best = m
		}
	}
	return best, true
}

func splitMulti(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ';' || r == ','
	})
}

// validateType checks the raw value against the question's declared type.
func validateType(q model.Question, raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		if q.Required {
			return &InvalidAnswerError{QuestionCode: q.Code, Type: q.Type, RawValue: raw, Reason: "answer is required"}
		}
		return nil
	}

	switch q.Type {
	case model.QuestionTypeNumber:
		// Field data uses both decimal separators.
		normalized := strings.ReplaceAll(trimmed, ",", ".")
		if _, err := strconv.ParseFloat(normalized, 64); err != nil {
			return &InvalidAnswerError{QuestionCode: q.Code, Type: q.Type, RawValue: raw, Reason: "not a number"}
		}
	case model.QuestionTypeDate:
		if !parseableDate(trimmed) {
			return &InvalidAnswerError{QuestionCode: q.Code, Type: q.Type, RawValue: raw, Reason: "not a date"}
		}
	}
	return nil
}

func parseableDate(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"agricensus/internal/cache"
	"agricensus/internal/engine"
	"agricensus/internal/model"
	"agricensus/internal/repository"
)

var (
	ErrInterviewNotFound  = errors.New("interview not found")
	ErrNoPublishedVersion = errors.New("questionnaire has no published version")
)

// Broadcaster pushes interview progress events to supervisors over WebSocket
type Broadcaster interface {
	BroadcastToSupervisors(questionnaireID string, msgType string, payload interface{})
}

// SubmitResult is returned after an accepted answer
type SubmitResult struct {
	Answer   model.InterviewAnswer `json:"answer"`
	Next     *model.Question       `json:"next,omitempty"`
	Terminal bool                  `json:"terminal"`
}

// InterviewService drives interview sessions against published questionnaire
// versions. Live session state is parked in Redis between calls; graphs are
// built once per version and shared read-only.
type InterviewService struct {
	qRepo       repository.QuestionnaireRepo
	respRepo    repository.ResponseRepo
	interviews  cache.InterviewCache
	snapshots   cache.QuestionnaireCache
	broadcaster Broadcaster

	mu     sync.RWMutex
	graphs map[string]*engine.Graph // "questionnaireId:vN" -> immutable graph
}

// NewInterviewService creates a new interview service
func NewInterviewService(
	qRepo repository.QuestionnaireRepo,
	respRepo repository.ResponseRepo,
	interviews cache.InterviewCache,
	snapshots cache.QuestionnaireCache,
) *InterviewService {
	return &InterviewService{
		qRepo:      qRepo,
		respRepo:   respRepo,
		interviews: interviews,
		snapshots:  snapshots,
		graphs:     make(map[string]*engine.Graph),
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *InterviewService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Start opens an interview against the published version of a questionnaire
// and returns the created state together with the first question.
func (s *InterviewService) Start(ctx context.Context, questionnaireID, enumeratorID string) (*model.InterviewState, *model.Question, error) {
	published, err := s.qRepo.GetPublished(ctx, questionnaireID)
	if err != nil {
		return nil, nil, err
	}
	if published == nil {
		return nil, nil, ErrNoPublishedVersion
	}

	g, err := s.graphFor(ctx, published.QuestionnaireID, published.Version)
	if err != nil {
		return nil, nil, err
	}

	session := engine.NewSession(g)
	if err := session.Start(); err != nil {
		return nil, nil, err
	}

	now := time.Now()
	state := &model.InterviewState{
		ID:              "itv_" + uuid.New().String()[:8],
		QuestionnaireID: published.QuestionnaireID,
		Version:         published.Version,
		EnumeratorID:    enumeratorID,
		StartedAt:       now,
		UpdatedAt:       now,
	}
	applySnapshot(state, session.Snapshot())

	if err := s.interviews.Set(ctx, state); err != nil {
		return nil, nil, fmt.Errorf("store interview state: %w", err)
	}

	first, _ := session.CurrentQuestion()
	s.notify(state.QuestionnaireID, "interview_started", map[string]interface{}{
		"interviewId":  state.ID,
		"enumeratorId": state.EnumeratorID,
		"version":      state.Version,
	})
	return state, &first, nil
}

// Submit validates and records one answer, advancing the session. The state
// is resumed from the cache against the graph version the interview was
// bound to at start, so a publish happening mid-interview never changes the
// flow underfoot.
func (s *InterviewService) Submit(ctx context.Context, interviewID, rawValue string) (*SubmitResult, error) {
	state, session, err := s.resume(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	next, err := session.SubmitAnswer(rawValue)
	if err != nil {
		return nil, err
	}

	applySnapshot(state, session.Snapshot())
	answers := state.Answers
	last := answers[len(answers)-1]
	if last.NoMatch {
		log.Printf("interview %s: no option matched %q on %s (audit)", state.ID, rawValue, last.QuestionCode)
	}

	result := &SubmitResult{Answer: last, Terminal: next.Terminal}

	if next.Terminal {
		if err := s.archive(ctx, state); err != nil {
			return nil, err
		}
		s.notify(state.QuestionnaireID, "interview_completed", map[string]interface{}{
			"interviewId": state.ID,
			"answers":     len(state.Answers),
		})
		return result, nil
	}

	if q, ok := session.CurrentQuestion(); ok {
		result.Next = &q
	}
	if err := s.interviews.Set(ctx, state); err != nil {
		return nil, fmt.Errorf("store interview state: %w", err)
	}
	s.notify(state.QuestionnaireID, "answer_recorded", map[string]interface{}{
		"interviewId":  state.ID,
		"questionCode": last.QuestionCode,
		"noMatch":      last.NoMatch,
	})
	return result, nil
}

// Abandon ends an interview early, archiving the answer log as-is.
func (s *InterviewService) Abandon(ctx context.Context, interviewID string) error {
	state, session, err := s.resume(ctx, interviewID)
	if err != nil {
		return err
	}
	if err := session.Abandon(); err != nil {
		return err
	}
	applySnapshot(state, session.Snapshot())
	if err := s.archive(ctx, state); err != nil {
		return err
	}
	s.notify(state.QuestionnaireID, "interview_abandoned", map[string]interface{}{
		"interviewId": state.ID,
		"answers":     len(state.Answers),
	})
	return nil
}

// Progress returns the current state of an interview, live or archived.
func (s *InterviewService) Progress(ctx context.Context, interviewID string) (*model.InterviewState, error) {
	state, err := s.interviews.Get(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state, err = s.respRepo.GetByInterviewID(ctx, interviewID)
		if err != nil {
			return nil, err
		}
	}
	if state == nil {
		return nil, ErrInterviewNotFound
	}
	return state, nil
}

// Responses returns the archived interviews of a questionnaire across all
// versions.
func (s *InterviewService) Responses(ctx context.Context, questionnaireID string) ([]*model.InterviewState, error) {
	return s.respRepo.ListByQuestionnaire(ctx, questionnaireID)
}

// NoMatchAudits returns archived interviews holding no-match audit entries,
// the review queue for under-specified option lists.
func (s *InterviewService) NoMatchAudits(ctx context.Context, questionnaireID string) ([]*model.InterviewState, error) {
	return s.respRepo.ListWithNoMatchAudits(ctx, questionnaireID)
}

// CurrentQuestion returns the question a live interview is waiting on.
func (s *InterviewService) CurrentQuestion(ctx context.Context, interviewID string) (*model.Question, error) {
	_, session, err := s.resume(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	q, ok := session.CurrentQuestion()
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (s *InterviewService) resume(ctx context.Context, interviewID string) (*model.InterviewState, *engine.Session, error) {
	state, err := s.interviews.Get(ctx, interviewID)
	if err != nil {
		return nil, nil, err
	}
	if state == nil {
		return nil, nil, ErrInterviewNotFound
	}

	g, err := s.graphFor(ctx, state.QuestionnaireID, state.Version)
	if err != nil {
		return nil, nil, err
	}
	session, err := engine.Restore(g, toSnapshot(state))
	if err != nil {
		return nil, nil, err
	}
	return state, session, nil
}

func (s *InterviewService) archive(ctx context.Context, state *model.InterviewState) error {
	now := time.Now()
	state.EndedAt = &now
	if err := s.respRepo.SaveInterview(ctx, state); err != nil {
		return fmt.Errorf("archive interview: %w", err)
	}
	if err := s.interviews.Delete(ctx, state.ID); err != nil {
		log.Printf("interview %s: failed to evict cached state: %v", state.ID, err)
	}
	return nil
}

// graphFor returns the immutable graph of one questionnaire version, building
// it at most once per process.
func (s *InterviewService) graphFor(ctx context.Context, questionnaireID string, version int) (*engine.Graph, error) {
	key := fmt.Sprintf("%s:v%d", questionnaireID, version)

	s.mu.RLock()
	g, ok := s.graphs[key]
	s.mu.RUnlock()
	if ok {
		return g, nil
	}

	q, err := s.snapshots.Get(ctx, questionnaireID, version)
	if err != nil {
		log.Printf("questionnaire cache read failed, falling back to mongo: %v", err)
	}
	if q == nil {
		q, err = s.qRepo.GetVersion(ctx, questionnaireID, version)
		if err != nil {
			return nil, err
		}
		if q == nil {
			return nil, ErrQuestionnaireNotFound
		}
		if err := s.snapshots.Set(ctx, q); err != nil {
			log.Printf("questionnaire cache write failed: %v", err)
		}
	}

	g, err = engine.BuildGraph(q.QuestionnaireID, q.Version, q.FlattenQuestions())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if existing, ok := s.graphs[key]; ok {
		g = existing
	} else {
		s.graphs[key] = g
	}
	s.mu.Unlock()
	return g, nil
}

func (s *InterviewService) notify(questionnaireID, msgType string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSupervisors(questionnaireID, msgType, payload)
	}
}

func applySnapshot(state *model.InterviewState, snap engine.Snapshot) {
	state.Status = model.InterviewStatus(snap.Status)
	state.CurrentCode = snap.CurrentCode
	state.Answers = snap.Answers
	state.Audit = snap.Audit
	state.UpdatedAt = time.Now()
}

func toSnapshot(state *model.InterviewState) engine.Snapshot {
	return engine.Snapshot{
		Status:      engine.Status(state.Status),
		CurrentCode: state.CurrentCode,
		Answers:     state.Answers,
		Audit:       state.Audit,
	}
}

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"agricensus/internal/model"
	"agricensus/internal/repository"
)

// In-memory doubles for the mongo repositories and redis caches so the
// services can be exercised without infrastructure.

type fakeQuestionnaireRepo struct {
	mu   sync.Mutex
	docs []*model.Questionnaire
}

func (r *fakeQuestionnaireRepo) Create(ctx context.Context, q *model.Questionnaire) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	q.CreatedAt = now
	q.UpdatedAt = now
	if q.ID == "" {
		q.ID = fmt.Sprintf("doc_%d", len(r.docs)+1)
	}
	if q.QuestionnaireID == "" {
		q.QuestionnaireID = q.ID
	}
	clone := *q
	r.docs = append(r.docs, &clone)
	return q.ID, nil
}

func (r *fakeQuestionnaireRepo) GetByID(ctx context.Context, id string) (*model.Questionnaire, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.docs {
		if d.ID == id {
			clone := *d
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeQuestionnaireRepo) GetVersion(ctx context.Context, questionnaireID string, version int) (*model.Questionnaire, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.docs {
		if d.QuestionnaireID == questionnaireID && d.Version == version {
			clone := *d
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeQuestionnaireRepo) GetPublished(ctx context.Context, questionnaireID string) (*model.Questionnaire, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *model.Questionnaire
	for _, d := range r.docs {
		if d.QuestionnaireID == questionnaireID && d.Statut == model.QuestionnairePublished {
			if best == nil || d.Version > best.Version {
				best = d
			}
		}
	}
	if best == nil {
		return nil, nil
	}
	clone := *best
	return &clone, nil
}

func (r *fakeQuestionnaireRepo) GetLatestDraft(ctx context.Context, questionnaireID string) (*model.Questionnaire, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *model.Questionnaire
	for _, d := range r.docs {
		if d.QuestionnaireID == questionnaireID && d.Statut == model.QuestionnaireDraft {
			if best == nil || d.Version > best.Version {
				best = d
			}
		}
	}
	if best == nil {
		return nil, nil
	}
	clone := *best
	return &clone, nil
}

func (r *fakeQuestionnaireRepo) ListVersions(ctx context.Context, questionnaireID string) ([]*model.Questionnaire, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Questionnaire
	for _, d := range r.docs {
		if d.QuestionnaireID == questionnaireID {
			clone := *d
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeQuestionnaireRepo) Update(ctx context.Context, q *model.Questionnaire) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, d := range r.docs {
		if d.ID == q.ID {
			clone := *q
			clone.UpdatedAt = time.Now()
			r.docs[i] = &clone
			return nil
		}
	}
	return ErrQuestionnaireNotFound
}

func (r *fakeQuestionnaireRepo) SaveOptionGotoTarget(ctx context.Context, questionnaireID string, version int, questionCode, optionValue, target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.docs {
		if d.QuestionnaireID != questionnaireID || d.Version != version || d.Statut != model.QuestionnaireDraft {
			continue
		}
		for vi := range d.Volets {
			for si := range d.Volets[vi].Sections {
				for qi := range d.Volets[vi].Sections[si].Questions {
					q := &d.Volets[vi].Sections[si].Questions[qi]
					if q.Code != questionCode {
						continue
					}
					for oi := range q.Options {
						if q.Options[oi].Value == optionValue {
							q.Options[oi].GotoTarget = target
							d.UpdatedAt = time.Now()
							return nil
						}
					}
				}
			}
		}
	}
	return repository.ErrVersionConflict
}

type fakeResponseRepo struct {
	mu     sync.Mutex
	states map[string]*model.InterviewState
}

func newFakeResponseRepo() *fakeResponseRepo {
	return &fakeResponseRepo{states: make(map[string]*model.InterviewState)}
}

func (r *fakeResponseRepo) SaveInterview(ctx context.Context, state *model.InterviewState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *state
	r.states[state.ID] = &clone
	return nil
}

func (r *fakeResponseRepo) GetByInterviewID(ctx context.Context, id string) (*model.InterviewState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.states[id]
	if !ok {
		return nil, nil
	}
	clone := *s
	return &clone, nil
}

func (r *fakeResponseRepo) ListByQuestionnaire(ctx context.Context, questionnaireID string) ([]*model.InterviewState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.InterviewState
	for _, s := range r.states {
		if s.QuestionnaireID == questionnaireID {
			clone := *s
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeResponseRepo) ListWithNoMatchAudits(ctx context.Context, questionnaireID string) ([]*model.InterviewState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.InterviewState
	for _, s := range r.states {
		if s.QuestionnaireID == questionnaireID && len(s.Audit) > 0 {
			clone := *s
			out = append(out, &clone)
		}
	}
	return out, nil
}

type fakeInterviewCache struct {
	mu     sync.Mutex
	states map[string]*model.InterviewState
}

func newFakeInterviewCache() *fakeInterviewCache {
	return &fakeInterviewCache{states: make(map[string]*model.InterviewState)}
}

func (c *fakeInterviewCache) Set(ctx context.Context, state *model.InterviewState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clone := *state
	c.states[state.ID] = &clone
	return nil
}

func (c *fakeInterviewCache) Get(ctx context.Context, id string) (*model.InterviewState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.states[id]
	if !ok {
		return nil, nil
	}
	clone := *s
	return &clone, nil
}

func (c *fakeInterviewCache) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, id)
	return nil
}

type fakeQuestionnaireCache struct {
	mu   sync.Mutex
	docs map[string]*model.Questionnaire
	hits int
}

func newFakeQuestionnaireCache() *fakeQuestionnaireCache {
	return &fakeQuestionnaireCache{docs: make(map[string]*model.Questionnaire)}
}

func (c *fakeQuestionnaireCache) Set(ctx context.Context, q *model.Questionnaire) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clone := *q
	c.docs[fmt.Sprintf("%s:v%d", q.QuestionnaireID, q.Version)] = &clone
	return nil
}

func (c *fakeQuestionnaireCache) Get(ctx context.Context, questionnaireID string, version int) (*model.Questionnaire, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.docs[fmt.Sprintf("%s:v%d", questionnaireID, version)]
	if !ok {
		return nil, nil
	}
	c.hits++
	clone := *q
	return &clone, nil
}

type broadcastEvent struct {
	QuestionnaireID string
	MsgType         string
	Payload         interface{}
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []broadcastEvent
}

func (b *fakeBroadcaster) BroadcastToSupervisors(questionnaireID string, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcastEvent{questionnaireID, msgType, payload})
}

func (b *fakeBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.MsgType
	}
	return out
}

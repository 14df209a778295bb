package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"agricensus/internal/engine"
	"agricensus/internal/model"
	"agricensus/internal/repository"
)

var (
	ErrQuestionnaireNotFound = errors.New("questionnaire not found")

	// ErrValidationBlocked is returned when publication is refused because
	// the graph has dangling references or cycles.
	ErrValidationBlocked = errors.New("questionnaire has blocking validation findings")
)

// QuestionnaireService handles questionnaire authoring, validation and
// publication. Structural validation runs here, before a version is
// published, never during a live interview.
type QuestionnaireService struct {
	repo repository.QuestionnaireRepo
}

// NewQuestionnaireService creates a new questionnaire service
func NewQuestionnaireService(repo repository.QuestionnaireRepo) *QuestionnaireService {
	return &QuestionnaireService{repo: repo}
}

// Create stores a new questionnaire as version 1 draft
func (s *QuestionnaireService) Create(ctx context.Context, q *model.Questionnaire) (string, error) {
	q.Version = 1
	q.Statut = model.QuestionnaireDraft
	return s.repo.Create(ctx, q)
}

// Get returns one questionnaire version document
func (s *QuestionnaireService) Get(ctx context.Context, id string) (*model.Questionnaire, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrQuestionnaireNotFound
	}
	return q, nil
}

// ListVersions returns all versions of a questionnaire
func (s *QuestionnaireService) ListVersions(ctx context.Context, questionnaireID string) ([]*model.Questionnaire, error) {
	return s.repo.ListVersions(ctx, questionnaireID)
}

// Validate builds the navigation graph of a version and runs the static
// checks over it, returning the findings report for administrative review.
func (s *QuestionnaireService) Validate(ctx context.Context, questionnaireID string, version int) (*engine.Report, error) {
	g, err := s.buildGraph(ctx, questionnaireID, version)
	if err != nil {
		return nil, err
	}
	return engine.Validate(g), nil
}

// Publish freezes the latest draft as a published version. It refuses when
// the graph has dangling references or cycles; a published version with an
// infinite interview path would strand every session bound to it.
func (s *QuestionnaireService) Publish(ctx context.Context, questionnaireID string) (*model.Questionnaire, *engine.Report, error) {
	draft, err := s.repo.GetLatestDraft(ctx, questionnaireID)
	if err != nil {
		return nil, nil, err
	}
	if draft == nil {
		return nil, nil, ErrQuestionnaireNotFound
	}

	g, err := engine.BuildGraph(draft.QuestionnaireID, draft.Version, draft.FlattenQuestions())
	if err != nil {
		return nil, nil, err
	}
	report := engine.Validate(g)
	if report.HasBlocking() {
		return nil, report, ErrValidationBlocked
	}

	draft.Statut = model.QuestionnairePublished
	if err := s.repo.Update(ctx, draft); err != nil {
		return nil, report, err
	}

	// Open a fresh draft so subsequent edits never touch the published
	// version; in-flight interviews keep their frozen graph.
	next := *draft
	next.ID = primitive.NewObjectID().Hex()
	next.Version = draft.Version + 1
	next.Statut = model.QuestionnaireDraft
	if _, err := s.repo.Create(ctx, &next); err != nil {
		return nil, report, fmt.Errorf("open next draft: %w", err)
	}

	return draft, report, nil
}

// SetOptionGotoTarget edits one skip edge on a draft version, guarded by the
// version the administrator read.
func (s *QuestionnaireService) SetOptionGotoTarget(ctx context.Context, questionnaireID string, version int, questionCode, optionValue, target string) error {
	return s.repo.SaveOptionGotoTarget(ctx, questionnaireID, version, questionCode, optionValue, target)
}

func (s *QuestionnaireService) buildGraph(ctx context.Context, questionnaireID string, version int) (*engine.Graph, error) {
	q, err := s.repo.GetVersion(ctx, questionnaireID, version)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrQuestionnaireNotFound
	}
	return engine.BuildGraph(q.QuestionnaireID, q.Version, q.FlattenQuestions())
}

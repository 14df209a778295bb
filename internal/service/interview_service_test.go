package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agricensus/internal/engine"
	"agricensus/internal/model"
)

type interviewFixture struct {
	svc        *InterviewService
	repo       *fakeQuestionnaireRepo
	responses  *fakeResponseRepo
	interviews *fakeInterviewCache
	snapshots  *fakeQuestionnaireCache
	events     *fakeBroadcaster
}

func newInterviewFixture(t *testing.T, docs ...*model.Questionnaire) *interviewFixture {
	t.Helper()
	f := &interviewFixture{
		repo:       &fakeQuestionnaireRepo{},
		responses:  newFakeResponseRepo(),
		interviews: newFakeInterviewCache(),
		snapshots:  newFakeQuestionnaireCache(),
		events:     &fakeBroadcaster{},
	}
	for _, d := range docs {
		if _, err := f.repo.Create(context.Background(), d); err != nil {
			t.Fatalf("seed questionnaire: %v", err)
		}
	}
	f.svc = NewInterviewService(f.repo, f.responses, f.interviews, f.snapshots)
	f.svc.SetBroadcaster(f.events)
	return f
}

func publishedExploitationDoc() *model.Questionnaire {
	doc := exploitationDoc()
	doc.Statut = model.QuestionnairePublished
	return doc
}

func TestInterviewStartWithoutPublishedVersion(t *testing.T) {
	f := newInterviewFixture(t, exploitationDoc()) // draft only

	_, _, err := f.svc.Start(context.Background(), "qnn_rea", "enum_a1")
	assert.ErrorIs(t, err, ErrNoPublishedVersion)
}

func TestInterviewStart(t *testing.T) {
	f := newInterviewFixture(t, publishedExploitationDoc())

	state, first, err := f.svc.Start(context.Background(), "qnn_rea", "enum_a1")
	require.NoError(t, err)
	assert.Contains(t, state.ID, "itv_")
	assert.Equal(t, "qnn_rea", state.QuestionnaireID)
	assert.Equal(t, 1, state.Version)
	assert.Equal(t, "enum_a1", state.EnumeratorID)
	assert.Equal(t, model.InterviewInProgress, state.Status)
	assert.Equal(t, "Q001", state.CurrentCode)
	require.NotNil(t, first)
	assert.Equal(t, "Q001", first.Code)

	cached, err := f.interviews.Get(context.Background(), state.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, []string{"interview_started"}, f.events.types())
}

func TestInterviewSubmitFollowsSkipEdge(t *testing.T) {
	f := newInterviewFixture(t, publishedExploitationDoc())
	state, _, err := f.svc.Start(context.Background(), "qnn_rea", "enum_a1")
	require.NoError(t, err)

	res, err := f.svc.Submit(context.Background(), state.ID, "Non")
	require.NoError(t, err)
	assert.False(t, res.Terminal)
	assert.Equal(t, "Q001", res.Answer.QuestionCode)
	assert.Equal(t, "non", res.Answer.MatchedOption)
	require.NotNil(t, res.Next)
	assert.Equal(t, "Q003", res.Next.Code) // Q002 skipped
}

func TestInterviewCompletionArchives(t *testing.T) {
	f := newInterviewFixture(t, publishedExploitationDoc())
	state, _, err := f.svc.Start(context.Background(), "qnn_rea", "enum_a1")
	require.NoError(t, err)

	for _, answer := range []string{"Non", "Individuel"} {
		res, err := f.svc.Submit(context.Background(), state.ID, answer)
		require.NoError(t, err)
		require.False(t, res.Terminal)
	}

	res, err := f.svc.Submit(context.Background(), state.ID, "12,5")
	require.NoError(t, err)
	assert.True(t, res.Terminal)
	assert.Nil(t, res.Next)

	// Live state evicted, archived copy queryable through Progress.
	cached, err := f.interviews.Get(context.Background(), state.ID)
	require.NoError(t, err)
	assert.Nil(t, cached)

	archived, err := f.svc.Progress(context.Background(), state.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InterviewCompleted, archived.Status)
	assert.Len(t, archived.Answers, 3)
	require.NotNil(t, archived.EndedAt)

	assert.Equal(t, []string{"interview_started", "answer_recorded", "answer_recorded", "interview_completed"}, f.events.types())
}

func TestInterviewSubmitInvalidAnswerKeepsState(t *testing.T) {
	f := newInterviewFixture(t, publishedExploitationDoc())
	state, _, err := f.svc.Start(context.Background(), "qnn_rea", "enum_a1")
	require.NoError(t, err)
	_, err = f.svc.Submit(context.Background(), state.ID, "Non")
	require.NoError(t, err)
	_, err = f.svc.Submit(context.Background(), state.ID, "Individuel")
	require.NoError(t, err)

	// Q004 expects a number.
	_, err = f.svc.Submit(context.Background(), state.ID, "douze")
	var invalid *engine.InvalidAnswerError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "Q004", invalid.QuestionCode)

	q, err := f.svc.CurrentQuestion(context.Background(), state.ID)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, "Q004", q.Code)
}

func TestInterviewNoMatchRecordedInAudit(t *testing.T) {
	f := newInterviewFixture(t, publishedExploitationDoc())
	state, _, err := f.svc.Start(context.Background(), "qnn_rea", "enum_a1")
	require.NoError(t, err)
	_, err = f.svc.Submit(context.Background(), state.ID, "Oui")
	require.NoError(t, err)
	_, err = f.svc.Submit(context.Background(), state.ID, "Kouassi Yao")
	require.NoError(t, err)

	// Q003 is a choice question; an unlisted answer advances on the default
	// edge and lands in the audit trail.
	res, err := f.svc.Submit(context.Background(), state.ID, "GIE familial")
	require.NoError(t, err)
	assert.True(t, res.Answer.NoMatch)
	require.NotNil(t, res.Next)
	assert.Equal(t, "Q004", res.Next.Code)

	progress, err := f.svc.Progress(context.Background(), state.ID)
	require.NoError(t, err)
	require.Len(t, progress.Audit, 1)
	assert.Equal(t, "Q003", progress.Audit[0].QuestionCode)
	assert.Equal(t, "GIE familial", progress.Audit[0].RawValue)
}

func TestInterviewAbandon(t *testing.T) {
	f := newInterviewFixture(t, publishedExploitationDoc())
	state, _, err := f.svc.Start(context.Background(), "qnn_rea", "enum_a1")
	require.NoError(t, err)
	_, err = f.svc.Submit(context.Background(), state.ID, "Non")
	require.NoError(t, err)

	require.NoError(t, f.svc.Abandon(context.Background(), state.ID))

	archived, err := f.svc.Progress(context.Background(), state.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InterviewAbandoned, archived.Status)
	assert.Len(t, archived.Answers, 1)
	require.NotNil(t, archived.EndedAt)

	// The live session is gone.
	_, err = f.svc.Submit(context.Background(), state.ID, "Individuel")
	assert.ErrorIs(t, err, ErrInterviewNotFound)

	types := f.events.types()
	assert.Equal(t, "interview_abandoned", types[len(types)-1])
}

func TestInterviewUnknownID(t *testing.T) {
	f := newInterviewFixture(t, publishedExploitationDoc())

	_, err := f.svc.Submit(context.Background(), "itv_missing", "Oui")
	assert.ErrorIs(t, err, ErrInterviewNotFound)
	assert.ErrorIs(t, f.svc.Abandon(context.Background(), "itv_missing"), ErrInterviewNotFound)
	_, err = f.svc.Progress(context.Background(), "itv_missing")
	assert.ErrorIs(t, err, ErrInterviewNotFound)
}

func TestInterviewStaysOnStartedVersion(t *testing.T) {
	f := newInterviewFixture(t, publishedExploitationDoc())
	state, _, err := f.svc.Start(context.Background(), "qnn_rea", "enum_a1")
	require.NoError(t, err)

	// A new version is published mid-interview with the skip edge removed.
	v2 := exploitationDoc()
	v2.Version = 2
	v2.Statut = model.QuestionnairePublished
	v2.Volets[0].Sections[0].Questions[0].Options[1].GotoTarget = ""
	_, err = f.repo.Create(context.Background(), v2)
	require.NoError(t, err)

	// The running interview keeps its frozen version 1 graph.
	res, err := f.svc.Submit(context.Background(), state.ID, "Non")
	require.NoError(t, err)
	require.NotNil(t, res.Next)
	assert.Equal(t, "Q003", res.Next.Code)

	// New interviews bind to version 2 and follow its default edge.
	state2, _, err := f.svc.Start(context.Background(), "qnn_rea", "enum_b2")
	require.NoError(t, err)
	assert.Equal(t, 2, state2.Version)
	res2, err := f.svc.Submit(context.Background(), state2.ID, "Non")
	require.NoError(t, err)
	require.NotNil(t, res2.Next)
	assert.Equal(t, "Q002", res2.Next.Code)
}

func TestInterviewResponseReview(t *testing.T) {
	f := newInterviewFixture(t, publishedExploitationDoc())

	// First interview completes cleanly.
	clean, _, err := f.svc.Start(context.Background(), "qnn_rea", "enum_a1")
	require.NoError(t, err)
	for _, answer := range []string{"Non", "Individuel", "8"} {
		_, err := f.svc.Submit(context.Background(), clean.ID, answer)
		require.NoError(t, err)
	}

	// Second interview hits a no-match on the status question before
	// abandoning.
	noisy, _, err := f.svc.Start(context.Background(), "qnn_rea", "enum_b2")
	require.NoError(t, err)
	_, err = f.svc.Submit(context.Background(), noisy.ID, "Non")
	require.NoError(t, err)
	_, err = f.svc.Submit(context.Background(), noisy.ID, "GIE familial")
	require.NoError(t, err)
	require.NoError(t, f.svc.Abandon(context.Background(), noisy.ID))

	all, err := f.svc.Responses(context.Background(), "qnn_rea")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	flagged, err := f.svc.NoMatchAudits(context.Background(), "qnn_rea")
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	assert.Equal(t, noisy.ID, flagged[0].ID)
	assert.Equal(t, "GIE familial", flagged[0].Audit[0].RawValue)
}

func TestInterviewGraphBuiltOncePerVersion(t *testing.T) {
	f := newInterviewFixture(t, publishedExploitationDoc())

	_, _, err := f.svc.Start(context.Background(), "qnn_rea", "enum_a1")
	require.NoError(t, err)
	_, _, err = f.svc.Start(context.Background(), "qnn_rea", "enum_b2")
	require.NoError(t, err)

	// First start populated the questionnaire snapshot cache; the second one
	// hit the in-process graph map without re-reading it.
	f.snapshots.mu.Lock()
	stored := len(f.snapshots.docs)
	hits := f.snapshots.hits
	f.snapshots.mu.Unlock()
	assert.Equal(t, 1, stored)
	assert.Zero(t, hits)
}

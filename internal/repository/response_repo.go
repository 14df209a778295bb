package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"agricensus/internal/model"
)

// ResponseRepo archives finished interviews and serves the no-match audit
// queries used to find under-specified option lists.
type ResponseRepo interface {
	SaveInterview(ctx context.Context, state *model.InterviewState) error
	GetByInterviewID(ctx context.Context, id string) (*model.InterviewState, error)
	ListByQuestionnaire(ctx context.Context, questionnaireID string) ([]*model.InterviewState, error)
	ListWithNoMatchAudits(ctx context.Context, questionnaireID string) ([]*model.InterviewState, error)
}

type responseRepo struct {
	collection *mongo.Collection
}

// NewResponseRepo creates a new response repository
func NewResponseRepo(db *mongo.Database) ResponseRepo {
	return &responseRepo{
		collection: db.Collection("responses"),
	}
}

func (r *responseRepo) SaveInterview(ctx context.Context, state *model.InterviewState) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": state.ID}, state, opts)
	return err
}

func (r *responseRepo) GetByInterviewID(ctx context.Context, id string) (*model.InterviewState, error) {
	var state model.InterviewState
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&state)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *responseRepo) ListByQuestionnaire(ctx context.Context, questionnaireID string) ([]*model.InterviewState, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"questionnaireId": questionnaireID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var states []*model.InterviewState
	if err := cursor.All(ctx, &states); err != nil {
		return nil, err
	}
	return states, nil
}

func (r *responseRepo) ListWithNoMatchAudits(ctx context.Context, questionnaireID string) ([]*model.InterviewState, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"questionnaireId": questionnaireID,
		"audit.0":         bson.M{"$exists": true},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var states []*model.InterviewState
	if err := cursor.All(ctx, &states); err != nil {
		return nil, err
	}
	return states, nil
}

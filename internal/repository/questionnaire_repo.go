package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"agricensus/internal/model"
)

// ErrVersionConflict is returned when a goto-target edit targets a version
// that no longer matches what the caller read.
var ErrVersionConflict = errors.New("questionnaire version conflict")

// QuestionnaireRepo handles MongoDB operations for questionnaire versions.
// Each version is its own document; published versions are never rewritten.
type QuestionnaireRepo interface {
	Create(ctx context.Context, q *model.Questionnaire) (string, error)
	GetByID(ctx context.Context, id string) (*model.Questionnaire, error)
	GetVersion(ctx context.Context, questionnaireID string, version int) (*model.Questionnaire, error)
	GetPublished(ctx context.Context, questionnaireID string) (*model.Questionnaire, error)
	GetLatestDraft(ctx context.Context, questionnaireID string) (*model.Questionnaire, error)
	ListVersions(ctx context.Context, questionnaireID string) ([]*model.Questionnaire, error)
	Update(ctx context.Context, q *model.Questionnaire) error
	// SaveOptionGotoTarget sets one option's goto target on a draft version.
	// The filter includes the version the caller read; ErrVersionConflict is
	// returned when nothing matched.
	SaveOptionGotoTarget(ctx context.Context, questionnaireID string, version int, questionCode, optionValue, target string) error
}

type questionnaireRepo struct {
	collection *mongo.Collection
}

// NewQuestionnaireRepo creates a new questionnaire repository
func NewQuestionnaireRepo(db *mongo.Database) QuestionnaireRepo {
	return &questionnaireRepo{
		collection: db.Collection("questionnaires"),
	}
}

func (r *questionnaireRepo) Create(ctx context.Context, q *model.Questionnaire) (string, error) {
	now := time.Now()
	q.CreatedAt = now
	q.UpdatedAt = now
	if q.ID == "" {
		q.ID = primitive.NewObjectID().Hex()
	}
	if q.QuestionnaireID == "" {
		q.QuestionnaireID = q.ID
	}
	if q.Version == 0 {
		q.Version = 1
	}
	if q.Statut == "" {
		q.Statut = model.QuestionnaireDraft
	}

	_, err := r.collection.InsertOne(ctx, q)
	if err != nil {
		return "", err
	}
	return q.ID, nil
}

func (r *questionnaireRepo) GetByID(ctx context.Context, id string) (*model.Questionnaire, error) {
	var q model.Questionnaire
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&q)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *questionnaireRepo) GetVersion(ctx context.Context, questionnaireID string, version int) (*model.Questionnaire, error) {
	var q model.Questionnaire
	err := r.collection.FindOne(ctx, bson.M{
		"questionnaireId": questionnaireID,
		"version":         version,
	}).Decode(&q)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *questionnaireRepo) GetPublished(ctx context.Context, questionnaireID string) (*model.Questionnaire, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})
	var q model.Questionnaire
	err := r.collection.FindOne(ctx, bson.M{
		"questionnaireId": questionnaireID,
		"statut":          model.QuestionnairePublished,
	}, opts).Decode(&q)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *questionnaireRepo) GetLatestDraft(ctx context.Context, questionnaireID string) (*model.Questionnaire, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})
	var q model.Questionnaire
	err := r.collection.FindOne(ctx, bson.M{
		"questionnaireId": questionnaireID,
		"statut":          model.QuestionnaireDraft,
	}, opts).Decode(&q)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *questionnaireRepo) ListVersions(ctx context.Context, questionnaireID string) ([]*model.Questionnaire, error) {
	opts := options.Find().SetSort(bson.D{{Key: "version", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"questionnaireId": questionnaireID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var versions []*model.Questionnaire
	if err := cursor.All(ctx, &versions); err != nil {
		return nil, err
	}
	return versions, nil
}

func (r *questionnaireRepo) Update(ctx context.Context, q *model.Questionnaire) error {
	q.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": q.ID}, q)
	return err
}

func (r *questionnaireRepo) SaveOptionGotoTarget(ctx context.Context, questionnaireID string, version int, questionCode, optionValue, target string) error {
	filter := bson.M{
		"questionnaireId": questionnaireID,
		"version":         version,
		"statut":          model.QuestionnaireDraft,
	}
	update := bson.M{
		"$set": bson.M{
			"volets.$[].sections.$[].questions.$[q].options.$[o].gotoTarget": target,
			"updatedAt": time.Now(),
		},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"q.code": questionCode},
			bson.M{"o.value": optionValue},
		},
	})

	res, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	return nil
}

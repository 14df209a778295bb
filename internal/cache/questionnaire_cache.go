package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"agricensus/internal/model"
)

// Published versions are immutable, so the only invalidation is TTL expiry.
const questionnaireTTL = 12 * time.Hour

// QuestionnaireCache stores questionnaire version snapshots so resuming an
// interview does not re-read MongoDB.
type QuestionnaireCache interface {
	Set(ctx context.Context, q *model.Questionnaire) error
	Get(ctx context.Context, questionnaireID string, version int) (*model.Questionnaire, error)
}

type questionnaireCache struct {
	client *redis.Client
}

// NewQuestionnaireCache creates a new questionnaire snapshot cache
func NewQuestionnaireCache(client *redis.Client) QuestionnaireCache {
	return &questionnaireCache{
		client: client,
	}
}

func questionnaireKey(id string, version int) string {
	return fmt.Sprintf("questionnaire:%s:v%d", id, version)
}

func (c *questionnaireCache) Set(ctx context.Context, q *model.Questionnaire) error {
	data, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, questionnaireKey(q.QuestionnaireID, q.Version), data, questionnaireTTL).Err()
}

func (c *questionnaireCache) Get(ctx context.Context, questionnaireID string, version int) (*model.Questionnaire, error) {
	data, err := c.client.Get(ctx, questionnaireKey(questionnaireID, version)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var q model.Questionnaire
	if err := json.Unmarshal([]byte(data), &q); err != nil {
		return nil, err
	}
	return &q, nil
}

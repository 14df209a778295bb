package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"agricensus/internal/model"
)

// interviewTTL keeps a live interview around for a full field working day.
const interviewTTL = 24 * time.Hour

// InterviewCache stores the live state of running interviews
type InterviewCache interface {
	Set(ctx context.Context, state *model.InterviewState) error
	Get(ctx context.Context, id string) (*model.InterviewState, error)
	Delete(ctx context.Context, id string) error
}

type interviewCache struct {
	client *redis.Client
}

// NewInterviewCache creates a new interview cache
func NewInterviewCache(client *redis.Client) InterviewCache {
	return &interviewCache{
		client: client,
	}
}

func (c *interviewCache) Set(ctx context.Context, state *model.InterviewState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "interview:"+state.ID, data, interviewTTL).Err()
}

func (c *interviewCache) Get(ctx context.Context, id string) (*model.InterviewState, error) {
	data, err := c.client.Get(ctx, "interview:"+id).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state model.InterviewState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *interviewCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, "interview:"+id).Err()
}

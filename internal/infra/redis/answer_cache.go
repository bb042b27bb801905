package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-attempt-service/internal/coordinator"
)

// AnswerCache is a Redis implementation of coordinator.Cache. Keys expire after
// ttl so abandoned attempts do not pile up.
type AnswerCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAnswerCache(client *redis.Client, ttl time.Duration) *AnswerCache {
	return &AnswerCache{client: client, ttl: ttl}
}

func (c *AnswerCache) LoadAnswers(ctx context.Context, userID, quizID string) (coordinator.Answers, error) {
	raw, err := c.client.Get(ctx, coordinator.AnswersKey(userID, quizID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var answers coordinator.Answers
	if err := json.Unmarshal(raw, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

func (c *AnswerCache) SaveAnswers(ctx context.Context, userID, quizID string, answers coordinator.Answers) error {
	payload, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, coordinator.AnswersKey(userID, quizID), payload, c.ttl).Err()
}

func (c *AnswerCache) LoadAttemptID(ctx context.Context, userID, quizID string) (string, error) {
	id, err := c.client.Get(ctx, coordinator.AttemptKey(userID, quizID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return id, err
}

func (c *AnswerCache) SaveAttemptID(ctx context.Context, userID, quizID, attemptID string) error {
	key := coordinator.AttemptKey(userID, quizID)
	if attemptID == "" {
		return c.client.Del(ctx, key).Err()
	}
	return c.client.Set(ctx, key, attemptID, c.ttl).Err()
}

func (c *AnswerCache) Clear(ctx context.Context, userID, quizID string) error {
	return c.client.Del(ctx, coordinator.AnswersKey(userID, quizID), coordinator.AttemptKey(userID, quizID)).Err()
}

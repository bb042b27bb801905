package memory

import (
	"context"
	"sync"

	"quiz-attempt-service/internal/coordinator"
)

// AnswerCache is an in-memory implementation of coordinator.Cache.
type AnswerCache struct {
	mu       sync.RWMutex
	answers  map[string]coordinator.Answers
	attempts map[string]string
}

func NewAnswerCache() *AnswerCache {
	return &AnswerCache{
		answers:  make(map[string]coordinator.Answers),
		attempts: make(map[string]string),
	}
}

func (c *AnswerCache) LoadAnswers(_ context.Context, userID, quizID string) (coordinator.Answers, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stored, ok := c.answers[coordinator.AnswersKey(userID, quizID)]
	if !ok {
		return nil, nil
	}
	out := make(coordinator.Answers, len(stored))
	for k, v := range stored {
		out[k] = v
	}
	return out, nil
}

func (c *AnswerCache) SaveAnswers(_ context.Context, userID, quizID string, answers coordinator.Answers) error {
	copied := make(coordinator.Answers, len(answers))
	for k, v := range answers {
		copied[k] = v
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answers[coordinator.AnswersKey(userID, quizID)] = copied
	return nil
}

func (c *AnswerCache) LoadAttemptID(_ context.Context, userID, quizID string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.attempts[coordinator.AttemptKey(userID, quizID)], nil
}

func (c *AnswerCache) SaveAttemptID(_ context.Context, userID, quizID, attemptID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := coordinator.AttemptKey(userID, quizID)
	if attemptID == "" {
		delete(c.attempts, key)
		return nil
	}
	c.attempts[key] = attemptID
	return nil
}

func (c *AnswerCache) Clear(_ context.Context, userID, quizID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.answers, coordinator.AnswersKey(userID, quizID))
	delete(c.attempts, coordinator.AttemptKey(userID, quizID))
	return nil
}

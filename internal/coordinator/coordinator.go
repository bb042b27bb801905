package coordinator

import (
	"context"
	"errors"
	"fmt"

	"quiz-attempt-service/internal/bank"
	"quiz-attempt-service/internal/domain"
)

// ErrNoUser is returned when the coordinator has no signed-in user to scope its cache.
var ErrNoUser = errors.New("no signed-in user")

// Answers maps question id to the selected choice; nil means unanswered.
type Answers map[string]*int

// Cache is the learner-local store for in-progress work. It is a convenience for
// resuming after a reload; grading never depends on it.
type Cache interface {
	LoadAnswers(ctx context.Context, userID, quizID string) (Answers, error)
	SaveAnswers(ctx context.Context, userID, quizID string, answers Answers) error
	// LoadAttemptID returns "" when no attempt is cached.
	LoadAttemptID(ctx context.Context, userID, quizID string) (string, error)
	// SaveAttemptID with an empty attemptID drops the cached attempt.
	SaveAttemptID(ctx context.Context, userID, quizID, attemptID string) error
	Clear(ctx context.Context, userID, quizID string) error
}

// AnswersKey and AttemptKey are the cache keys shared by cache backends.
func AnswersKey(userID, quizID string) string { return "quiz_answers:" + userID + ":" + quizID }

func AttemptKey(userID, quizID string) string { return "attempt:" + userID + ":" + quizID }

// API is the server surface the coordinator drives.
type API interface {
	StartAttempt(ctx context.Context, quizID string) (string, error)
	SubmitAttempt(ctx context.Context, req domain.SubmitRequest) (domain.SubmitResult, error)
	GetQuiz(ctx context.Context, quizID string) (bank.PublicQuiz, error)
}

// Coordinator drives one learner's attempts and keeps their answers in a local cache.
type Coordinator struct {
	api    API
	cache  Cache
	userID string
}

func New(api API, cache Cache, userID string) *Coordinator {
	return &Coordinator{api: api, cache: cache, userID: userID}
}

// Begin returns the cached attempt for the quiz or starts a new one.
func (c *Coordinator) Begin(ctx context.Context, quizID string) (string, error) {
	if c.userID == "" {
		return "", ErrNoUser
	}
	if id, err := c.cache.LoadAttemptID(ctx, c.userID, quizID); err == nil && id != "" {
		return id, nil
	}
	id, err := c.api.StartAttempt(ctx, quizID)
	if err != nil {
		return "", err
	}
	// best-effort; a lost id only means the next Begin starts a fresh attempt
	_ = c.cache.SaveAttemptID(ctx, c.userID, quizID, id)
	return id, nil
}

// Answer records a choice for a question.
func (c *Coordinator) Answer(ctx context.Context, quizID, questionID string, index int) error {
	if c.userID == "" {
		return ErrNoUser
	}
	answers, err := c.cache.LoadAnswers(ctx, c.userID, quizID)
	if err != nil || answers == nil {
		answers = Answers{}
	}
	idx := index
	answers[questionID] = &idx
	return c.cache.SaveAnswers(ctx, c.userID, quizID, answers)
}

// Answers returns the cached answers for the quiz.
func (c *Coordinator) Answers(ctx context.Context, quizID string) (Answers, error) {
	if c.userID == "" {
		return nil, ErrNoUser
	}
	answers, err := c.cache.LoadAnswers(ctx, c.userID, quizID)
	if err != nil {
		return nil, err
	}
	if answers == nil {
		answers = Answers{}
	}
	return answers, nil
}

// ClearAnswers drops the cached answers but keeps the attempt.
func (c *Coordinator) ClearAnswers(ctx context.Context, quizID string) error {
	if c.userID == "" {
		return ErrNoUser
	}
	return c.cache.SaveAnswers(ctx, c.userID, quizID, Answers{})
}

// Submit sends an answer for every question id, with null for unanswered ones.
// The cache is cleared only after the server accepted the submission, so a failed
// call can be retried with the same answers. When the server no longer knows the
// cached attempt, or it belongs to someone else, the answers move to a fresh one.
func (c *Coordinator) Submit(ctx context.Context, quizID string, questionIDs []string) (domain.SubmitResult, error) {
	attemptID, err := c.Begin(ctx, quizID)
	if err != nil {
		return domain.SubmitResult{}, fmt.Errorf("begin attempt: %w", err)
	}
	answers, err := c.Answers(ctx, quizID)
	if err != nil {
		answers = Answers{}
	}

	payload := make([]domain.AnswerSubmission, 0, len(questionIDs))
	for _, id := range questionIDs {
		payload = append(payload, domain.AnswerSubmission{QuestionID: id, SelectedIndex: answers[id]})
	}
	req := domain.SubmitRequest{AttemptID: attemptID, QuizID: quizID, Answers: payload}

	result, err := c.api.SubmitAttempt(ctx, req)
	if staleAttempt(err) {
		if err := c.cache.SaveAttemptID(ctx, c.userID, quizID, ""); err != nil {
			return domain.SubmitResult{}, fmt.Errorf("drop cached attempt: %w", err)
		}
		if req.AttemptID, err = c.Begin(ctx, quizID); err != nil {
			return domain.SubmitResult{}, fmt.Errorf("begin attempt: %w", err)
		}
		result, err = c.api.SubmitAttempt(ctx, req)
	}
	if err != nil {
		return domain.SubmitResult{}, err
	}
	_ = c.cache.Clear(ctx, c.userID, quizID)
	return result, nil
}

func staleAttempt(err error) bool {
	return errors.Is(err, domain.ErrAttemptNotFound) || errors.Is(err, domain.ErrPermissionDenied)
}

// TakeQuiz loads the quiz and submits the cached answers for all of its questions.
func (c *Coordinator) TakeQuiz(ctx context.Context, quizID string) (domain.SubmitResult, error) {
	quiz, err := c.api.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	ids := make([]string, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		ids = append(ids, q.ID)
	}
	return c.Submit(ctx, quizID, ids)
}

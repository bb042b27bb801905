package app_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/bank"
	"quiz-attempt-service/internal/docstore"
	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/events"
	"quiz-attempt-service/internal/infra/memory"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recordingStore counts writes and can fail or intercept them.
type recordingStore struct {
	docstore.Store
	mu       sync.Mutex
	writes   []string
	failWith func(path string) error
	before   func(path string)
}

func (s *recordingStore) Set(ctx context.Context, path string, data docstore.Document, opts ...docstore.SetOption) error {
	s.mu.Lock()
	s.writes = append(s.writes, path)
	hook := s.before
	s.before = nil
	s.mu.Unlock()
	if hook != nil {
		hook(path)
	}
	if s.failWith != nil {
		if err := s.failWith(path); err != nil {
			return err
		}
	}
	return s.Store.Set(ctx, path, data, opts...)
}

func (s *recordingStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writes)
}

func intPtr(v int) *int { return &v }

func testQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "Basics",
		Questions: []domain.Question{
			{ID: "q1", Text: "2 + 2?", Choices: []string{"3", "4", "5"}, AnswerIndex: 1},
			{ID: "q2", Text: "Smallest prime?", Choices: []string{"2", "1"}, AnswerIndex: 0, Explanation: "1 is not prime"},
			{ID: "q3", Text: "3 * 3?", Choices: []string{"6", "8", "9"}, AnswerIndex: 2},
		},
		// one stored entry was malformed and skipped
		QuestionCount: 4,
	}
}

type fixture struct {
	service *app.AttemptService
	store   *recordingStore
	mem     *memory.DocumentStore
	clock   *clock
	broker  *events.Broker
}

func newFixture(t *testing.T, opts ...app.Option) *fixture {
	t.Helper()
	c := &clock{now: t0}
	mem := memory.NewDocumentStoreWithClock(c.Now)
	store := &recordingStore{Store: mem}
	quizzes := memory.NewQuizRepository(bank.NewStaticLoader(map[string]domain.Quiz{"quiz-1": testQuiz()}), 0)
	broker := events.NewBroker()
	opts = append([]app.Option{app.WithClock(c.Now), app.WithEvents(broker)}, opts...)
	service := app.NewAttemptService(store, quizzes, validator.New(), zerolog.Nop(), opts...)
	return &fixture{service: service, store: store, mem: mem, clock: c, broker: broker}
}

func (f *fixture) start(t *testing.T, user string) string {
	t.Helper()
	id, err := f.service.StartAttempt(context.Background(), user, "quiz-1")
	require.NoError(t, err)
	require.NotEmpty(t, id)
	return id
}

func (f *fixture) attemptDoc(t *testing.T, id string) docstore.Document {
	t.Helper()
	doc, err := f.mem.Get(context.Background(), "attempts/"+id)
	require.NoError(t, err)
	return doc
}

func TestStartAttemptCreatesInProgressAttempt(t *testing.T) {
	f := newFixture(t)

	first := f.start(t, "u1")
	second := f.start(t, "u1")
	require.NotEqual(t, first, second)

	doc := f.attemptDoc(t, first)
	require.Equal(t, "u1", doc["userId"])
	require.Equal(t, "quiz-1", doc["quizId"])
	require.Equal(t, "in_progress", doc["status"])
	require.Equal(t, t0, doc["startTime"])
	require.Equal(t, t0, doc["createdAt"])
}

func TestStartAttemptRequiresCaller(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.StartAttempt(context.Background(), "", "quiz-1")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = f.service.StartAttempt(context.Background(), "u1", "a/b")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	require.Zero(t, f.store.Writes())
}

func TestSubmitGradesAndFinalizes(t *testing.T) {
	f := newFixture(t)
	id := f.start(t, "u1")
	f.clock.Advance(90*time.Second + 400*time.Millisecond)

	outcome, err := f.service.SubmitAttempt(context.Background(), "u1", domain.SubmitRequest{
		AttemptID: id,
		QuizID:    "quiz-1",
		Answers: []domain.AnswerSubmission{
			{QuestionID: "q2", SelectedIndex: intPtr(1)},
			{QuestionID: "q1", SelectedIndex: intPtr(1)},
			{QuestionID: "q3", SelectedIndex: nil},
		},
	})
	require.NoError(t, err)
	require.False(t, outcome.Replayed)
	require.NoError(t, outcome.SummaryErr)
	require.Equal(t, id, outcome.Result.AttemptID)
	require.Equal(t, 1, outcome.Result.Score)
	require.Equal(t, 4, outcome.Result.Total)
	require.Equal(t, intPtr(90), outcome.Result.DurationSeconds)

	view, err := f.service.GetAttempt(context.Background(), "u1", id)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, view.Status)
	require.Equal(t, intPtr(1), view.Score)
	require.Equal(t, intPtr(4), view.Total)
	require.Equal(t, 25, view.Percent)
	require.False(t, view.Passed)

	require.Len(t, view.Details, 3)
	require.Equal(t, "q2", view.Details[0].QuestionID)
	require.False(t, view.Details[0].Correct)
	require.Equal(t, 0, view.Details[0].CorrectIndex)
	require.Equal(t, "1 is not prime", *view.Details[0].Explanation)
	require.True(t, view.Details[1].Correct)
	require.Nil(t, view.Details[1].Explanation)
	require.Nil(t, view.Details[2].SelectedIndex)
	require.False(t, view.Details[2].Correct)

	summary, err := f.mem.Get(context.Background(), "quizzes/quiz-1/attempts/"+id)
	require.NoError(t, err)
	require.Equal(t, "u1", summary["userId"])
	require.Equal(t, 1, summary["score"])
	require.Equal(t, 4, summary["total"])
	require.Equal(t, 90, summary["durationSeconds"])
}

func TestSubmitIsIdempotent(t *testing.T) {
	f := newFixture(t)
	id := f.start(t, "u1")
	f.clock.Advance(30 * time.Second)

	first, err := f.service.SubmitAttempt(context.Background(), "u1", domain.SubmitRequest{
		AttemptID: id,
		QuizID:    "quiz-1",
		Answers:   []domain.AnswerSubmission{{QuestionID: "q1", SelectedIndex: intPtr(1)}},
	})
	require.NoError(t, err)
	writes := f.store.Writes()

	f.clock.Advance(time.Hour)
	second, err := f.service.SubmitAttempt(context.Background(), "u1", domain.SubmitRequest{
		AttemptID: id,
		QuizID:    "quiz-1",
		Answers: []domain.AnswerSubmission{
			{QuestionID: "q1", SelectedIndex: intPtr(1)},
			{QuestionID: "q2", SelectedIndex: intPtr(0)},
			{QuestionID: "q3", SelectedIndex: intPtr(2)},
		},
	})
	require.NoError(t, err)
	require.True(t, second.Replayed)
	require.Equal(t, first.Result, second.Result)
	require.Equal(t, writes, f.store.Writes())
}

func TestSubmitRejectsBeforeWriting(t *testing.T) {
	f := newFixture(t)
	id := f.start(t, "owner")
	base := f.store.Writes()

	cases := []struct {
		name   string
		caller string
		req    domain.SubmitRequest
		want   error
	}{
		{
			name:   "unauthenticated",
			caller: "",
			req:    domain.SubmitRequest{AttemptID: id, QuizID: "quiz-1", Answers: []domain.AnswerSubmission{}},
			want:   domain.ErrUnauthenticated,
		},
		{
			name:   "missing answers",
			caller: "owner",
			req:    domain.SubmitRequest{AttemptID: id, QuizID: "quiz-1"},
			want:   domain.ErrInvalidArgument,
		},
		{
			name:   "missing attempt id",
			caller: "owner",
			req:    domain.SubmitRequest{QuizID: "quiz-1", Answers: []domain.AnswerSubmission{}},
			want:   domain.ErrInvalidArgument,
		},
		{
			name:   "slash in quiz id",
			caller: "owner",
			req:    domain.SubmitRequest{AttemptID: id, QuizID: "quiz-1/x", Answers: []domain.AnswerSubmission{}},
			want:   domain.ErrInvalidArgument,
		},
		{
			name:   "unknown quiz",
			caller: "owner",
			req:    domain.SubmitRequest{AttemptID: id, QuizID: "nope", Answers: []domain.AnswerSubmission{}},
			want:   domain.ErrNotFound,
		},
		{
			name:   "unknown question",
			caller: "owner",
			req: domain.SubmitRequest{AttemptID: id, QuizID: "quiz-1", Answers: []domain.AnswerSubmission{
				{QuestionID: "q1", SelectedIndex: intPtr(1)},
				{QuestionID: "q99", SelectedIndex: intPtr(0)},
			}},
			want: domain.ErrInvalidArgument,
		},
		{
			name:   "unknown attempt",
			caller: "owner",
			req:    domain.SubmitRequest{AttemptID: "missing", QuizID: "quiz-1", Answers: []domain.AnswerSubmission{}},
			want:   domain.ErrNotFound,
		},
		{
			name:   "not the owner",
			caller: "intruder",
			req:    domain.SubmitRequest{AttemptID: id, QuizID: "quiz-1", Answers: []domain.AnswerSubmission{}},
			want:   domain.ErrPermissionDenied,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.SubmitAttempt(context.Background(), tc.caller, tc.req)
			require.ErrorIs(t, err, tc.want)
			require.Equal(t, base, f.store.Writes())
		})
	}

	require.Equal(t, "in_progress", f.attemptDoc(t, id)["status"])
}

func TestSubmitUnknownQuestionMessageNamesQuestion(t *testing.T) {
	f := newFixture(t)
	id := f.start(t, "u1")

	_, err := f.service.SubmitAttempt(context.Background(), "u1", domain.SubmitRequest{
		AttemptID: id,
		QuizID:    "quiz-1",
		Answers:   []domain.AnswerSubmission{{QuestionID: "zzz"}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	require.Contains(t, err.Error(), "invalid questionId: zzz")
}

func TestSubmitEmptyAnswersScoresZero(t *testing.T) {
	f := newFixture(t)
	id := f.start(t, "u1")

	outcome, err := f.service.SubmitAttempt(context.Background(), "u1", domain.SubmitRequest{
		AttemptID: id,
		QuizID:    "quiz-1",
		Answers:   []domain.AnswerSubmission{},
	})
	require.NoError(t, err)
	require.Equal(t, 0, outcome.Result.Score)
	require.Equal(t, 4, outcome.Result.Total)
	require.Equal(t, intPtr(0), outcome.Result.DurationSeconds)
}

func TestSubmitWithoutStartTimeHasNoDuration(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.mem.Set(context.Background(), "attempts/legacy", docstore.Document{
		"userId": "u1",
		"quizId": "quiz-1",
		"status": "in_progress",
	}))

	outcome, err := f.service.SubmitAttempt(context.Background(), "u1", domain.SubmitRequest{
		AttemptID: "legacy",
		QuizID:    "quiz-1",
		Answers:   []domain.AnswerSubmission{{QuestionID: "q1", SelectedIndex: intPtr(1)}},
	})
	require.NoError(t, err)
	require.Nil(t, outcome.Result.DurationSeconds)

	doc := f.attemptDoc(t, "legacy")
	require.Nil(t, doc["durationSeconds"])
}

func TestSubmitKeepsResultWhenSummaryWriteFails(t *testing.T) {
	f := newFixture(t)
	id := f.start(t, "u1")
	f.store.failWith = func(path string) error {
		if strings.HasPrefix(path, "quizzes/") {
			return errors.New("summary backend unavailable")
		}
		return nil
	}

	outcome, err := f.service.SubmitAttempt(context.Background(), "u1", domain.SubmitRequest{
		AttemptID: id,
		QuizID:    "quiz-1",
		Answers:   []domain.AnswerSubmission{{QuestionID: "q1", SelectedIndex: intPtr(1)}},
	})
	require.NoError(t, err)
	require.Error(t, outcome.SummaryErr)
	require.Equal(t, 1, outcome.Result.Score)
	require.Equal(t, "completed", f.attemptDoc(t, id)["status"])

	_, err = f.mem.Get(context.Background(), "quizzes/quiz-1/attempts/"+id)
	require.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestSubmitFinalizeFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	id := f.start(t, "u1")
	f.store.failWith = func(string) error { return errors.New("disk full") }

	_, err := f.service.SubmitAttempt(context.Background(), "u1", domain.SubmitRequest{
		AttemptID: id,
		QuizID:    "quiz-1",
		Answers:   []domain.AnswerSubmission{},
	})
	require.Error(t, err)
	require.Equal(t, domain.CodeInternal, domain.Code(err))
}

func TestConcurrentSubmitReturnsWinnerResult(t *testing.T) {
	f := newFixture(t)
	id := f.start(t, "u1")

	// another submit finalizes between this call's read and its write
	f.store.before = func(path string) {
		require.Equal(t, "attempts/"+id, path)
		require.NoError(t, f.mem.Set(context.Background(), path, docstore.Document{
			"status":          "completed",
			"score":           3,
			"total":           4,
			"durationSeconds": 12,
		}, docstore.Merge()))
	}

	outcome, err := f.service.SubmitAttempt(context.Background(), "u1", domain.SubmitRequest{
		AttemptID: id,
		QuizID:    "quiz-1",
		Answers:   []domain.AnswerSubmission{{QuestionID: "q1", SelectedIndex: intPtr(0)}},
	})
	require.NoError(t, err)
	require.True(t, outcome.Replayed)
	require.Equal(t, 3, outcome.Result.Score)
	require.Equal(t, intPtr(12), outcome.Result.DurationSeconds)
	require.Equal(t, 3, f.attemptDoc(t, id)["score"])
}

func TestLenientFinalizeOverwritesConcurrentResult(t *testing.T) {
	f := newFixture(t, app.WithStrictFinalize(false))
	id := f.start(t, "u1")

	f.store.before = func(path string) {
		require.NoError(t, f.mem.Set(context.Background(), path, docstore.Document{
			"status": "completed",
			"score":  3,
		}, docstore.Merge()))
	}

	outcome, err := f.service.SubmitAttempt(context.Background(), "u1", domain.SubmitRequest{
		AttemptID: id,
		QuizID:    "quiz-1",
		Answers:   []domain.AnswerSubmission{{QuestionID: "q1", SelectedIndex: intPtr(0)}},
	})
	require.NoError(t, err)
	require.False(t, outcome.Replayed)
	require.Equal(t, 0, outcome.Result.Score)
	require.Equal(t, 0, f.attemptDoc(t, id)["score"])
}

func TestSubmitPublishesCompletion(t *testing.T) {
	f := newFixture(t)
	ch, cancel := f.broker.Subscribe(events.ForUser("u1"))
	defer cancel()

	id := f.start(t, "u1")
	_, err := f.service.SubmitAttempt(context.Background(), "u1", domain.SubmitRequest{
		AttemptID: id,
		QuizID:    "quiz-1",
		Answers:   []domain.AnswerSubmission{{QuestionID: "q1", SelectedIndex: intPtr(1)}},
	})
	require.NoError(t, err)

	started := <-ch
	require.Equal(t, events.AttemptStarted, started.Kind)
	completed := <-ch
	require.Equal(t, events.AttemptCompleted, completed.Kind)
	require.Equal(t, id, completed.AttemptID)
	result, ok := completed.Payload.(domain.SubmitResult)
	require.True(t, ok)
	require.Equal(t, 1, result.Score)
}

func TestGetAttemptOwnershipAndPassMark(t *testing.T) {
	f := newFixture(t)
	id := f.start(t, "u1")

	view, err := f.service.GetAttempt(context.Background(), "u1", id)
	require.NoError(t, err)
	require.Equal(t, domain.StatusInProgress, view.Status)
	require.Zero(t, view.Percent)
	require.False(t, view.Passed)

	_, err = f.service.GetAttempt(context.Background(), "u2", id)
	require.ErrorIs(t, err, domain.ErrPermissionDenied)
	_, err = f.service.GetAttempt(context.Background(), "u1", "nope")
	require.ErrorIs(t, err, domain.ErrAttemptNotFound)
	_, err = f.service.GetAttempt(context.Background(), "", id)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = f.service.SubmitAttempt(context.Background(), "u1", domain.SubmitRequest{
		AttemptID: id,
		QuizID:    "quiz-1",
		Answers: []domain.AnswerSubmission{
			{QuestionID: "q1", SelectedIndex: intPtr(1)},
			{QuestionID: "q2", SelectedIndex: intPtr(0)},
		},
	})
	require.NoError(t, err)

	view, err = f.service.GetAttempt(context.Background(), "u1", id)
	require.NoError(t, err)
	require.Equal(t, 50, view.Percent)
	require.True(t, view.Passed)
}

// newDocumentFixture grades against a quiz read from the document store, the way
// the server does, instead of a static loader.
func newDocumentFixture(t *testing.T, quizID string, quizDoc docstore.Document) *fixture {
	t.Helper()
	c := &clock{now: t0}
	mem := memory.NewDocumentStoreWithClock(c.Now)
	require.NoError(t, mem.Set(context.Background(), "quizzes/"+quizID, quizDoc))
	store := &recordingStore{Store: mem}
	quizzes := memory.NewQuizRepository(bank.NewDocumentLoader(mem), 0)
	broker := events.NewBroker()
	service := app.NewAttemptService(store, quizzes, validator.New(), zerolog.Nop(),
		app.WithClock(c.Now), app.WithEvents(broker))
	return &fixture{service: service, store: store, mem: mem, clock: c, broker: broker}
}

func (f *fixture) seedAttempt(t *testing.T, id string, doc docstore.Document) {
	t.Helper()
	require.NoError(t, f.mem.Set(context.Background(), "attempts/"+id, doc))
}

func threeQuestionQuiz() docstore.Document {
	return docstore.Document{
		"title": "Scenario",
		"questions": []any{
			map[string]any{"id": "q1", "choices": []any{"a", "b", "c"}, "answerIndex": float64(1)},
			map[string]any{"id": "q2", "choices": []any{"a", "b", "c"}, "answerIndex": float64(0)},
			map[string]any{"id": "q3", "choices": []any{"a", "b", "c"}, "answerIndex": float64(2)},
		},
	}
}

func TestSubmitGradesStoredQuiz(t *testing.T) {
	f := newDocumentFixture(t, "qz", threeQuestionQuiz())
	f.seedAttempt(t, "a1", docstore.Document{
		"userId":    "u1",
		"quizId":    "qz",
		"status":    "in_progress",
		"startTime": t0,
	})
	f.clock.Advance(45 * time.Second)

	outcome, err := f.service.SubmitAttempt(context.Background(), "u1", domain.SubmitRequest{
		AttemptID: "a1",
		QuizID:    "qz",
		Answers: []domain.AnswerSubmission{
			{QuestionID: "q1", SelectedIndex: intPtr(1)},
			{QuestionID: "q2", SelectedIndex: intPtr(0)},
			{QuestionID: "q3", SelectedIndex: intPtr(1)},
		},
	})
	require.NoError(t, err)
	require.Equal(t, domain.SubmitResult{AttemptID: "a1", Score: 2, Total: 3, DurationSeconds: intPtr(45)}, outcome.Result)

	doc := f.attemptDoc(t, "a1")
	require.Equal(t, "completed", doc["status"])
	require.Equal(t, 2, doc["score"])
	require.Equal(t, 3, doc["total"])
}

func TestSubmitGradesQuestionWithoutUsableAnswerAsWrong(t *testing.T) {
	f := newDocumentFixture(t, "qz", docstore.Document{
		"questions": []any{
			map[string]any{"id": "q1", "choices": []any{"a", "b"}, "answerIndex": float64(1)},
			map[string]any{"id": "q2", "choices": []any{"a", "b"}},
		},
	})
	f.seedAttempt(t, "a1", docstore.Document{"userId": "u1", "quizId": "qz", "status": "in_progress", "startTime": t0})

	outcome, err := f.service.SubmitAttempt(context.Background(), "u1", domain.SubmitRequest{
		AttemptID: "a1",
		QuizID:    "qz",
		Answers: []domain.AnswerSubmission{
			{QuestionID: "q1", SelectedIndex: intPtr(1)},
			{QuestionID: "q2", SelectedIndex: intPtr(0)},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, outcome.Result.Score)
	require.Equal(t, 2, outcome.Result.Total)
}

func TestSubmitReplaysStoredResultExactly(t *testing.T) {
	cases := []struct {
		name     string
		stored   docstore.Document
		duration *int
	}{
		{name: "stored duration", stored: docstore.Document{"durationSeconds": 120}, duration: intPtr(120)},
		{name: "zero duration", stored: docstore.Document{"durationSeconds": 0}, duration: intPtr(0)},
		{name: "null duration", stored: docstore.Document{"durationSeconds": nil}, duration: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newDocumentFixture(t, "qz", threeQuestionQuiz())
			doc := docstore.Document{
				"userId":    "u1",
				"quizId":    "qz",
				"status":    "completed",
				"score":     2,
				"total":     3,
				"startTime": t0.Add(-time.Hour),
			}
			for k, v := range tc.stored {
				doc[k] = v
			}
			f.seedAttempt(t, "a1", doc)

			outcome, err := f.service.SubmitAttempt(context.Background(), "u1", domain.SubmitRequest{
				AttemptID: "a1",
				QuizID:    "qz",
				Answers: []domain.AnswerSubmission{
					{QuestionID: "q1", SelectedIndex: intPtr(1)},
					{QuestionID: "q2", SelectedIndex: intPtr(0)},
					{QuestionID: "q3", SelectedIndex: intPtr(2)},
				},
			})
			require.NoError(t, err)
			require.True(t, outcome.Replayed)
			require.Equal(t, domain.SubmitResult{AttemptID: "a1", Score: 2, Total: 3, DurationSeconds: tc.duration}, outcome.Result)
			require.Zero(t, f.store.Writes())
		})
	}
}

func TestSubmitClampsDurationWhenStartIsInTheFuture(t *testing.T) {
	f := newFixture(t)
	f.seedAttempt(t, "skewed", docstore.Document{
		"userId":    "u1",
		"quizId":    "quiz-1",
		"status":    "in_progress",
		"startTime": t0.Add(2 * time.Minute),
	})

	outcome, err := f.service.SubmitAttempt(context.Background(), "u1", domain.SubmitRequest{
		AttemptID: "skewed",
		QuizID:    "quiz-1",
		Answers:   []domain.AnswerSubmission{{QuestionID: "q1", SelectedIndex: intPtr(1)}},
	})
	require.NoError(t, err)
	require.Equal(t, intPtr(0), outcome.Result.DurationSeconds)
	require.Equal(t, 0, f.attemptDoc(t, "skewed")["durationSeconds"])
}

func TestSubmitFinalizesCompletedAttemptWithoutScore(t *testing.T) {
	f := newFixture(t)
	f.seedAttempt(t, "a1", docstore.Document{
		"userId":    "u1",
		"quizId":    "quiz-1",
		"status":    "completed",
		"startTime": t0,
	})
	f.clock.Advance(10 * time.Second)

	outcome, err := f.service.SubmitAttempt(context.Background(), "u1", domain.SubmitRequest{
		AttemptID: "a1",
		QuizID:    "quiz-1",
		Answers:   []domain.AnswerSubmission{{QuestionID: "q1", SelectedIndex: intPtr(1)}},
	})
	require.NoError(t, err)
	require.False(t, outcome.Replayed)
	require.Equal(t, 1, outcome.Result.Score)
	require.Equal(t, 1, f.attemptDoc(t, "a1")["score"])

	again, err := f.service.SubmitAttempt(context.Background(), "u1", domain.SubmitRequest{
		AttemptID: "a1",
		QuizID:    "quiz-1",
		Answers:   []domain.AnswerSubmission{},
	})
	require.NoError(t, err)
	require.True(t, again.Replayed)
	require.Equal(t, outcome.Result, again.Result)
}

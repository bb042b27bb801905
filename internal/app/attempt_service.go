package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"quiz-attempt-service/internal/docstore"
	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/events"
	"quiz-attempt-service/internal/observability"
)

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// AttemptService creates attempts and grades them. It holds no per-attempt state;
// everything lives in the document store.
type AttemptService struct {
	store     docstore.Store
	quizzes   QuizRepository
	validator *validator.Validate
	events    events.Publisher
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
	// strictFinalize guards the finalize write on the stored result so that only
	// one of two racing submits grades the attempt.
	strictFinalize bool
}

type Option func(*AttemptService)

// WithClock sets the clock used for endTime and durations.
func WithClock(now func() time.Time) Option {
	return func(s *AttemptService) { s.now = now }
}

// WithStrictFinalize toggles the conditional finalize write.
func WithStrictFinalize(strict bool) Option {
	return func(s *AttemptService) { s.strictFinalize = strict }
}

// WithEvents sets the publisher for attempt events.
func WithEvents(p events.Publisher) Option {
	return func(s *AttemptService) { s.events = p }
}

func NewAttemptService(store docstore.Store, quizzes QuizRepository, validate *validator.Validate, logger zerolog.Logger, opts ...Option) *AttemptService {
	s := &AttemptService{
		store:          store,
		quizzes:        quizzes,
		validator:      validate,
		events:         events.Discard{},
		logger:         logger.With().Str("component", "attempt_service").Logger(),
		tracer:         otel.Tracer("quiz-attempt-service/internal/app/attempts"),
		now:            time.Now,
		strictFinalize: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartAttempt creates a new in-progress attempt for the caller. Every call
// creates a distinct attempt; the quiz is not checked until grading.
func (s *AttemptService) StartAttempt(ctx context.Context, callerID, quizID string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "attempts.start", trace.WithAttributes(attribute.String("quiz.id", quizID)))
	defer span.End()

	if callerID == "" {
		return "", failSpan(span, domain.ErrUnauthenticated)
	}
	if !docstore.ValidSegment(quizID) {
		return "", failSpan(span, fmt.Errorf("%w: missing or malformed quizId", domain.ErrInvalidArgument))
	}

	attemptID := s.store.NewKey("attempts")
	path, err := attemptPath(attemptID)
	if err != nil {
		return "", failSpan(span, err)
	}

	if err := s.store.Set(ctx, path, docstore.Document{
		"userId":    callerID,
		"quizId":    quizID,
		"status":    string(domain.StatusInProgress),
		"startTime": docstore.ServerTimestamp,
		"createdAt": docstore.ServerTimestamp,
	}); err != nil {
		return "", failSpan(span, fmt.Errorf("create attempt: %w", err))
	}

	observability.AttemptsStarted().Inc()
	span.SetAttributes(attribute.String("attempt.id", attemptID))
	s.logger.Info().Str("attempt_id", attemptID).Str("quiz_id", quizID).Str("user_id", callerID).Msg("attempt started")
	s.events.Publish(ctx, events.Event{
		Kind:      events.AttemptStarted,
		UserID:    callerID,
		QuizID:    quizID,
		AttemptID: attemptID,
		At:        s.now().UTC(),
	})
	return attemptID, nil
}

// SubmitAttempt validates, scores and finalizes an attempt. All validation
// happens before the first write, and a completed attempt returns its stored
// result without being graded again.
func (s *AttemptService) SubmitAttempt(ctx context.Context, callerID string, req domain.SubmitRequest) (domain.SubmitOutcome, error) {
	started := time.Now()
	ctx, span := s.tracer.Start(ctx, "attempts.submit", trace.WithAttributes(
		attribute.String("attempt.id", req.AttemptID),
		attribute.String("quiz.id", req.QuizID),
		attribute.Int("answers.count", len(req.Answers)),
	))
	defer span.End()

	outcome, err := s.submit(ctx, callerID, req)
	observability.GradingLatency().Observe(time.Since(started).Seconds())

	switch {
	case err != nil && domain.Code(err) == domain.CodeInternal:
		observability.Submissions().WithLabelValues(observability.OutcomeFailed, domain.CodeInternal).Inc()
		s.logger.Error().Err(err).Str("attempt_id", req.AttemptID).Msg("attempt submission failed")
		return outcome, failSpan(span, err)
	case err != nil:
		observability.Submissions().WithLabelValues(observability.OutcomeRejected, domain.Code(err)).Inc()
		return outcome, failSpan(span, err)
	case outcome.Replayed:
		observability.Submissions().WithLabelValues(observability.OutcomeReplayed, "ok").Inc()
	default:
		observability.Submissions().WithLabelValues(observability.OutcomeGraded, "ok").Inc()
	}
	span.SetAttributes(
		attribute.Bool("attempt.replayed", outcome.Replayed),
		attribute.Int("attempt.score", outcome.Result.Score),
		attribute.Int("attempt.total", outcome.Result.Total),
	)
	return outcome, nil
}

func (s *AttemptService) submit(ctx context.Context, callerID string, req domain.SubmitRequest) (domain.SubmitOutcome, error) {
	if callerID == "" {
		return domain.SubmitOutcome{}, domain.ErrUnauthenticated
	}
	if err := s.validator.Struct(req); err != nil {
		return domain.SubmitOutcome{}, fmt.Errorf("%w: missing attemptId, quizId or answers", domain.ErrInvalidArgument)
	}

	quiz, err := s.quizzes.GetQuiz(ctx, req.QuizID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.SubmitOutcome{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.SubmitOutcome{}, fmt.Errorf("load quiz: %w", err)
	}
	questions := quiz.QuestionMap()

	for _, answer := range req.Answers {
		if _, ok := questions[answer.QuestionID]; !ok {
			return domain.SubmitOutcome{}, fmt.Errorf("%w: invalid questionId: %s", domain.ErrInvalidArgument, answer.QuestionID)
		}
	}

	attempt, err := s.loadAttempt(ctx, req.AttemptID)
	if err != nil {
		return domain.SubmitOutcome{}, err
	}
	if attempt.UserID != callerID {
		return domain.SubmitOutcome{}, fmt.Errorf("%w: not allowed to submit this attempt", domain.ErrPermissionDenied)
	}

	if attempt.Graded() {
		s.logger.Debug().Str("attempt_id", attempt.ID).Msg("attempt already graded, returning stored result")
		return domain.SubmitOutcome{Result: storedResult(attempt, quiz), Replayed: true}, nil
	}

	details, score := grade(req.Answers, questions)
	total := quiz.Total()
	endTime := s.now().UTC()
	duration := durationSeconds(attempt.StartTime, endTime)

	path, err := attemptPath(attempt.ID)
	if err != nil {
		return domain.SubmitOutcome{}, err
	}
	opts := []docstore.SetOption{docstore.Merge()}
	if s.strictFinalize {
		opts = append(opts, docstore.Unless(graded))
	}
	err = s.store.Set(ctx, path, docstore.Document{
		"endTime":         endTime,
		"durationSeconds": nullableInt(duration),
		"score":           score,
		"total":           total,
		"details":         detailsToDocument(details),
		"status":          string(domain.StatusCompleted),
		"updatedAt":       docstore.ServerTimestamp,
	}, opts...)
	if errors.Is(err, docstore.ErrPreconditionFailed) {
		return s.concurrentWinner(ctx, attempt.ID, quiz)
	}
	if err != nil {
		return domain.SubmitOutcome{}, fmt.Errorf("finalize attempt: %w", err)
	}

	result := domain.SubmitResult{
		AttemptID:       attempt.ID,
		Score:           score,
		Total:           total,
		DurationSeconds: duration,
	}
	outcome := domain.SubmitOutcome{Result: result}

	summary := domain.AttemptSummary{
		AttemptID:       attempt.ID,
		UserID:          callerID,
		Score:           score,
		Total:           total,
		DurationSeconds: duration,
		StartTime:       attempt.StartTime,
		EndTime:         endTime,
	}
	if err := s.writeSummary(ctx, req.QuizID, summary); err != nil {
		outcome.SummaryErr = err
		observability.SummaryFailures().Inc()
		s.logger.Warn().Err(err).Str("attempt_id", attempt.ID).Str("quiz_id", req.QuizID).Msg("attempt summary write failed")
	}

	s.logger.Info().
		Str("attempt_id", attempt.ID).
		Str("quiz_id", req.QuizID).
		Int("score", score).
		Int("total", total).
		Msg("attempt graded")
	s.events.Publish(ctx, events.Event{
		Kind:      events.AttemptCompleted,
		UserID:    callerID,
		QuizID:    req.QuizID,
		AttemptID: attempt.ID,
		Payload:   result,
		At:        endTime,
	})
	return outcome, nil
}

// concurrentWinner handles a guarded finalize that found the attempt already
// completed: another submit graded it between our read and our write.
func (s *AttemptService) concurrentWinner(ctx context.Context, attemptID string, quiz domain.Quiz) (domain.SubmitOutcome, error) {
	winner, err := s.loadAttempt(ctx, attemptID)
	if err != nil {
		return domain.SubmitOutcome{}, err
	}
	if !winner.Graded() {
		return domain.SubmitOutcome{}, fmt.Errorf("finalize attempt: completed without a stored score")
	}
	s.logger.Info().Str("attempt_id", attemptID).Msg("concurrent submit finalized first, returning its result")
	return domain.SubmitOutcome{Result: storedResult(winner, quiz), Replayed: true}, nil
}

// GetAttempt returns the caller's attempt with its percentage and pass flag.
func (s *AttemptService) GetAttempt(ctx context.Context, callerID, attemptID string) (domain.AttemptView, error) {
	if callerID == "" {
		return domain.AttemptView{}, domain.ErrUnauthenticated
	}
	if !docstore.ValidSegment(attemptID) {
		return domain.AttemptView{}, fmt.Errorf("%w: missing or malformed attemptId", domain.ErrInvalidArgument)
	}
	attempt, err := s.loadAttempt(ctx, attemptID)
	if err != nil {
		return domain.AttemptView{}, err
	}
	if attempt.UserID != callerID {
		return domain.AttemptView{}, fmt.Errorf("%w: not allowed to read this attempt", domain.ErrPermissionDenied)
	}

	view := domain.AttemptView{Attempt: attempt}
	if attempt.Graded() && attempt.Total != nil && *attempt.Total > 0 {
		view.Percent = int(math.Round(float64(*attempt.Score) / float64(*attempt.Total) * 100))
		view.Passed = view.Percent >= domain.PassPercent
	}
	return view, nil
}

func (s *AttemptService) loadAttempt(ctx context.Context, attemptID string) (domain.Attempt, error) {
	path, err := attemptPath(attemptID)
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("%w: malformed attemptId", domain.ErrInvalidArgument)
	}
	doc, err := s.store.Get(ctx, path)
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("read attempt: %w", err)
	}
	return attemptFromDocument(attemptID, doc), nil
}

func (s *AttemptService) writeSummary(ctx context.Context, quizID string, summary domain.AttemptSummary) error {
	path, err := summaryPath(quizID, summary.AttemptID)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, path, docstore.Document{
		"attemptId":       summary.AttemptID,
		"userId":          summary.UserID,
		"score":           summary.Score,
		"total":           summary.Total,
		"durationSeconds": nullableInt(summary.DurationSeconds),
		"startTime":       nullableTime(summary.StartTime),
		"endTime":         summary.EndTime,
		"createdAt":       docstore.ServerTimestamp,
	})
}

// grade scores answers in submitted order. Every answer must already be known
// to be in questions.
func grade(answers []domain.AnswerSubmission, questions map[string]domain.Question) ([]domain.GradedDetail, int) {
	details := make([]domain.GradedDetail, 0, len(answers))
	score := 0
	for _, answer := range answers {
		q := questions[answer.QuestionID]
		correct := q.Correct(answer.SelectedIndex)
		if correct {
			score++
		}
		var explanation *string
		if q.Explanation != "" {
			e := q.Explanation
			explanation = &e
		}
		details = append(details, domain.GradedDetail{
			QuestionID:    answer.QuestionID,
			SelectedIndex: answer.SelectedIndex,
			CorrectIndex:  q.AnswerIndex,
			Correct:       correct,
			Explanation:   explanation,
		})
	}
	return details, score
}

// durationSeconds is nil without a start time and never negative.
func durationSeconds(start *time.Time, end time.Time) *int {
	if start == nil {
		return nil
	}
	secs := int(math.Round(end.Sub(*start).Seconds()))
	if secs < 0 {
		secs = 0
	}
	return &secs
}

func storedResult(attempt domain.Attempt, quiz domain.Quiz) domain.SubmitResult {
	total := quiz.Total()
	if attempt.Total != nil {
		total = *attempt.Total
	}
	score := 0
	if attempt.Score != nil {
		score = *attempt.Score
	}
	return domain.SubmitResult{
		AttemptID:       attempt.ID,
		Score:           score,
		Total:           total,
		DurationSeconds: attempt.DurationSeconds,
	}
}

func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, domain.Code(err))
	return err
}

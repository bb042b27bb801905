package domain

import "time"

// AttemptStatus is the lifecycle state of an attempt. It only moves forward.
type AttemptStatus string

const (
	StatusInProgress AttemptStatus = "in_progress"
	StatusCompleted  AttemptStatus = "completed"
)

// PassPercent is the minimum percentage for a passing result.
const PassPercent = 50

// NoAnswer marks a stored question whose answerIndex is missing or does not
// address one of its choices. Any answer to it grades as incorrect.
const NoAnswer = -1

// Question models an MCQ question; AnswerIndex is the zero-based correct choice.
type Question struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Choices     []string `json:"choices"`
	AnswerIndex int      `json:"answerIndex"`
	Explanation string   `json:"explanation,omitempty"`
}

// Answerable reports whether the question has a usable correct choice.
func (q Question) Answerable() bool {
	return q.AnswerIndex >= 0 && q.AnswerIndex < len(q.Choices)
}

// Correct reports whether selected is the right choice.
func (q Question) Correct(selected *int) bool {
	return selected != nil && q.Answerable() && *selected == q.AnswerIndex
}

// Quiz is an ordered collection of questions.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title,omitempty"`
	Category  string     `json:"category,omitempty"`
	Questions []Question `json:"questions"`
	// QuestionCount is the number of entries stored for the quiz, including
	// entries without an id that were left out of Questions.
	QuestionCount int `json:"questionCount"`
}

// Total is the denominator a learner is scored against.
func (q Quiz) Total() int {
	if q.QuestionCount > len(q.Questions) {
		return q.QuestionCount
	}
	return len(q.Questions)
}

// QuestionMap indexes the quiz questions by id.
func (q Quiz) QuestionMap() map[string]Question {
	m := make(map[string]Question, len(q.Questions))
	for _, question := range q.Questions {
		if question.ID == "" {
			continue
		}
		m[question.ID] = question
	}
	return m
}

// AnswerSubmission is one submitted choice; SelectedIndex is nil when unanswered.
type AnswerSubmission struct {
	QuestionID    string `json:"questionId"`
	SelectedIndex *int   `json:"selectedIndex"`
}

// SubmitRequest is the input of the grading call.
type SubmitRequest struct {
	AttemptID string             `json:"attemptId" validate:"required,excludes=/"`
	QuizID    string             `json:"quizId" validate:"required,excludes=/"`
	Answers   []AnswerSubmission `json:"answers" validate:"required"`
}

// GradedDetail is the persisted outcome of one submitted answer.
type GradedDetail struct {
	QuestionID    string  `json:"questionId"`
	SelectedIndex *int    `json:"selectedIndex"`
	CorrectIndex  int     `json:"correctIndex"`
	Correct       bool    `json:"correct"`
	Explanation   *string `json:"explanation"`
}

// Attempt is one user's run through a quiz.
type Attempt struct {
	ID              string         `json:"attemptId"`
	UserID          string         `json:"userId"`
	QuizID          string         `json:"quizId"`
	Status          AttemptStatus  `json:"status"`
	StartTime       *time.Time     `json:"startTime,omitempty"`
	EndTime         *time.Time     `json:"endTime,omitempty"`
	DurationSeconds *int           `json:"durationSeconds"`
	Score           *int           `json:"score,omitempty"`
	Total           *int           `json:"total,omitempty"`
	Details         []GradedDetail `json:"details,omitempty"`
	CreatedAt       *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time     `json:"updatedAt,omitempty"`
}

// Graded reports whether the attempt holds a stored result.
func (a Attempt) Graded() bool {
	return a.Status == StatusCompleted && a.Score != nil
}

// AttemptSummary is the denormalized per-quiz record of a completed attempt.
type AttemptSummary struct {
	AttemptID       string     `json:"attemptId"`
	UserID          string     `json:"userId"`
	Score           int        `json:"score"`
	Total           int        `json:"total"`
	DurationSeconds *int       `json:"durationSeconds"`
	StartTime       *time.Time `json:"startTime"`
	EndTime         time.Time  `json:"endTime"`
}

// SubmitResult is the response of the grading call.
type SubmitResult struct {
	AttemptID       string `json:"attemptId"`
	Score           int    `json:"score"`
	Total           int    `json:"total"`
	DurationSeconds *int   `json:"durationSeconds"`
}

// SubmitOutcome separates the authoritative result from the best-effort summary write.
type SubmitOutcome struct {
	Result SubmitResult
	// Replayed is true when the stored result was returned without grading.
	Replayed bool
	// SummaryErr is set when the attempt was finalized but the summary write failed.
	SummaryErr error
}

// AttemptView is the read model for a learner's result page.
type AttemptView struct {
	Attempt
	Percent int  `json:"percent"`
	Passed  bool `json:"passed"`
}

// Preferences are the per-user study settings.
type Preferences struct {
	EmailNotifications bool `json:"emailNotifications"`
	DailyTarget        int  `json:"dailyTarget"`
	WeeklyTarget       int  `json:"weeklyTarget"`
}

// DefaultPreferences are written when a profile is first created.
func DefaultPreferences() Preferences {
	return Preferences{EmailNotifications: true, DailyTarget: 0, WeeklyTarget: 3}
}

// Profile is the stored user record.
type Profile struct {
	UserID      string      `json:"userId"`
	DisplayName string      `json:"displayName"`
	Email       string      `json:"email"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   *time.Time  `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time  `json:"updatedAt,omitempty"`
}

// ProfileUpdate holds the editable profile fields; nil fields are left unchanged.
type ProfileUpdate struct {
	DisplayName *string      `json:"displayName" validate:"omitempty,max=80"`
	Preferences *Preferences `json:"preferences"`
}

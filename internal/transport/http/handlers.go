package http

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/auth"
	"quiz-attempt-service/internal/bank"
	"quiz-attempt-service/internal/domain"
)

// Handler serves the JSON API on top of the application services.
type Handler struct {
	attempts *app.AttemptService
	profiles *app.ProfileService
	quizzes  app.QuizRepository
	logger   zerolog.Logger
}

func NewHandler(attempts *app.AttemptService, profiles *app.ProfileService, quizzes app.QuizRepository, logger zerolog.Logger) *Handler {
	return &Handler{
		attempts: attempts,
		profiles: profiles,
		quizzes:  quizzes,
		logger:   logger.With().Str("component", "http").Logger(),
	}
}

type startAttemptBody struct {
	QuizID string `json:"quizId"`
}

type wireAnswer struct {
	QuestionID    string          `json:"questionId"`
	SelectedIndex json.RawMessage `json:"selectedIndex"`
}

type submitAttemptBody struct {
	AttemptID string       `json:"attemptId"`
	QuizID    string       `json:"quizId"`
	Answers   []wireAnswer `json:"answers"`
}

type sessionBody struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

func (h *Handler) StartAttempt(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerFromContext(r.Context())
	if caller.UserID == "" {
		writeError(w, domain.ErrUnauthenticated)
		return
	}
	var body startAttemptBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	attemptID, err := h.attempts.StartAttempt(r.Context(), caller.UserID, body.QuizID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"attemptId": attemptID})
}

func (h *Handler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerFromContext(r.Context())
	if caller.UserID == "" {
		writeError(w, domain.ErrUnauthenticated)
		return
	}
	var body submitAttemptBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	req := domain.SubmitRequest{AttemptID: body.AttemptID, QuizID: body.QuizID}
	if body.Answers != nil {
		req.Answers = make([]domain.AnswerSubmission, 0, len(body.Answers))
		for _, a := range body.Answers {
			req.Answers = append(req.Answers, domain.AnswerSubmission{
				QuestionID:    a.QuestionID,
				SelectedIndex: selectedIndex(a.SelectedIndex),
			})
		}
	}

	outcome, err := h.attempts.SubmitAttempt(r.Context(), caller.UserID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome.Result)
}

func (h *Handler) GetAttempt(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerFromContext(r.Context())
	view, err := h.attempts.GetAttempt(r.Context(), caller.UserID, chi.URLParam(r, "attemptId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	if auth.CallerFromContext(r.Context()).UserID == "" {
		writeError(w, domain.ErrUnauthenticated)
		return
	}
	quiz, err := h.quizzes.GetQuiz(r.Context(), chi.URLParam(r, "quizId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bank.Public(quiz))
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerFromContext(r.Context())
	if caller.UserID == "" {
		writeError(w, domain.ErrUnauthenticated)
		return
	}
	body := sessionBody{Email: caller.Email, DisplayName: caller.Name}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, err)
			return
		}
	}
	profile, err := h.profiles.EnsureProfile(r.Context(), caller.UserID, body.Email, body.DisplayName)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.GetProfile(r.Context(), auth.CallerFromContext(r.Context()).UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerFromContext(r.Context())
	if caller.UserID == "" {
		writeError(w, domain.ErrUnauthenticated)
		return
	}
	var update domain.ProfileUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeError(w, err)
		return
	}
	profile, err := h.profiles.UpdateProfile(r.Context(), caller.UserID, update)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if domain.Code(err) == domain.CodeInternal {
		h.logger.Error().Err(err).
			Str("correlation_id", correlationIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
	}
	writeError(w, err)
}

// selectedIndex keeps integral numbers and turns anything else into "unanswered".
func selectedIndex(raw json.RawMessage) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	i := int(f)
	return &i
}

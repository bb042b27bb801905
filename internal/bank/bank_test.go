package bank_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"quiz-attempt-service/internal/bank"
	"quiz-attempt-service/internal/docstore"
	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/infra/memory"
)

func TestQuizFromDocumentHandlesMalformedQuestions(t *testing.T) {
	var doc docstore.Document
	require.NoError(t, json.Unmarshal([]byte(`{
		"title": "Mixed",
		"questions": [
			{"id": "q1", "text": "ok", "choices": ["a", "b"], "answerIndex": 1},
			{"text": "no id", "choices": ["a"], "answerIndex": 0},
			{"id": "q3", "choices": ["a", "b"], "answerIndex": 2},
			{"id": "q4", "choices": ["a", "b"], "answerIndex": 0.5},
			{"id": "q5", "choices": ["a", "b"]},
			"not an object"
		]
	}`), &doc))

	quiz := bank.QuizFromDocument("mixed", doc)
	require.Equal(t, "mixed", quiz.ID)
	require.Equal(t, "Mixed", quiz.Title)
	require.Equal(t, 6, quiz.QuestionCount)
	require.Equal(t, 6, quiz.Total())

	// entries with an id stay addressable; a bad answerIndex can never match
	require.Len(t, quiz.Questions, 4)
	questions := quiz.QuestionMap()
	require.Equal(t, 1, questions["q1"].AnswerIndex)
	for _, id := range []string{"q3", "q4", "q5"} {
		q, ok := questions[id]
		require.True(t, ok, id)
		require.Equal(t, domain.NoAnswer, q.AnswerIndex, id)
		require.False(t, q.Answerable(), id)
		for _, choice := range []int{-1, 0, 1, 2} {
			require.False(t, q.Correct(&choice), "%s choice %d", id, choice)
		}
	}
	require.True(t, questions["q1"].Correct(intPtr(1)))
	require.False(t, questions["q1"].Correct(nil))

	public := bank.Public(quiz)
	require.Len(t, public.Questions, 1)
	require.Equal(t, "q1", public.Questions[0].ID)
}

func intPtr(v int) *int { return &v }

func TestSeedAndDocumentLoader(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDocumentStore()
	require.NoError(t, bank.Seed(ctx, store, bank.SampleQuizzes()))

	loader := bank.NewDocumentLoader(store)
	quiz, err := loader.LoadQuiz(ctx, "number-system")
	require.NoError(t, err)
	require.Equal(t, "number-system", quiz.ID)
	require.Len(t, quiz.Questions, 15)
	require.Equal(t, bank.SampleQuizzes()["number-system"].Questions, quiz.Questions)

	_, err = loader.LoadQuiz(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrQuizNotFound)

	_, err = loader.LoadQuiz(ctx, "a/b")
	require.ErrorIs(t, err, domain.ErrQuizNotFound)
	require.Equal(t, domain.CodeNotFound, domain.Code(err))
}

func TestStaticLoader(t *testing.T) {
	loader := bank.NewStaticLoader(map[string]domain.Quiz{"k": {Title: "keyed"}})

	quiz, err := loader.LoadQuiz(context.Background(), "k")
	require.NoError(t, err)
	require.Equal(t, "k", quiz.ID)

	_, err = loader.LoadQuiz(context.Background(), "other")
	require.ErrorIs(t, err, domain.ErrQuizNotFound)
}

func TestPublicHidesAnswers(t *testing.T) {
	quiz := bank.SampleQuizzes()["aptitude-quick-check"]
	public := bank.Public(quiz)

	require.Len(t, public.Questions, len(quiz.Questions))
	data, err := json.Marshal(public)
	require.NoError(t, err)
	require.NotContains(t, string(data), "answerIndex")
	require.NotContains(t, string(data), "explanation")
}

func TestSampleQuizzesAreWellFormed(t *testing.T) {
	for id, quiz := range bank.SampleQuizzes() {
		require.Equal(t, id, quiz.ID)
		seen := make(map[string]bool)
		for _, q := range quiz.Questions {
			require.False(t, seen[q.ID], "%s: duplicate question %s", id, q.ID)
			seen[q.ID] = true
			require.GreaterOrEqual(t, q.AnswerIndex, 0, "%s/%s", id, q.ID)
			require.Less(t, q.AnswerIndex, len(q.Choices), "%s/%s", id, q.ID)
		}
	}
}

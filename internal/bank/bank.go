package bank

import (
	"context"
	"errors"
	"fmt"

	"quiz-attempt-service/internal/docstore"
	"quiz-attempt-service/internal/domain"
)

// Loader fetches quiz content from a backing store.
type Loader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizPath is the document path of a quiz.
func QuizPath(quizID string) (string, error) {
	return docstore.Join("quizzes", quizID)
}

// DocumentLoader reads quizzes from the document store.
type DocumentLoader struct {
	store docstore.Store
}

func NewDocumentLoader(store docstore.Store) *DocumentLoader {
	return &DocumentLoader{store: store}
}

func (l *DocumentLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	path, err := QuizPath(quizID)
	if err != nil {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	doc, err := l.store.Get(ctx, path)
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	return QuizFromDocument(quizID, doc), nil
}

// QuizFromDocument decodes a stored quiz. Entries without an id are skipped but
// still counted. An entry whose answerIndex does not address one of its choices
// is kept with domain.NoAnswer so answers to it grade as incorrect.
func QuizFromDocument(quizID string, doc docstore.Document) domain.Quiz {
	raw := docstore.Slice(doc["questions"])
	quiz := domain.Quiz{
		ID:            quizID,
		Title:         docstore.String(doc["title"]),
		Category:      docstore.String(doc["category"]),
		Questions:     make([]domain.Question, 0, len(raw)),
		QuestionCount: len(raw),
	}
	for _, entry := range raw {
		q, ok := docstore.Map(entry)
		if !ok {
			continue
		}
		id := docstore.String(q["id"])
		if id == "" {
			continue
		}
		choices := make([]string, 0)
		for _, c := range docstore.Slice(q["choices"]) {
			choices = append(choices, docstore.String(c))
		}
		answer, ok := docstore.Int(q["answerIndex"])
		if !ok || answer < 0 || answer >= len(choices) {
			answer = domain.NoAnswer
		}
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:          id,
			Text:        docstore.String(q["text"]),
			Choices:     choices,
			AnswerIndex: answer,
			Explanation: docstore.String(q["explanation"]),
		})
	}
	return quiz
}

// QuizToDocument encodes a quiz for storage.
func QuizToDocument(quiz domain.Quiz) docstore.Document {
	questions := make([]any, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		entry := docstore.Document{
			"id":          q.ID,
			"text":        q.Text,
			"choices":     q.Choices,
			"answerIndex": q.AnswerIndex,
		}
		if q.Explanation != "" {
			entry["explanation"] = q.Explanation
		}
		questions = append(questions, entry)
	}
	return docstore.Document{
		"title":     quiz.Title,
		"category":  quiz.Category,
		"questions": questions,
	}
}

// Seed writes quizzes into the document store, replacing existing content.
func Seed(ctx context.Context, store docstore.Store, quizzes map[string]domain.Quiz) error {
	for id, quiz := range quizzes {
		path, err := QuizPath(id)
		if err != nil {
			return err
		}
		if err := store.Set(ctx, path, QuizToDocument(quiz)); err != nil {
			return fmt.Errorf("seed quiz %s: %w", id, err)
		}
	}
	return nil
}

// StaticLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticLoader struct {
	quizzes map[string]domain.Quiz
}

func NewStaticLoader(quizzes map[string]domain.Quiz) *StaticLoader {
	return &StaticLoader{quizzes: quizzes}
}

func (l *StaticLoader) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := l.quizzes[quizID]; ok {
		if quiz.ID == "" {
			quiz.ID = quizID
		}
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

// PublicQuestion is a question as shown to a learner, without the answer.
type PublicQuestion struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Choices []string `json:"choices"`
}

// PublicQuiz is a quiz as shown to a learner.
type PublicQuiz struct {
	ID        string           `json:"id"`
	Title     string           `json:"title,omitempty"`
	Category  string           `json:"category,omitempty"`
	Questions []PublicQuestion `json:"questions"`
}

// Public strips answers and explanations, and questions without a usable answer.
func Public(quiz domain.Quiz) PublicQuiz {
	out := PublicQuiz{
		ID:        quiz.ID,
		Title:     quiz.Title,
		Category:  quiz.Category,
		Questions: make([]PublicQuestion, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		if !q.Answerable() {
			continue
		}
		out.Questions = append(out.Questions, PublicQuestion{ID: q.ID, Text: q.Text, Choices: q.Choices})
	}
	return out
}

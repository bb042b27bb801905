package app

import (
	"time"

	"quiz-attempt-service/internal/docstore"
	"quiz-attempt-service/internal/domain"
)

func attemptPath(attemptID string) (string, error) {
	return docstore.Join("attempts", attemptID)
}

func summaryPath(quizID, attemptID string) (string, error) {
	return docstore.Join("quizzes", quizID, "attempts", attemptID)
}

func profilePath(userID string) (string, error) {
	return docstore.Join("users", userID)
}

func attemptFromDocument(id string, doc docstore.Document) domain.Attempt {
	return domain.Attempt{
		ID:              id,
		UserID:          docstore.String(doc["userId"]),
		QuizID:          docstore.String(doc["quizId"]),
		Status:          domain.AttemptStatus(docstore.String(doc["status"])),
		StartTime:       optionalTime(doc["startTime"]),
		EndTime:         optionalTime(doc["endTime"]),
		DurationSeconds: optionalInt(doc["durationSeconds"]),
		Score:           optionalInt(doc["score"]),
		Total:           optionalInt(doc["total"]),
		Details:         detailsFromDocument(doc["details"]),
		CreatedAt:       optionalTime(doc["createdAt"]),
		UpdatedAt:       optionalTime(doc["updatedAt"]),
	}
}

// graded matches the replay gate: a stored attempt that is completed and carries
// a numeric score.
func graded(doc docstore.Document) bool {
	return attemptFromDocument("", doc).Graded()
}

func detailsToDocument(details []domain.GradedDetail) []any {
	out := make([]any, 0, len(details))
	for _, d := range details {
		out = append(out, docstore.Document{
			"questionId":    d.QuestionID,
			"selectedIndex": nullableInt(d.SelectedIndex),
			"correctIndex":  d.CorrectIndex,
			"correct":       d.Correct,
			"explanation":   nullableString(d.Explanation),
		})
	}
	return out
}

func detailsFromDocument(v any) []domain.GradedDetail {
	raw := docstore.Slice(v)
	if len(raw) == 0 {
		return nil
	}
	out := make([]domain.GradedDetail, 0, len(raw))
	for _, entry := range raw {
		m, ok := docstore.Map(entry)
		if !ok {
			continue
		}
		correctIndex, _ := docstore.Int(m["correctIndex"])
		var explanation *string
		if s, ok := m["explanation"].(string); ok {
			explanation = &s
		}
		out = append(out, domain.GradedDetail{
			QuestionID:    docstore.String(m["questionId"]),
			SelectedIndex: optionalInt(m["selectedIndex"]),
			CorrectIndex:  correctIndex,
			Correct:       docstore.Bool(m["correct"]),
			Explanation:   explanation,
		})
	}
	return out
}

func profileFromDocument(userID string, doc docstore.Document) domain.Profile {
	prefs := domain.DefaultPreferences()
	if m, ok := docstore.Map(doc["preferences"]); ok {
		if v, ok := m["emailNotifications"].(bool); ok {
			prefs.EmailNotifications = v
		}
		if v, ok := docstore.Int(m["dailyTarget"]); ok {
			prefs.DailyTarget = v
		}
		if v, ok := docstore.Int(m["weeklyTarget"]); ok {
			prefs.WeeklyTarget = v
		}
	}
	return domain.Profile{
		UserID:      userID,
		DisplayName: docstore.String(doc["displayName"]),
		Email:       docstore.String(doc["email"]),
		Preferences: prefs,
		CreatedAt:   optionalTime(doc["createdAt"]),
		UpdatedAt:   optionalTime(doc["updatedAt"]),
	}
}

func preferencesToDocument(p domain.Preferences) docstore.Document {
	return docstore.Document{
		"emailNotifications": p.EmailNotifications,
		"dailyTarget":        p.DailyTarget,
		"weeklyTarget":       p.WeeklyTarget,
	}
}

func optionalInt(v any) *int {
	n, ok := docstore.Int(v)
	if !ok {
		return nil
	}
	return &n
}

func optionalTime(v any) *time.Time {
	t, ok := docstore.Time(v)
	if !ok {
		return nil
	}
	return &t
}

// nullableInt and nullableString keep nil pointers as untyped nil in documents.
func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullableString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullableTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}

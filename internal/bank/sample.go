package bank

import "quiz-attempt-service/internal/domain"

// SampleQuizzes provides the built-in question bank used by `seed` and by
// `quiz.seed_sample`.
func SampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"number-system":        numberSystemQuiz(),
		"aptitude-quick-check": aptitudeQuickCheck(),
	}
}

func numberSystemQuiz() domain.Quiz {
	questions := []domain.Question{
		{ID: "q1", Text: "The remainder when 4587 is divided by 9 is:", Choices: []string{"3", "6", "9", "0"}, AnswerIndex: 1,
			Explanation: "Digit sum = 4+5+8+7 = 24, and 24 mod 9 = 6."},
		{ID: "q2", Text: "Which number is divisible by 6?", Choices: []string{"242", "318", "455", "502"}, AnswerIndex: 1,
			Explanation: "318 is even and its digit sum 12 is divisible by 3."},
		{ID: "q3", Text: "Convert 263 (base 8) to decimal.", Choices: []string{"163", "175", "179", "183"}, AnswerIndex: 2,
			Explanation: "2x64 + 6x8 + 3 = 179."},
		{ID: "q4", Text: "How many 3-digit numbers are divisible by 5?", Choices: []string{"90", "100", "180", "200"}, AnswerIndex: 2,
			Explanation: "900 three-digit numbers, one in five ends in 0 or 5: 180."},
		{ID: "q5", Text: "Which of the following is composite?", Choices: []string{"29", "31", "49", "53"}, AnswerIndex: 2,
			Explanation: "49 = 7x7."},
		{ID: "q6", Text: "Which number gives remainder 4 when divided by 7?", Choices: []string{"17", "25", "30", "33"}, AnswerIndex: 1,
			Explanation: "25 mod 7 = 4."},
		{ID: "q7", Text: "Find the unit digit of 7^13.", Choices: []string{"3", "7", "9", "1"}, AnswerIndex: 1,
			Explanation: "Unit digits cycle 7, 9, 3, 1 and 13 mod 4 = 1, so the digit is 7."},
		{ID: "q8", Text: "The number 65872 is divisible by 4 because:", Choices: []string{
			"last digit is even",
			"last 2 digits form a number divisible by 4",
			"digit sum divisible by 4",
			"ends in 2",
		}, AnswerIndex: 1, Explanation: "72 is divisible by 4."},
		{ID: "q9", Text: "Convert 1C (base 16) to decimal.", Choices: []string{"27", "28", "29", "30"}, AnswerIndex: 1,
			Explanation: "1x16 + 12 = 28."},
		{ID: "q10", Text: "Which of the following is divisible by 11?", Choices: []string{"14542", "23716", "92837", "53021"}, AnswerIndex: 0,
			Explanation: "Alternating digit sums are equal (8 and 8)."},
		{ID: "q11", Text: "Smallest number that leaves remainder 3 when divided by 8 and remainder 2 when divided by 5:", Choices: []string{"19", "27", "35", "43"}, AnswerIndex: 1,
			Explanation: "27 = 3x8 + 3 and 27 = 5x5 + 2."},
		{ID: "q12", Text: "For what value of x is (123) in base x equal to 27?", Choices: []string{"4", "5", "6", "7"}, AnswerIndex: 0,
			Explanation: "x^2 + 2x + 3 = 27 gives x = 4."},
		{ID: "q13", Text: "How many 3-digit numbers have digit sum equal to 5?", Choices: []string{"10", "15", "21", "12"}, AnswerIndex: 1,
			Explanation: "Stars and bars on (a-1) + b + c = 4 gives C(6,2) = 15."},
		{ID: "q14", Text: "Highest power of 2 that divides 720 is:", Choices: []string{"2^3", "2^4", "2^5", "2^6"}, AnswerIndex: 1,
			Explanation: "720 = 2^4 x 45."},
		{ID: "q15", Text: "The number 52a4 is divisible by 9. Find a.", Choices: []string{"5", "6", "7", "8"}, AnswerIndex: 2,
			Explanation: "5 + 2 + a + 4 must be a multiple of 9, so a = 7."},
	}
	return domain.Quiz{
		ID:            "number-system",
		Title:         "Number System - Aptitude Quiz",
		Category:      "Aptitude",
		Questions:     questions,
		QuestionCount: len(questions),
	}
}

func aptitudeQuickCheck() domain.Quiz {
	questions := []domain.Question{
		{ID: "aq1", Text: "What comes next in 2, 4, 8, 16, ?", Choices: []string{"24", "32", "30", "18"}, AnswerIndex: 1},
		{ID: "aq2", Text: "If x=3, evaluate 2x+5.", Choices: []string{"9", "11", "7", "6"}, AnswerIndex: 1},
		{ID: "aq3", Text: "Find the odd one: 3, 9, 27, 81, 82", Choices: []string{"81", "27", "82", "9"}, AnswerIndex: 2},
	}
	return domain.Quiz{
		ID:            "aptitude-quick-check",
		Title:         "Aptitude Quick Check",
		Category:      "Aptitude",
		Questions:     questions,
		QuestionCount: len(questions),
	}
}

package quiz

import (
	"fmt"
	"strings"
)

// FallbackQuestion is used when a module's questions could not be generated.
func FallbackQuestion(moduleID int, title string, index int) Question {
	lower := strings.ToLower(title)
	return Question{
		ID:       fmt.Sprintf("fallback-%d-%d", moduleID, index),
		Question: fmt.Sprintf("What is the main concept discussed in %q?", title),
		Options: []string{
			"Understanding " + lower,
			"Advanced techniques in " + lower,
			"Basic introduction to " + lower,
			"Practical applications of " + lower,
		},
		CorrectAnswer: 0,
		Explanation:   fmt.Sprintf("This module focuses on understanding the core concept of %s.", title),
	}
}

var courseGoalQuestions = []struct {
	question    string
	options     []string
	explanation string
}{
	{
		question: "What is the primary goal of this course?",
		options: []string{
			"To provide comprehensive understanding of core concepts",
			"To offer advanced technical skills only",
			"To introduce basic concepts without depth",
			"To focus on theoretical knowledge only",
		},
		explanation: "The course aims to provide a comprehensive understanding of core concepts.",
	},
	{
		question: "How should the material in this course be applied?",
		options: []string{
			"By practising it in realistic situations",
			"By memorizing definitions without context",
			"By skipping straight to the final module",
			"By avoiding it until every detail is known",
		},
		explanation: "The course is built around applying each idea in practice.",
	},
	{
		question: "What is the best way to build on what this course covers?",
		options: []string{
			"Keep practising and reviewing progress regularly",
			"Stop once the last module is finished",
			"Focus only on the introductory material",
			"Rely on others to apply the concepts",
		},
		explanation: "Lasting skill comes from continued practice and regular review.",
	},
}

// padGoalQuestions appends course-goal questions until the quiz reaches the
// minimum. Padding questions never repeat within a quiz.
func padGoalQuestions(quizIndex int, questions []Question) []Question {
	for g := 0; len(questions) < MinQuestions; g++ {
		goal := courseGoalQuestions[g%len(courseGoalQuestions)]
		questions = append(questions, Question{
			ID:            fmt.Sprintf("fallback-quiz-%d-%d", quizIndex, len(questions)),
			Question:      goal.question,
			Options:       append([]string(nil), goal.options...),
			CorrectAnswer: 0,
			Explanation:   goal.explanation,
		})
	}
	return questions
}

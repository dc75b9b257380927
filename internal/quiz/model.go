package quiz

import "github.com/onego-ai/onego/internal/content"

const (
	MinQuestions = 3
	MaxQuestions = 5

	questionsPerModule = 2
)

// Question is a multiple-choice item. CorrectAnswer indexes Options.
type Question struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

func (q Question) Valid() bool {
	return q.Question != "" && len(q.Options) >= 2 &&
		q.CorrectAnswer >= 0 && q.CorrectAnswer < len(q.Options)
}

type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Questions   []Question `json:"questions"`
	IsCompleted bool       `json:"is_completed"`
}

// Request asks for QuizCount quizzes over the finished modules of a course.
type Request struct {
	Subject   string
	Modules   []content.Module
	QuizCount int
}

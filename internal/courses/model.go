package courses

import (
	"time"

	"github.com/google/uuid"

	"github.com/onego-ai/onego/internal/content"
	"github.com/onego-ai/onego/internal/credits"
	"github.com/onego-ai/onego/internal/planner"
	"github.com/onego-ai/onego/internal/quiz"
)

const StatusDraft = "draft"

// Course matches the courses table schema. Quizzes is nil while
// QuizzesPending is set.
type Course struct {
	ID                 uuid.UUID        `json:"id"`
	CreatorID          uuid.UUID        `json:"creator_id"`
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	LearnerDescription string           `json:"learner_description"`
	Subject            string           `json:"subject"`
	TrackType          planner.Track    `json:"track_type"`
	TutorPersona       Persona          `json:"tutor_persona"`
	SystemPrompt       string           `json:"system_prompt"`
	Modules            []content.Module `json:"modules"`
	Quizzes            []quiz.Quiz      `json:"quizzes,omitempty"`
	QuizzesPending     bool             `json:"quizzes_pending"`
	ModuleCount        int              `json:"module_count"`
	QuizCount          int              `json:"quiz_count"`
	Duration           int              `json:"duration"`
	Status             string           `json:"status"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// CreateCourseRequest is the body of POST /courses. Nil counts take the
// configured defaults; an explicit quiz count of 0 still yields one quiz.
type CreateCourseRequest struct {
	Description          string        `json:"description" validate:"required,min=3,max=2000"`
	LearnerDescription   string        `json:"learner_description" validate:"max=2000"`
	TrackType            planner.Track `json:"track_type" validate:"required,oneof=Corporate Educational"`
	ModuleCount          *int          `json:"module_count" validate:"omitempty,min=1,max=12"`
	QuizCount            *int          `json:"quiz_count" validate:"omitempty,min=0,max=10"`
	Duration             *int          `json:"duration" validate:"omitempty,min=0,max=600"`
	SupplementaryContent string        `json:"supplementary_content" validate:"max=200000"`
}

type RegenerateQuizzesRequest struct {
	QuizCount *int `json:"quiz_count" validate:"omitempty,min=0,max=10"`
}

type CreateCourseResponse struct {
	Course  *Course          `json:"course"`
	Credits *credits.Summary `json:"credits"`
}

type ListCoursesParams struct {
	Page     int
	PageSize int
}

// ChatTurn is one earlier message of a tutor conversation. The client keeps
// the history; nothing about the conversation is stored.
type ChatTurn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=4000"`
}

type ChatRequest struct {
	Message string     `json:"message" validate:"required,max=2000"`
	History []ChatTurn `json:"history" validate:"max=20,dive"`
}

type ChatReply struct {
	Reply       string  `json:"reply"`
	SpeechReply string  `json:"speech_reply"`
	Persona     Persona `json:"persona"`
	Fallback    bool    `json:"fallback"`
}

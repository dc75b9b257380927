package nats

import (
	"time"

	"github.com/google/uuid"
)

// FetchTimeout is the default timeout for batch fetching messages from consumers.
const FetchTimeout = 2 * time.Second

// Stream names.
const (
	StreamEvents = "ONEGO_EVENTS"
	StreamJobs   = "ONEGO_JOBS"
)

// Subject constants.
const (
	SubjectCreditEvent = "onego.events.credits"
	SubjectCourseEvent = "onego.events.courses"
	SubjectAuditEvent  = "onego.events.audit"
	SubjectQuizJob     = "onego.jobs.quizzes"
)

// Course event types.
const (
	CourseCreated         = "course_created"
	CourseQuizzesAppended = "quizzes_appended"
)

// CreditEvent is published after credits are consumed.
type CreditEvent struct {
	UserID    uuid.UUID `json:"user_id"`
	Action    string    `json:"action"`
	Credits   int       `json:"credits"`
	Remaining int       `json:"remaining"`
	Timestamp time.Time `json:"timestamp"`
}

// CourseEvent is published for course lifecycle changes.
type CourseEvent struct {
	CourseID  uuid.UUID `json:"course_id"`
	UserID    uuid.UUID `json:"user_id"`
	EventType string    `json:"event_type"`
	Track     string    `json:"track"`
	Quizzes   int       `json:"quizzes"`
	Timestamp time.Time `json:"timestamp"`
}

// QuizJob asks the quiz worker to generate and append quizzes for a course
// whose modules are already persisted.
type QuizJob struct {
	RequestID string    `json:"request_id"`
	CourseID  uuid.UUID `json:"course_id"`
	UserID    uuid.UUID `json:"user_id"`
	QuizCount int       `json:"quiz_count"`
	Timestamp time.Time `json:"timestamp"`
}

// AuditEvent is published for the per-user activity log. ID makes
// redelivery idempotent.
type AuditEvent struct {
	ID           uuid.UUID `json:"id"`
	OwnerUserID  uuid.UUID `json:"owner_user_id"`
	EventType    string    `json:"event_type"`
	Severity     string    `json:"severity"` // info, warn, error
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	Details      string    `json:"details"`
	Timestamp    time.Time `json:"timestamp"`
}

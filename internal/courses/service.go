package courses

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/onego-ai/onego/internal/audit"
	"github.com/onego-ai/onego/internal/config"
	"github.com/onego-ai/onego/internal/content"
	"github.com/onego-ai/onego/internal/credits"
	"github.com/onego-ai/onego/internal/metrics"
	inats "github.com/onego-ai/onego/internal/nats"
	"github.com/onego-ai/onego/internal/planner"
	"github.com/onego-ai/onego/internal/quiz"
	"github.com/onego-ai/onego/internal/subject"
)

type Service struct {
	repo     Repository
	gate     *credits.Gate
	modules  *content.Synthesizer
	quizzes  *quiz.Synthesizer
	events   *inats.Publisher
	defaults config.GenerationConfig
}

// NewService wires the course pipeline. events may be nil, which disables
// publishing and async quiz jobs.
func NewService(repo Repository, gate *credits.Gate, modules *content.Synthesizer, quizzes *quiz.Synthesizer, events *inats.Publisher, defaults config.GenerationConfig) *Service {
	return &Service{
		repo:     repo,
		gate:     gate,
		modules:  modules,
		quizzes:  quizzes,
		events:   events,
		defaults: defaults,
	}
}

// Create runs the credit-gated pipeline: reserve, plan, synthesize modules,
// write the course, attach quizzes, then consume the credit. Any failure after
// the reservation releases it and removes the partial course.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *CreateCourseRequest) (*CreateCourseResponse, error) {
	start := time.Now()

	res, err := s.gate.Reserve(ctx, userID, credits.ActionCourseCreation, credits.CostPerAction)
	if err != nil {
		s.auditRejection(ctx, userID, err)
		return nil, err
	}

	gc := s.generationContext(req)
	plan := planner.Build(req.Description, gc.Subject, gc.Track, gc.ModuleCount)

	modules := s.modules.SynthesizeAll(ctx, gc, plan.ModuleTitles)

	now := time.Now().UTC()
	course := &Course{
		ID:                 uuid.New(),
		CreatorID:          userID,
		Title:              plan.CourseTitle,
		Description:        req.Description,
		LearnerDescription: req.LearnerDescription,
		Subject:            gc.Subject,
		TrackType:          gc.Track,
		TutorPersona:       PersonaFor(gc.Track),
		SystemPrompt: systemPrompt(promptInput{
			description:   req.Description,
			learners:      req.LearnerDescription,
			track:         gc.Track,
			modules:       gc.ModuleCount,
			quizzes:       gc.QuizCount,
			duration:      gc.Duration,
			supplementary: gc.SupplementaryContent,
		}),
		Modules:        modules,
		QuizzesPending: true,
		ModuleCount:    gc.ModuleCount,
		QuizCount:      max(1, gc.QuizCount),
		Duration:       gc.Duration,
		Status:         StatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, course); err != nil {
		res.Release(ctx)
		s.auditFailure(ctx, userID, course.Title, err)
		return nil, fmt.Errorf("saving course: %w", err)
	}

	if err := s.attachQuizzes(ctx, course, gc.QuizCount); err != nil {
		s.discard(ctx, course.ID)
		res.Release(ctx)
		s.auditFailure(ctx, userID, course.Title, err)
		return nil, err
	}

	summary, err := res.Commit(ctx, "Course created: "+course.Title, map[string]any{
		"course_id":    course.ID.String(),
		"course_title": course.Title,
		"track_type":   string(course.TrackType),
		"module_count": course.ModuleCount,
	})
	if err != nil {
		s.discard(ctx, course.ID)
		s.auditFailure(ctx, userID, course.Title, err)
		return nil, err
	}

	metrics.CoursesCreatedTotal.WithLabelValues(string(course.TrackType)).Inc()
	metrics.CourseGenerationDuration.Observe(time.Since(start).Seconds())

	s.publishCourseEvent(ctx, course, inats.CourseCreated)
	s.publishAudit(ctx, userID, audit.EventCourseCreated, audit.SeverityInfo, course.ID.String(),
		"Created course: "+course.Title)

	slog.Info("course created",
		"course_id", course.ID,
		"user_id", userID,
		"modules", len(course.Modules),
		"quizzes_pending", course.QuizzesPending,
	)

	return &CreateCourseResponse{Course: course, Credits: summary}, nil
}

// attachQuizzes either queues a quiz job or generates the quizzes inline and
// writes them as the second update of the course.
func (s *Service) attachQuizzes(ctx context.Context, course *Course, quizCount int) error {
	if s.defaults.AsyncQuizzes && s.events.Enabled() {
		err := s.events.PublishQuizJob(ctx, inats.QuizJob{
			RequestID: uuid.NewString(),
			CourseID:  course.ID,
			UserID:    course.CreatorID,
			QuizCount: quizCount,
			Timestamp: time.Now().UTC(),
		})
		if err == nil {
			return nil
		}
		slog.Warn("queueing quiz job failed, generating inline", "error", err, "course_id", course.ID)
	}

	quizzes := s.quizzes.Synthesize(ctx, quiz.Request{
		Subject:   course.Subject,
		Modules:   course.Modules,
		QuizCount: quizCount,
	})
	if err := s.repo.UpdateQuizzes(ctx, course.ID, quizzes); err != nil {
		return fmt.Errorf("saving quizzes: %w", err)
	}

	course.Quizzes = quizzes
	course.QuizCount = len(quizzes)
	course.QuizzesPending = false
	return nil
}

// discard removes a course whose creation could not be completed. It runs
// even when the request context is already cancelled.
func (s *Service) discard(ctx context.Context, id uuid.UUID) {
	if err := s.repo.Delete(context.WithoutCancel(ctx), id); err != nil {
		slog.Error("discarding partial course", "error", err, "course_id", id)
	}
}

func (s *Service) Get(ctx context.Context, userID, courseID uuid.UUID) (*Course, error) {
	course, err := s.repo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	if course.CreatorID != userID {
		return nil, ErrNotCourseOwner
	}
	return course, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, params ListCoursesParams) ([]*Course, int64, error) {
	offset := (params.Page - 1) * params.PageSize

	list, err := s.repo.ListByCreator(ctx, userID, params.PageSize, offset)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.repo.CountByCreator(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	return list, count, nil
}

// RegenerateQuizzes replaces the quiz set of an owned course. It is not
// metered.
func (s *Service) RegenerateQuizzes(ctx context.Context, userID, courseID uuid.UUID, quizCount *int) (*Course, error) {
	course, err := s.Get(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	count := course.QuizCount
	if quizCount != nil {
		count = *quizCount
	}

	quizzes := s.quizzes.Synthesize(ctx, quiz.Request{
		Subject:   course.Subject,
		Modules:   course.Modules,
		QuizCount: count,
	})
	if err := s.repo.UpdateQuizzes(ctx, course.ID, quizzes); err != nil {
		return nil, fmt.Errorf("saving quizzes: %w", err)
	}

	course.Quizzes = quizzes
	course.QuizCount = len(quizzes)
	course.QuizzesPending = false

	s.publishCourseEvent(ctx, course, inats.CourseQuizzesAppended)
	s.publishAudit(ctx, userID, audit.EventQuizzesRegenerated, audit.SeverityInfo, course.ID.String(),
		fmt.Sprintf("Regenerated %d quizzes for course: %s", len(quizzes), course.Title))

	return course, nil
}

// AppendQuizzes completes a course created with a queued quiz job. Jobs for
// courses that already have quizzes or no longer exist are dropped.
func (s *Service) AppendQuizzes(ctx context.Context, job inats.QuizJob) error {
	course, err := s.repo.GetByID(ctx, job.CourseID)
	if err != nil {
		return err
	}
	if course == nil {
		slog.Warn("quiz job for missing course", "course_id", job.CourseID)
		return nil
	}
	if course.CreatorID != job.UserID {
		return fmt.Errorf("quiz job user %s: %w", job.UserID, ErrNotCourseOwner)
	}
	if !course.QuizzesPending {
		return nil
	}

	quizzes := s.quizzes.Synthesize(ctx, quiz.Request{
		Subject:   course.Subject,
		Modules:   course.Modules,
		QuizCount: job.QuizCount,
	})
	if err := s.repo.UpdateQuizzes(ctx, course.ID, quizzes); err != nil {
		return fmt.Errorf("saving quizzes: %w", err)
	}

	course.Quizzes = quizzes
	course.QuizCount = len(quizzes)
	course.QuizzesPending = false
	s.publishCourseEvent(ctx, course, inats.CourseQuizzesAppended)
	return nil
}

func (s *Service) generationContext(req *CreateCourseRequest) content.GenerationContext {
	gc := content.GenerationContext{
		Subject:              subject.Normalize(req.Description),
		Description:          req.Description,
		LearnerDescription:   req.LearnerDescription,
		Track:                req.TrackType,
		ModuleCount:          s.defaults.DefaultModuleCount,
		QuizCount:            s.defaults.DefaultQuizCount,
		Duration:             s.defaults.DefaultDuration,
		SupplementaryContent: req.SupplementaryContent,
	}
	if !gc.Track.Valid() {
		gc.Track = planner.TrackCorporate
	}
	if req.ModuleCount != nil {
		gc.ModuleCount = *req.ModuleCount
	}
	if gc.ModuleCount < 1 {
		gc.ModuleCount = 1
	}
	if req.QuizCount != nil {
		gc.QuizCount = *req.QuizCount
	}
	if req.Duration != nil {
		gc.Duration = *req.Duration
	}
	return gc
}

func (s *Service) auditRejection(ctx context.Context, userID uuid.UUID, err error) {
	var insufficient *credits.InsufficientCreditsError
	if !errors.As(err, &insufficient) && !errors.Is(err, credits.ErrPlanRestricted) {
		return
	}
	s.publishAudit(ctx, userID, audit.EventCreditsRejected, audit.SeverityWarn, "",
		"Course creation rejected: "+err.Error())
}

func (s *Service) auditFailure(ctx context.Context, userID uuid.UUID, title string, err error) {
	slog.Error("course creation failed", "error", err, "user_id", userID, "title", title)
	s.publishAudit(ctx, userID, audit.EventCourseFailed, audit.SeverityError, "",
		fmt.Sprintf("Course creation failed for %q: %v", title, err))
}

func (s *Service) publishCourseEvent(ctx context.Context, course *Course, eventType string) {
	err := s.events.PublishCourseEvent(ctx, inats.CourseEvent{
		CourseID:  course.ID,
		UserID:    course.CreatorID,
		EventType: eventType,
		Track:     string(course.TrackType),
		Quizzes:   len(course.Quizzes),
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("publishing course event", "error", err, "course_id", course.ID)
	}
}

func (s *Service) publishAudit(ctx context.Context, userID uuid.UUID, eventType, severity, resourceID, details string) {
	err := s.events.PublishAuditEvent(ctx, inats.AuditEvent{
		ID:           uuid.New(),
		OwnerUserID:  userID,
		EventType:    eventType,
		Severity:     severity,
		ResourceType: "course",
		ResourceID:   resourceID,
		Details:      details,
		Timestamp:    time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("publishing audit event", "error", err, "event_type", eventType)
	}
}

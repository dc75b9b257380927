package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// Publisher provides typed methods for publishing events to NATS JetStream.
// A nil *Publisher is valid and drops everything, which is how the service
// runs without NATS.
type Publisher struct {
	js jetstream.JetStream
}

// NewPublisher creates a new Publisher.
func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

// Enabled reports whether messages actually leave the process.
func (p *Publisher) Enabled() bool {
	return p != nil && p.js != nil
}

// PublishCreditEvent publishes a credits-consumed event.
func (p *Publisher) PublishCreditEvent(ctx context.Context, event CreditEvent) error {
	return p.publish(ctx, SubjectCreditEvent, event)
}

// PublishCourseEvent publishes a course lifecycle event.
func (p *Publisher) PublishCourseEvent(ctx context.Context, event CourseEvent) error {
	return p.publish(ctx, SubjectCourseEvent, event)
}

// PublishAuditEvent publishes an audit event.
func (p *Publisher) PublishAuditEvent(ctx context.Context, event AuditEvent) error {
	return p.publish(ctx, SubjectAuditEvent, event)
}

// PublishQuizJob enqueues quiz generation for a course.
func (p *Publisher) PublishQuizJob(ctx context.Context, job QuizJob) error {
	if !p.Enabled() {
		return fmt.Errorf("publishing to %s: NATS not configured", SubjectQuizJob)
	}
	return p.publish(ctx, SubjectQuizJob, job)
}

func (p *Publisher) publish(ctx context.Context, subject string, data any) error {
	if !p.Enabled() {
		return nil
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling event for %s: %w", subject, err)
	}
	_, err = p.js.Publish(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}

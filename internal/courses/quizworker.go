package courses

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/onego-ai/onego/internal/metrics"
	inats "github.com/onego-ai/onego/internal/nats"
)

const quizWorkerName = "quiz-worker"

// QuizWorker consumes queued quiz jobs and appends the generated quizzes to
// their courses.
type QuizWorker struct {
	svc         *Service
	consumerMgr *inats.ConsumerManager
}

func NewQuizWorker(svc *Service, consumerMgr *inats.ConsumerManager) *QuizWorker {
	return &QuizWorker{
		svc:         svc,
		consumerMgr: consumerMgr,
	}
}

// Start begins the consume loop. Blocks until ctx is cancelled.
func (w *QuizWorker) Start(ctx context.Context) error {
	consumer, err := w.consumerMgr.EnsureConsumer(ctx, inats.StreamJobs, quizWorkerName, inats.SubjectQuizJob, inats.ConsumerOptions{
		AckWait:    5 * time.Minute,
		MaxDeliver: 3,
	})
	if err != nil {
		return err
	}

	slog.Info("quiz worker started", "consumer", quizWorkerName)

	for {
		// One job at a time: each one drives several model calls.
		msgs, err := consumer.Fetch(1, jetstream.FetchMaxWait(inats.FetchTimeout))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Debug("quiz worker: fetching jobs", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			w.handleJob(ctx, msg)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (w *QuizWorker) handleJob(ctx context.Context, msg jetstream.Msg) {
	var job inats.QuizJob
	if err := json.Unmarshal(msg.Data(), &job); err != nil {
		slog.Error("quiz worker: unmarshaling job", "error", err)
		metrics.QuizJobsTotal.WithLabelValues("invalid").Inc()
		_ = msg.Term()
		return
	}

	if err := w.svc.AppendQuizzes(ctx, job); err != nil {
		slog.Error("quiz worker: appending quizzes", "error", err, "course_id", job.CourseID, "request_id", job.RequestID)
		metrics.QuizJobsTotal.WithLabelValues("failed").Inc()
		_ = msg.Nak()
		return
	}

	metrics.QuizJobsTotal.WithLabelValues("completed").Inc()
	_ = msg.Ack()
}

package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/onego-ai/onego/internal/config"
	"github.com/onego-ai/onego/internal/content"
	"github.com/onego-ai/onego/internal/llm"
	"github.com/onego-ai/onego/internal/metrics"
)

const stageQuizQuestions = "quiz_questions"

type generatedQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

type generatedSet struct {
	Questions []generatedQuestion `json:"questions"`
}

type Synthesizer struct {
	gen         llm.Generator
	model       string
	temperature float64
	maxTokens   int
	parallelism int
}

func NewSynthesizer(gen llm.Generator, model string, cfg config.GenerationConfig) *Synthesizer {
	parallelism := cfg.QuizParallelism
	if parallelism < 1 {
		parallelism = 1
	}
	return &Synthesizer{
		gen:         gen,
		model:       model,
		temperature: cfg.QuizTemperature,
		maxTokens:   cfg.QuizMaxTokens,
		parallelism: parallelism,
	}
}

// Synthesize returns max(1, QuizCount) quizzes in order, each holding between
// MinQuestions and MaxQuestions valid questions.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request) []Quiz {
	chunks := Partition(req.Modules, req.QuizCount)
	quizzes := make([]Quiz, len(chunks))

	var g errgroup.Group
	g.SetLimit(s.parallelism)
	for i, chunk := range chunks {
		g.Go(func() error {
			quizzes[i] = s.buildQuiz(ctx, req.Subject, i+1, chunk)
			return nil
		})
	}
	_ = g.Wait()

	return quizzes
}

func (s *Synthesizer) buildQuiz(ctx context.Context, subject string, n int, modules []content.Module) Quiz {
	var questions []Question
	for _, m := range modules {
		questions = append(questions, s.moduleQuestions(ctx, subject, m)...)
	}

	questions = padGoalQuestions(n, questions)
	if len(questions) > MaxQuestions {
		questions = questions[:MaxQuestions]
	}

	return Quiz{
		ID:        fmt.Sprintf("quiz-%d", n),
		Title:     fmt.Sprintf("Knowledge Check %d", n),
		Questions: questions,
	}
}

func (s *Synthesizer) moduleQuestions(ctx context.Context, subject string, m content.Module) []Question {
	res := llm.DecodeJSON[generatedSet](s.gen.Generate(ctx, llm.Request{
		Model:       s.model,
		System:      systemPrompt,
		Prompt:      buildPrompt(subject, m),
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	}))

	var questions []Question
	if res.OK() {
		for _, gq := range res.Value.Questions {
			q := Question{
				ID:            fmt.Sprintf("ai-%d-%d", m.ID, len(questions)+1),
				Question:      gq.Question,
				Options:       gq.Options,
				CorrectAnswer: gq.CorrectAnswer,
				Explanation:   gq.Explanation,
			}
			if !q.Valid() {
				continue
			}
			questions = append(questions, q)
			if len(questions) == questionsPerModule {
				break
			}
		}
		if len(questions) == 0 {
			res = llm.Failure[generatedSet](llm.KindMalformed, errors.New("no valid questions in response"))
		}
	}

	if !res.OK() {
		attrs := []any{"module", m.Title, "kind", res.Err.Kind, "error", res.Err}
		if res.Err.Kind == llm.KindUnavailable {
			slog.Debug("quiz questions falling back to template", attrs...)
		} else {
			slog.Warn("quiz questions falling back to template", attrs...)
		}
		metrics.GenerationFailuresTotal.WithLabelValues(stageQuizQuestions, string(res.Err.Kind)).Inc()
		metrics.GenerationsTotal.WithLabelValues(stageQuizQuestions, string(content.SourceFallback)).Inc()
		return []Question{FallbackQuestion(m.ID, m.Title, 1)}
	}

	metrics.GenerationsTotal.WithLabelValues(stageQuizQuestions, string(content.SourceAI)).Inc()
	return questions
}

// Partition splits modules into count contiguous chunks of ceil(M/count).
// Trailing chunks may be empty; a count below one yields a single chunk.
func Partition(modules []content.Module, count int) [][]content.Module {
	if count < 1 {
		count = 1
	}
	size := (len(modules) + count - 1) / count

	chunks := make([][]content.Module, count)
	for i := range chunks {
		start := min(i*size, len(modules))
		end := min(start+size, len(modules))
		chunks[i] = modules[start:end]
	}
	return chunks
}

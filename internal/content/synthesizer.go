package content

import (
	"context"
	"log/slog"

	"github.com/onego-ai/onego/internal/config"
	"github.com/onego-ai/onego/internal/llm"
	"github.com/onego-ai/onego/internal/metrics"
)

const stageModuleContent = "module_content"

// Synthesizer turns planned titles into module bodies. It asks the generator
// first and falls back to a templated narrative on any failure.
type Synthesizer struct {
	gen         llm.Generator
	model       string
	temperature float64
	maxTokens   int
	minLength   int
}

func NewSynthesizer(gen llm.Generator, model string, cfg config.GenerationConfig) *Synthesizer {
	minLength := cfg.MinContentLength
	if minLength <= 0 {
		minLength = 100
	}
	return &Synthesizer{
		gen:         gen,
		model:       model,
		temperature: cfg.ContentTemperature,
		maxTokens:   cfg.ContentMaxTokens,
		minLength:   minLength,
	}
}

// Synthesize always returns a module with non-empty content.
func (s *Synthesizer) Synthesize(ctx context.Context, req ModuleRequest) Module {
	role := Classify(req.Title)

	m := Module{
		ID:        req.Position,
		Title:     req.Title,
		KeyPoints: KeyPoints(role, req.Context.Subject),
		Role:      role,
	}
	if req.Total > 0 && req.Context.Duration > 0 {
		m.Duration = req.Context.Duration / req.Total
	}

	res := llm.AtLeast(s.gen.Generate(ctx, llm.Request{
		Model:       s.model,
		System:      systemPrompt,
		Prompt:      buildPrompt(role, req),
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	}), s.minLength)

	if res.OK() {
		m.Content = res.Value
		m.Source = SourceAI
	} else {
		logFailure(res.Err, req)
		metrics.GenerationFailuresTotal.WithLabelValues(stageModuleContent, string(res.Err.Kind)).Inc()
		m.Content = Fallback(role, req)
		m.Source = SourceFallback
	}

	metrics.GenerationsTotal.WithLabelValues(stageModuleContent, string(m.Source)).Inc()
	return m
}

// SynthesizeAll generates one module per title, in order.
func (s *Synthesizer) SynthesizeAll(ctx context.Context, gc GenerationContext, titles []string) []Module {
	modules := make([]Module, 0, len(titles))
	for i, title := range titles {
		modules = append(modules, s.Synthesize(ctx, ModuleRequest{
			Title:         title,
			Position:      i + 1,
			Total:         len(titles),
			SiblingTitles: titles,
			Context:       gc,
		}))
	}
	return modules
}

func logFailure(err *llm.Error, req ModuleRequest) {
	attrs := []any{
		"title", req.Title,
		"position", req.Position,
		"kind", err.Kind,
		"error", err,
	}
	// No AI key configured is the normal offline mode.
	if err.Kind == llm.KindUnavailable {
		slog.Debug("module content falling back to template", attrs...)
		return
	}
	slog.Warn("module content falling back to template", attrs...)
}

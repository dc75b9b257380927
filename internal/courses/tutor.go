package courses

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/onego-ai/onego/internal/config"
	"github.com/onego-ai/onego/internal/content"
	"github.com/onego-ai/onego/internal/llm"
	"github.com/onego-ai/onego/internal/metrics"
)

const stageTutorChat = "tutor_chat"

const replyContract = "Keep responses between 40-100 words. Be engaging and use **bold** for key points. Stay focused on the course topic."

var brandPattern = regexp.MustCompile(`(?i)onego`)

// Tutor answers learner questions about a course in the voice of its persona,
// using the system prompt stored when the course was created.
type Tutor struct {
	courses *Service
	gen     llm.Generator
	model   string
	cfg     config.GenerationConfig
}

func NewTutor(courses *Service, gen llm.Generator, model string, cfg config.GenerationConfig) *Tutor {
	return &Tutor{
		courses: courses,
		gen:     gen,
		model:   model,
		cfg:     cfg,
	}
}

// Reply answers one message. Only the course owner may chat with its tutor.
// Generation failures produce a persona-voiced fallback rather than an error.
func (t *Tutor) Reply(ctx context.Context, userID, courseID uuid.UUID, req ChatRequest) (*ChatReply, error) {
	course, err := t.courses.Get(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	history := make([]llm.Message, 0, len(req.History))
	for _, turn := range req.History {
		history = append(history, llm.Message{Role: turn.Role, Content: turn.Content})
	}

	res := t.gen.Generate(ctx, llm.Request{
		Model:       t.model,
		System:      tutorSystemPrompt(course),
		History:     history,
		Prompt:      req.Message,
		Temperature: t.cfg.ChatTemperature,
		MaxTokens:   t.cfg.ChatMaxTokens,
	})

	reply := &ChatReply{Persona: course.TutorPersona}
	if res.OK() {
		reply.Reply = res.Value
		metrics.GenerationsTotal.WithLabelValues(stageTutorChat, string(content.SourceAI)).Inc()
	} else {
		slog.Warn("tutor reply fell back",
			"course_id", course.ID,
			"kind", res.Err.Kind,
			"error", res.Err,
		)
		metrics.GenerationFailuresTotal.WithLabelValues(stageTutorChat, string(res.Err.Kind)).Inc()
		metrics.GenerationsTotal.WithLabelValues(stageTutorChat, string(content.SourceFallback)).Inc()
		reply.Reply = fallbackReply(course)
		reply.Fallback = true
	}
	reply.SpeechReply = speechText(reply.Reply)
	return reply, nil
}

func tutorSystemPrompt(c *Course) string {
	var b strings.Builder
	if c.SystemPrompt != "" {
		b.WriteString(c.SystemPrompt)
	} else {
		fmt.Fprintf(&b, "You are %s, an expert tutor from ONEGO Learning. Course: %s.", c.TutorPersona, c.Description)
		if c.LearnerDescription != "" {
			fmt.Fprintf(&b, " Target learners: %s.", c.LearnerDescription)
		}
	}
	b.WriteString("\n\n")
	b.WriteString(replyContract)
	return b.String()
}

func fallbackReply(c *Course) string {
	return fmt.Sprintf("I'm %s, your tutor for **%s**. I can't put together a full answer right now, "+
		"so let's keep momentum: pick the module you are working through, tell me which idea feels "+
		"least clear, and ask me again in a moment. We will work through it step by step.",
		c.TutorPersona, c.Title)
}

// speechText spells the brand name so text-to-speech reads it as two words.
func speechText(reply string) string {
	return brandPattern.ReplaceAllString(reply, "ONE GO")
}

package courses

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onego-ai/onego/internal/llm"
)

type recordingGenerator struct {
	mu    sync.Mutex
	last  llm.Request
	reply string
}

func (g *recordingGenerator) Generate(_ context.Context, req llm.Request) llm.Result[string] {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = req
	return llm.Success(g.reply)
}

func TestTutor_Reply(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	owner := uuid.New()
	f.ledger.seed(owner, 50, 0)
	resp, err := f.svc.Create(ctx, owner, customerServiceRequest())
	require.NoError(t, err)
	course := resp.Course

	t.Run("uses the stored system prompt and history", func(t *testing.T) {
		gen := &recordingGenerator{reply: "At **ONEGO Learning** we start with empathy."}
		cfg := testGenerationConfig()
		cfg.ChatTemperature = 0.7
		cfg.ChatMaxTokens = 150
		tutor := NewTutor(f.svc, gen, "chat-model", cfg)

		reply, err := tutor.Reply(ctx, owner, course.ID, ChatRequest{
			Message: "How do I calm an upset customer?",
			History: []ChatTurn{
				{Role: "user", Content: "Hi Nia"},
				{Role: "assistant", Content: "Hello! Ready to start?"},
			},
		})
		require.NoError(t, err)

		assert.False(t, reply.Fallback)
		assert.Equal(t, PersonaNia, reply.Persona)
		assert.Equal(t, "At **ONEGO Learning** we start with empathy.", reply.Reply)
		assert.Equal(t, "At **ONE GO Learning** we start with empathy.", reply.SpeechReply)

		assert.Equal(t, "chat-model", gen.last.Model)
		assert.Equal(t, 150, gen.last.MaxTokens)
		assert.True(t, strings.HasPrefix(gen.last.System, course.SystemPrompt))
		assert.Contains(t, gen.last.System, "Keep responses between 40-100 words.")
		assert.Equal(t, "How do I calm an upset customer?", gen.last.Prompt)
		require.Len(t, gen.last.History, 2)
		assert.Equal(t, llm.Message{Role: "assistant", Content: "Hello! Ready to start?"}, gen.last.History[1])
	})

	t.Run("generation failure falls back in persona", func(t *testing.T) {
		reply, err := f.tutor.Reply(ctx, owner, course.ID, ChatRequest{Message: "What comes next?"})
		require.NoError(t, err)

		assert.True(t, reply.Fallback)
		assert.Contains(t, reply.Reply, "I'm Nia")
		assert.Contains(t, reply.Reply, course.Title)
		words := len(strings.Fields(reply.Reply))
		assert.GreaterOrEqual(t, words, 40)
		assert.LessOrEqual(t, words, 100)
	})

	t.Run("chat is free", func(t *testing.T) {
		_, err := f.tutor.Reply(ctx, owner, course.ID, ChatRequest{Message: "Thanks"})
		require.NoError(t, err)
		assert.Equal(t, 1, f.ledger.used(owner))
	})

	t.Run("owner only", func(t *testing.T) {
		_, err := f.tutor.Reply(ctx, uuid.New(), course.ID, ChatRequest{Message: "Hi"})
		assert.ErrorIs(t, err, ErrNotCourseOwner)

		_, err = f.tutor.Reply(ctx, owner, uuid.New(), ChatRequest{Message: "Hi"})
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})
}

func TestTutorSystemPrompt_WithoutStoredPrompt(t *testing.T) {
	prompt := tutorSystemPrompt(&Course{
		TutorPersona:       PersonaLeo,
		Description:        "Fractions for grade 5",
		LearnerDescription: "ten year olds",
	})

	assert.Contains(t, prompt, "You are Leo, an expert tutor from ONEGO Learning. Course: Fractions for grade 5.")
	assert.Contains(t, prompt, "Target learners: ten year olds.")
	assert.True(t, strings.HasSuffix(prompt, replyContract))
}

package quiz

import (
	"fmt"
	"strings"

	"github.com/onego-ai/onego/internal/content"
)

const maxModuleExcerpt = 3000

const systemPrompt = "You are an expert educational content creator. Generate quiz questions based on provided content. Return only valid JSON."

func buildPrompt(subject string, m content.Module) string {
	body := []rune(m.Content)
	if len(body) > maxModuleExcerpt {
		body = body[:maxModuleExcerpt]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate exactly %d quiz questions based on the following course module.\n\n", questionsPerModule)
	fmt.Fprintf(&b, "COURSE TOPIC: %s\n", subject)
	fmt.Fprintf(&b, "MODULE TITLE: %s\n", m.Title)
	fmt.Fprintf(&b, "MODULE CONTENT: %s\n", string(body))
	fmt.Fprintf(&b, "KEY POINTS: %s\n\n", strings.Join(m.KeyPoints, ", "))
	b.WriteString(`Each question must test the actual module content with 4 answer options, exactly one correct, and a brief explanation.

Respond with JSON only:
{"questions":[{"question":"...","options":["...","...","...","..."],"correctAnswer":0,"explanation":"..."}]}`)
	return b.String()
}

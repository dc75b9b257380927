package content

import "github.com/onego-ai/onego/internal/planner"

// Source records whether a module body came from the model or a template.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// GenerationContext is built fresh for each course request and never persisted
// on its own.
type GenerationContext struct {
	Subject              string
	Description          string
	LearnerDescription   string
	Track                planner.Track
	ModuleCount          int
	QuizCount            int
	Duration             int
	SupplementaryContent string
}

// Module is one unit of a course. ID is the 1-based position.
type Module struct {
	ID        int      `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	KeyPoints []string `json:"key_points"`
	Duration  int      `json:"duration"`
	Role      Role     `json:"role"`
	Source    Source   `json:"source"`
}

// ModuleRequest describes one module to synthesize.
type ModuleRequest struct {
	Title         string
	Position      int
	Total         int
	SiblingTitles []string
	Context       GenerationContext
}

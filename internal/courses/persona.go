package courses

import (
	"fmt"
	"strings"

	"github.com/onego-ai/onego/internal/planner"
)

// Persona is the tutor that delivers a course. It follows the track 1:1.
type Persona string

const (
	PersonaNia Persona = "Nia"
	PersonaLeo Persona = "Leo"
)

const maxPromptSupplement = 200

func PersonaFor(track planner.Track) Persona {
	if track == planner.TrackEducational {
		return PersonaLeo
	}
	return PersonaNia
}

type promptInput struct {
	description   string
	learners      string
	track         planner.Track
	modules       int
	quizzes       int
	duration      int
	supplementary string
}

type personaVoice struct {
	intro    string
	role     []string
	approach []string
	closing  string
}

var voices = map[Persona]personaVoice{
	PersonaNia: {
		intro: "You are an expert corporate trainer named Nia, specializing in professional development and workplace training. You're here to guide learners through a comprehensive course focused on: %s",
		role: []string{
			"Guide learners through structured learning modules specific to %s",
			"Provide industry-specific examples and case studies related to %s",
			"Encourage active participation and practical application",
			"Offer constructive feedback and support",
		},
		approach: []string{
			"Use real-world scenarios and practical examples from %s",
			"Provide actionable strategies and techniques for %s",
			"Address common challenges and pain points in %s",
		},
		closing: "Stay focused on %s and make the learning experience immediately applicable to the learner's work environment.",
	},
	PersonaLeo: {
		intro: "You are an expert educational tutor named Leo, specializing in academic instruction and student development. You're here to guide learners through an engaging lesson focused on: %s",
		role: []string{
			"Guide learners through structured learning modules specific to %s",
			"Provide clear explanations and examples related to %s",
			"Encourage questions and active participation",
			"Offer supportive feedback and encouragement",
		},
		approach: []string{
			"Break down %s concepts into understandable parts",
			"Use relevant examples and analogies from %s",
			"Ensure comprehension of %s before moving forward",
		},
		closing: "Focus on %s while building a strong foundation in the subject matter.",
	},
}

func systemPrompt(in promptInput) string {
	persona := PersonaFor(in.track)
	v := voices[persona]

	learners := in.learners
	if learners == "" {
		learners = "learners at every level"
	}

	var b strings.Builder
	fmt.Fprintf(&b, v.intro, in.description)
	b.WriteString("\n\nCOURSE DETAILS:\n")
	fmt.Fprintf(&b, "- Course Description: %s\n", in.description)
	fmt.Fprintf(&b, "- Target Learners: %s\n", learners)
	fmt.Fprintf(&b, "- Number of Topics: %d\n", in.modules)
	fmt.Fprintf(&b, "- Number of Quizzes: %d\n", in.quizzes)
	fmt.Fprintf(&b, "- Session Duration: %d minutes\n", in.duration)
	if in.supplementary != "" {
		r := []rune(in.supplementary)
		if len(r) > maxPromptSupplement {
			r = r[:maxPromptSupplement]
		}
		fmt.Fprintf(&b, "- Additional Content: %s...\n", string(r))
	}

	b.WriteString("\nYOUR ROLE:\n")
	for _, line := range v.role {
		b.WriteString("- ")
		b.WriteString(interpolate(line, in.description))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "- Adapt your teaching style to %s\n", learners)

	b.WriteString("\nTEACHING APPROACH:\n")
	for _, line := range v.approach {
		b.WriteString("- ")
		b.WriteString(interpolate(line, in.description))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, v.closing, in.description)
	return b.String()
}

func interpolate(line, description string) string {
	if !strings.Contains(line, "%s") {
		return line
	}
	return fmt.Sprintf(line, description)
}

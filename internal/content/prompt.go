package content

import (
	"fmt"
	"strings"

	"github.com/onego-ai/onego/internal/planner"
)

const maxSupplementaryExcerpt = 2000

const systemPrompt = `You are an expert course author who writes deep, topic-specific learning modules.
Every module you write:
- goes deep on a few ideas instead of skimming many
- states its prerequisites explicitly
- advances one capstone scenario that evolves across the whole course
- uses concrete, advanced examples from the subject and never generic introductory filler
- does not repeat material that belongs to the other modules of the course
Write in Markdown with clear headings.`

var roleBriefs = map[Role]string{
	RoleIntroduction: "Orient the learner. Establish the vocabulary, the motivation and the mental model that later modules build on, without drifting into trivia.",
	RoleFundamentals: "Teach the core principles rigorously: the frameworks, the trade-offs and the reasoning an expert applies.",
	RolePractical:    "Apply the principles to realistic situations: worked examples, decision points and the failure modes practitioners run into.",
	RoleAssessment:   "Consolidate and evaluate: synthesis exercises, self-assessment criteria and a plan for continued growth.",
	RoleGeneric:      "Extend the course with specialized, advanced material that builds on every earlier module.",
}

func trackAudience(t planner.Track) string {
	if t == planner.TrackEducational {
		return "an educational course for students"
	}
	return "a corporate training course for professionals"
}

func buildPrompt(role Role, req ModuleRequest) string {
	gc := req.Context

	var b strings.Builder
	fmt.Fprintf(&b, "Write module %d of %d, titled %q, for %s on %s.\n\n",
		req.Position, req.Total, req.Title, trackAudience(gc.Track), gc.Subject)

	fmt.Fprintf(&b, "Module role: %s. %s\n", role, roleBriefs[role])
	if gc.Description != "" {
		fmt.Fprintf(&b, "Course description: %s\n", gc.Description)
	}
	if gc.LearnerDescription != "" {
		fmt.Fprintf(&b, "Target learners: %s\n", gc.LearnerDescription)
	}

	b.WriteString("\nAll module titles in this course, in order:\n")
	for i, t := range req.SiblingTitles {
		marker := ""
		if i+1 == req.Position {
			marker = " (this module)"
		}
		fmt.Fprintf(&b, "%d. %s%s\n", i+1, t, marker)
	}
	b.WriteString("Cover only what belongs to this module; the others handle their own material.\n")

	if gc.SupplementaryContent != "" {
		fmt.Fprintf(&b, "\nReference material supplied by the author:\n%s\n", excerpt(gc.SupplementaryContent, maxSupplementaryExcerpt))
	}

	b.WriteString(`
Structure the module as:
1. Overview
2. Prerequisites
3. What learners will learn
4. Detailed topics, each with an advanced, subject-specific example
5. Capstone step: how this module advances the course-long scenario
6. Common challenges and how to handle them
7. Success metrics
8. Further resources`)

	return b.String()
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

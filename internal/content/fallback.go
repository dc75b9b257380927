package content

import (
	"fmt"
	"strings"

	"github.com/onego-ai/onego/internal/planner"
)

type fallbackTopic struct {
	heading string
	points  []string
}

type fallbackOutline struct {
	overview string
	learn    string
	topics   []fallbackTopic
}

// Outline strings mark the subject with {subject}.
var fallbackOutlines = map[Role]fallbackOutline{
	RoleIntroduction: {
		overview: "This foundational module introduces {subject} and sets the stage for the rest of the course.",
		learn:    "You will build the vocabulary and the mental model that every later module on {subject} relies on.",
		topics: []fallbackTopic{
			{"Understanding the Fundamentals", []string{
				"**What is {subject}?** The core definitions and the problems it solves.",
				"**Why it matters** Where {subject} shows up in real work and study.",
				"**Key terminology** The terms you will use throughout the course.",
			}},
			{"Setting Up for Success", []string{
				"**Prerequisites** What to review before going further with {subject}.",
				"**Learning objectives** Clear goals for this module and how to measure them.",
				"**Success metrics** How you will know your understanding is solid.",
			}},
			{"Getting Started", []string{
				"**Your learning path** How this module connects to the ones that follow.",
				"**Tools and resources** What you need to practise {subject} effectively.",
				"**First exercise** A short task that anchors the concepts above.",
			}},
		},
	},
	RoleFundamentals: {
		overview: "This module covers the core principles of {subject} and the reasoning behind them.",
		learn:    "You will learn the frameworks experts use for {subject} and when each one applies.",
		topics: []fallbackTopic{
			{"Core Principles", []string{
				"**Foundational frameworks** The models that structure good practice in {subject}.",
				"**Decision-making tools** How to choose between competing approaches.",
				"**Standards and conventions** What the field agrees on and why.",
			}},
			{"Advanced Concepts", []string{
				"**Trade-offs** Where the principles of {subject} pull against each other.",
				"**Edge cases** Situations where the usual rules need adjusting.",
			}},
			{"Practical Theory", []string{
				"**From theory to action** Turning principles of {subject} into concrete steps.",
				"**Critical analysis** Evaluating approaches against evidence and outcomes.",
			}},
		},
	},
	RolePractical: {
		overview: "This module puts {subject} into practice through realistic scenarios.",
		learn:    "You will apply {subject} to situations you are likely to face and learn to handle what goes wrong.",
		topics: []fallbackTopic{
			{"Real-World Applications", []string{
				"**Scenario walkthroughs** Applying {subject} to realistic cases step by step.",
				"**Decision points** Where practitioners must choose and what they weigh.",
			}},
			{"Hands-On Practice", []string{
				"**Guided exercises** Practising the core techniques of {subject}.",
				"**Troubleshooting** Diagnosing and fixing common mistakes.",
				"**Feedback loops** Checking your results and improving them.",
			}},
			{"Implementation Strategies", []string{
				"**Planning** Building an actionable plan for using {subject} right away.",
				"**Measuring success** Tracking progress with meaningful indicators.",
			}},
		},
	},
	RoleAssessment: {
		overview: "This module consolidates what you have learned about {subject} and helps you evaluate your mastery.",
		learn:    "You will check your understanding of {subject}, identify gaps and plan your next steps.",
		topics: []fallbackTopic{
			{"Knowledge Assessment", []string{
				"**Reviewing key concepts** A structured recap of {subject}.",
				"**Self-check questions** Testing recall and understanding.",
			}},
			{"Skill Validation", []string{
				"**Applied challenge** A task that combines everything covered on {subject}.",
				"**Evaluation criteria** How to judge the quality of your work.",
			}},
			{"Future Development", []string{
				"**Growth areas** Where to deepen your expertise in {subject}.",
				"**Long-term plan** Building habits for continuous improvement.",
			}},
		},
	},
	RoleGeneric: {
		overview: "This module explores specialized and advanced aspects of {subject}.",
		learn:    "You will extend your expertise in {subject} beyond the fundamentals.",
		topics: []fallbackTopic{
			{"Advanced Concepts", []string{
				"**Specialized techniques** Methods experienced practitioners of {subject} rely on.",
				"**Current developments** How the field is evolving.",
			}},
			{"Specialized Applications", []string{
				"**Industry-specific uses** Where {subject} is applied in particular contexts.",
				"**Cross-functional integration** Combining {subject} with related disciplines.",
			}},
			{"Mastery and Excellence", []string{
				"**Leading with {subject}** Guiding others and setting standards.",
				"**Continuous learning** Staying current after the course ends.",
			}},
		},
	},
}

// Fallback renders the templated narrative for a module. It never returns an
// empty string.
func Fallback(role Role, req ModuleRequest) string {
	outline, ok := fallbackOutlines[role]
	if !ok {
		outline = fallbackOutlines[RoleGeneric]
	}
	subj := req.Context.Subject

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", req.Title)

	b.WriteString("## Overview\n")
	b.WriteString(withSubject(outline.overview, subj))
	fmt.Fprintf(&b, " It is part of %s and is written for %s.\n\n", trackContext(req.Context.Track), audience(req.Context.LearnerDescription))

	b.WriteString("## What You'll Learn\n")
	b.WriteString(withSubject(outline.learn, subj))
	b.WriteString("\n\n")

	for i, topic := range outline.topics {
		fmt.Fprintf(&b, "### Topic %d: %s\n", i+1, topic.heading)
		for _, p := range topic.points {
			b.WriteString("- ")
			b.WriteString(withSubject(p, subj))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Module Summary\n")
	fmt.Fprintf(&b, "This is module %d of %d in the course on %s. ", req.Position, req.Total, subj)
	if req.Position < req.Total {
		b.WriteString("The next module builds directly on the ideas covered here.\n")
	} else {
		fmt.Fprintf(&b, "It completes the course; revisit earlier modules as you put %s into practice.\n", subj)
	}

	return b.String()
}

func withSubject(tmpl, subject string) string {
	return strings.ReplaceAll(tmpl, "{subject}", subject)
}

func trackContext(t planner.Track) string {
	if t == planner.TrackEducational {
		return "an educational learning path"
	}
	return "a professional training program"
}

func audience(learner string) string {
	learner = strings.TrimSpace(learner)
	if learner == "" {
		return "learners at every level"
	}
	return excerpt(learner, 100)
}

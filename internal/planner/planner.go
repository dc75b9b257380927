// Package planner derives a course title and ordered module titles from a
// description without calling the language model.
package planner

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Track selects the title vocabulary and tutor persona.
type Track string

const (
	TrackCorporate   Track = "Corporate"
	TrackEducational Track = "Educational"
)

// Valid reports whether t is a known track.
func (t Track) Valid() bool {
	return t == TrackCorporate || t == TrackEducational
}

const maxCourseTitleWords = 3

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "this": true, "that": true,
	"will": true, "your": true, "learn": true, "about": true, "from": true, "into": true,
	"want": true, "need": true, "would": true, "like": true, "please": true, "help": true,
	"create": true, "make": true, "build": true, "develop": true, "course": true,
	"training": true, "learning": true, "lesson": true, "module": true, "class": true,
	"workshop": true, "seminar": true, "regarding": true, "concerning": true,
	"our": true, "their": true, "who": true, "how": true, "what": true, "are": true,
}

var templates = map[Track][]string{
	TrackCorporate: {
		"Introduction to %s",
		"Core %s Principles",
		"Practical %s Applications",
		"%s Best Practices",
		"%s Implementation",
		"%s Assessment & Next Steps",
	},
	TrackEducational: {
		"Introduction to %s",
		"Core %s Concepts",
		"Practical %s Examples",
		"%s Case Studies",
		"%s Problem Solving",
		"%s Review & Assessment",
	},
}

// Plan is the deterministic outline of a course.
type Plan struct {
	CourseTitle  string   `json:"course_title"`
	Topic        string   `json:"topic"`
	ModuleTitles []string `json:"module_titles"`
}

// Build returns the course title and exactly n module titles. The course
// title comes from the raw description and the module titles from the
// normalized subject. n below 1 is treated as 1.
func Build(description, subject string, track Track, n int) Plan {
	if n < 1 {
		n = 1
	}
	topic := Topic(subject)
	return Plan{
		CourseTitle:  CourseTitle(description, track),
		Topic:        topic,
		ModuleTitles: ModuleTitles(topic, track, n),
	}
}

// CourseTitle title-cases the first meaningful words of the raw description.
func CourseTitle(description string, track Track) string {
	words := meaningful(description, maxCourseTitleWords)
	if len(words) == 0 {
		return fmt.Sprintf("%s Course", track)
	}
	return titleCase(strings.Join(words, " "))
}

// Topic combines the first two meaningful words of subject into the phrase
// interpolated into module titles.
func Topic(subject string) string {
	words := meaningful(subject, 2)
	if len(words) == 0 {
		return titleCase(strings.TrimSpace(subject))
	}
	return titleCase(strings.Join(words, " "))
}

// ModuleTitles picks from the track's template list, truncating or extending
// with "Advanced <topic> Topic k" to reach n.
func ModuleTitles(topic string, track Track, n int) []string {
	list, ok := templates[track]
	if !ok {
		list = templates[TrackCorporate]
	}

	titles := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if i < len(list) {
			titles = append(titles, fmt.Sprintf(list[i], topic))
			continue
		}
		titles = append(titles, fmt.Sprintf("Advanced %s Topic %d", topic, i-len(list)+1))
	}
	return titles
}

func meaningful(text string, limit int) []string {
	var words []string
	for _, f := range strings.Fields(strings.ToLower(text)) {
		w := strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) && r != '+' && r != '#'
		})
		if utf8.RuneCountInString(w) <= 2 || stopwords[w] {
			continue
		}
		words = append(words, w)
		if len(words) == limit {
			break
		}
	}
	return words
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

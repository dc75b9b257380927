package extraction

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

// ExtractDomain returns the host of rawURL without a leading "www.".
func ExtractDomain(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return "", ErrInvalidURL
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www."), nil
}

// SearchQuery prefixes prompt with the domain labels minus the TLD, so
// "docs.example.com" becomes "docs example <prompt>".
func SearchQuery(domain, prompt string) string {
	labels := strings.Split(domain, ".")
	if len(labels) > 1 {
		labels = labels[:len(labels)-1]
	}
	return strings.TrimSpace(strings.Join(labels, " ") + " " + prompt)
}

func renderWebsiteContent(websiteURL, prompt string, results *SearchResponse, now time.Time) string {
	var b strings.Builder

	if len(results.OrganicResults) > 0 {
		b.WriteString("## Search Results Content\n\n")
		for i, r := range results.OrganicResults {
			fmt.Fprintf(&b, "### %d. %s\n", i+1, r.Title)
			fmt.Fprintf(&b, "**URL:** %s\n", r.Link)
			fmt.Fprintf(&b, "**Summary:** %s\n\n", r.Snippet)
		}
	}

	if kg := results.KnowledgeGraph; kg != nil {
		b.WriteString("## Knowledge Graph Information\n\n")
		fmt.Fprintf(&b, "**Title:** %s\n", kg.Title)
		fmt.Fprintf(&b, "**Description:** %s\n\n", kg.Description)
		if len(kg.Attributes) > 0 {
			keys := make([]string, 0, len(kg.Attributes))
			for k := range kg.Attributes {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			b.WriteString("**Key Attributes:**\n")
			for _, k := range keys {
				fmt.Fprintf(&b, "- **%s:** %s\n", k, kg.Attributes[k])
			}
			b.WriteString("\n")
		}
	}

	if ab := results.AnswerBox; ab != nil {
		b.WriteString("## Quick Answer\n\n")
		fmt.Fprintf(&b, "**Question:** %s\n", ab.Title)
		fmt.Fprintf(&b, "**Answer:** %s\n\n", ab.Answer)
	}

	if len(results.RelatedQuestions) > 0 {
		b.WriteString("## Related Questions\n\n")
		for i, qa := range results.RelatedQuestions {
			fmt.Fprintf(&b, "### Q%d: %s\n", i+1, qa.Question)
			fmt.Fprintf(&b, "**A:** %s\n\n", qa.Answer)
		}
	}

	b.WriteString("## Source Information\n\n")
	fmt.Fprintf(&b, "**Original Website:** %s\n", websiteURL)
	fmt.Fprintf(&b, "**Extraction Context:** %s\n", prompt)
	fmt.Fprintf(&b, "**Extracted on:** %s\n\n", now.UTC().Format(time.RFC3339))

	b.WriteString("## Course Integration Notes\n\n")
	fmt.Fprintf(&b, "This content has been extracted from %s and can be integrated into your course. Consider:\n", websiteURL)
	b.WriteString("- Using the key points as learning objectives\n")
	b.WriteString("- Incorporating the knowledge graph information as foundational concepts\n")
	b.WriteString("- Using related questions as quiz material\n")
	b.WriteString("- Adapting the content to match your course structure and learning goals\n")

	return b.String()
}

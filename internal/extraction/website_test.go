package extraction

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"https://www.example.com/about", "example.com", false},
		{"https://docs.Example.org", "docs.example.org", false},
		{"http://shop.example.co.uk:8080/path?q=1", "shop.example.co.uk", false},
		{"not a url", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ExtractDomain(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearchQuery(t *testing.T) {
	assert.Equal(t, "example onboarding policies", SearchQuery("example.com", "onboarding policies"))
	assert.Equal(t, "docs example api basics", SearchQuery("docs.example.com", "api basics"))
	assert.Equal(t, "localhost intro", SearchQuery("localhost", "intro"))
}

func TestRenderWebsiteContent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("all sections", func(t *testing.T) {
		results := &SearchResponse{
			OrganicResults: []OrganicResult{
				{Title: "Returns Policy", Link: "https://example.com/returns", Snippet: "Customers may return items within 30 days."},
			},
			KnowledgeGraph: &KnowledgeGraph{
				Title:       "Example Inc",
				Description: "A retailer.",
				Attributes:  map[string]string{"Founded": "1999", "CEO": "A. Person"},
			},
			AnswerBox:        &AnswerBox{Title: "Return window", Answer: "30 days"},
			RelatedQuestions: []RelatedQuestion{{Question: "Can I return sale items?", Answer: "Yes, within 14 days."}},
		}

		out := renderWebsiteContent("https://example.com", "returns", results, now)

		sections := []string{
			"## Search Results Content",
			"## Knowledge Graph Information",
			"## Quick Answer",
			"## Related Questions",
			"## Source Information",
			"## Course Integration Notes",
		}
		last := -1
		for _, s := range sections {
			idx := strings.Index(out, s)
			require.NotEqual(t, -1, idx, "missing section %s", s)
			assert.Greater(t, idx, last, "section %s out of order", s)
			last = idx
		}

		assert.Contains(t, out, "### 1. Returns Policy\n**URL:** https://example.com/returns\n")
		assert.Contains(t, out, "- **CEO:** A. Person\n- **Founded:** 1999\n")
		assert.Contains(t, out, "### Q1: Can I return sale items?\n**A:** Yes, within 14 days.\n")
		assert.Contains(t, out, "**Extracted on:** 2026-03-01T12:00:00Z\n")
	})

	t.Run("empty results keep source sections", func(t *testing.T) {
		out := renderWebsiteContent("https://example.com", "returns", &SearchResponse{}, now)

		assert.NotContains(t, out, "## Search Results Content")
		assert.NotContains(t, out, "## Quick Answer")
		assert.True(t, strings.HasPrefix(out, "## Source Information"))
		assert.Contains(t, out, "**Extraction Context:** returns\n")
	})
}

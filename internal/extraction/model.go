package extraction

import (
	"time"

	"github.com/google/uuid"
)

// DocumentExtraction matches the document_extractions table schema.
type DocumentExtraction struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	FileName         string    `json:"file_name"`
	FileSize         int64     `json:"file_size"`
	Prompt           string    `json:"prompt"`
	ExtractedContent string    `json:"extracted_content"`
	CreatedAt        time.Time `json:"created_at"`
}

// WebsiteExtraction matches the website_extractions table schema.
type WebsiteExtraction struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	WebsiteURL       string    `json:"website_url"`
	SearchQuery      string    `json:"search_query"`
	Prompt           string    `json:"prompt"`
	ExtractedContent string    `json:"extracted_content"`
	CreatedAt        time.Time `json:"created_at"`
}

type DocumentInput struct {
	FileName string
	Data     []byte
	Prompt   string
}

type WebsiteRequest struct {
	WebsiteURL string `json:"website_url" validate:"required,http_url,max=2048"`
	Prompt     string `json:"prompt" validate:"required,min=3,max=2000"`
}

// Result is returned by both extraction operations.
type Result struct {
	ExtractedContent string `json:"extracted_content"`
	SearchQuery      string `json:"search_query,omitempty"`
	CreditsConsumed  int    `json:"credits_consumed"`
	RemainingCredits int    `json:"remaining_credits"`
	TotalCredits     int    `json:"total_credits"`
}

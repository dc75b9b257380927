package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/onego-ai/onego/internal/audit"
	"github.com/onego-ai/onego/internal/credits"
	inats "github.com/onego-ai/onego/internal/nats"
)

type Service struct {
	repo   Repository
	gate   *credits.Gate
	gemini *GeminiClient
	serp   *SerpClient
	events *inats.Publisher
	now    func() time.Time
}

func NewService(repo Repository, gate *credits.Gate, gemini *GeminiClient, serp *SerpClient, events *inats.Publisher) *Service {
	return &Service{
		repo:   repo,
		gate:   gate,
		gemini: gemini,
		serp:   serp,
		events: events,
		now:    time.Now,
	}
}

// ExtractDocument reads a PDF with the document model. It is metered as
// pdf_processing and restricted to paid plans.
func (s *Service) ExtractDocument(ctx context.Context, userID uuid.UUID, in DocumentInput) (*Result, error) {
	if !s.gemini.Configured() {
		return nil, ErrUnavailable
	}

	res, err := s.gate.Reserve(ctx, userID, credits.ActionPDFProcessing, credits.CostPerAction)
	if err != nil {
		return nil, err
	}

	text, err := s.gemini.ExtractDocument(ctx, in.Data, in.Prompt)
	if err != nil {
		res.Release(ctx)
		return nil, fmt.Errorf("extracting document: %w", err)
	}

	summary, err := res.Commit(ctx, "PDF content extraction and processing", map[string]any{
		"file_name":                in.FileName,
		"file_size":                len(in.Data),
		"prompt_length":            len(in.Prompt),
		"extracted_content_length": len(text),
	})
	if err != nil {
		return nil, err
	}

	record := &DocumentExtraction{
		ID:               uuid.New(),
		UserID:           userID,
		FileName:         in.FileName,
		FileSize:         int64(len(in.Data)),
		Prompt:           in.Prompt,
		ExtractedContent: text,
		CreatedAt:        s.now().UTC(),
	}
	// History rows are best effort once the credit is committed.
	if err := s.repo.InsertDocument(ctx, record); err != nil {
		slog.Error("storing document extraction", "error", err, "user_id", userID)
	}

	s.publishAudit(ctx, userID, audit.EventDocumentExtracted, "document", record.ID.String(),
		fmt.Sprintf("Extracted %d characters from %s", len(text), in.FileName))

	return &Result{
		ExtractedContent: text,
		CreditsConsumed:  res.Cost,
		RemainingCredits: summary.AvailableCredits,
		TotalCredits:     summary.TotalCredits,
	}, nil
}

// ExtractWebsite searches for content about a website and renders the
// results as markdown sections. It is metered as web_scraping.
func (s *Service) ExtractWebsite(ctx context.Context, userID uuid.UUID, req WebsiteRequest) (*Result, error) {
	if !s.serp.Configured() {
		return nil, ErrUnavailable
	}

	domain, err := ExtractDomain(req.WebsiteURL)
	if err != nil {
		return nil, err
	}
	query := SearchQuery(domain, req.Prompt)

	res, err := s.gate.Reserve(ctx, userID, credits.ActionWebScraping, credits.CostPerAction)
	if err != nil {
		return nil, err
	}

	results, err := s.serp.Search(ctx, query)
	if err != nil {
		res.Release(ctx)
		return nil, fmt.Errorf("searching website content: %w", err)
	}
	text := renderWebsiteContent(req.WebsiteURL, req.Prompt, results, s.now())

	summary, err := res.Commit(ctx, "Website content extraction and processing", map[string]any{
		"website_url":              req.WebsiteURL,
		"search_query":             query,
		"extracted_content_length": len(text),
	})
	if err != nil {
		return nil, err
	}

	record := &WebsiteExtraction{
		ID:               uuid.New(),
		UserID:           userID,
		WebsiteURL:       req.WebsiteURL,
		SearchQuery:      query,
		Prompt:           req.Prompt,
		ExtractedContent: text,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.repo.InsertWebsite(ctx, record); err != nil {
		slog.Error("storing website extraction", "error", err, "user_id", userID)
	}

	s.publishAudit(ctx, userID, audit.EventWebsiteExtracted, "website", record.ID.String(),
		fmt.Sprintf("Extracted content for %s", domain))

	return &Result{
		ExtractedContent: text,
		SearchQuery:      query,
		CreditsConsumed:  res.Cost,
		RemainingCredits: summary.AvailableCredits,
		TotalCredits:     summary.TotalCredits,
	}, nil
}

func (s *Service) publishAudit(ctx context.Context, userID uuid.UUID, eventType, resourceType, resourceID, details string) {
	err := s.events.PublishAuditEvent(ctx, inats.AuditEvent{
		ID:           uuid.New(),
		OwnerUserID:  userID,
		EventType:    eventType,
		Severity:     audit.SeverityInfo,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		Timestamp:    s.now().UTC(),
	})
	if err != nil {
		slog.Warn("publishing audit event", "error", err, "event_type", eventType)
	}
}

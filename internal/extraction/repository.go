package extraction

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	InsertDocument(ctx context.Context, e *DocumentExtraction) error
	InsertWebsite(ctx context.Context, e *WebsiteExtraction) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) InsertDocument(ctx context.Context, e *DocumentExtraction) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO document_extractions (id, user_id, file_name, file_size, prompt, extracted_content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.UserID, e.FileName, e.FileSize, e.Prompt, e.ExtractedContent, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting document extraction: %w", err)
	}
	return nil
}

func (r *postgresRepository) InsertWebsite(ctx context.Context, e *WebsiteExtraction) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO website_extractions (id, user_id, website_url, search_query, prompt, extracted_content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.UserID, e.WebsiteURL, e.SearchQuery, e.Prompt, e.ExtractedContent, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting website extraction: %w", err)
	}
	return nil
}

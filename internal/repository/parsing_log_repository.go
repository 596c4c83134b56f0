package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-request-api/internal/models"
)

// ParsingLogRepository appends to the per-upload ingestion audit trail.
// Rows are insert-only; no update or single-row delete exists.
type ParsingLogRepository struct {
	db *sqlx.DB
}

// NewParsingLogRepository constructs a parsing log repository.
func NewParsingLogRepository(db *sqlx.DB) *ParsingLogRepository {
	return &ParsingLogRepository{db: db}
}

// Append writes one stage transition record.
func (r *ParsingLogRepository) Append(ctx context.Context, log *models.ParsingLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO parsing_logs (id, upload_id, stage, status, message, error_details, data_extracted, created_at)
VALUES (:id, :upload_id, :stage, :status, :message, :error_details, :data_extracted, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("append parsing log: %w", err)
	}
	return nil
}

// ListByUpload returns the audit trail for one upload in chronological order.
func (r *ParsingLogRepository) ListByUpload(ctx context.Context, uploadID string) ([]models.ParsingLog, error) {
	const query = `SELECT id, upload_id, stage, status, message, error_details, data_extracted, created_at
FROM parsing_logs WHERE upload_id = $1 ORDER BY created_at ASC`
	var logs []models.ParsingLog
	if err := r.db.SelectContext(ctx, &logs, query, uploadID); err != nil {
		return nil, fmt.Errorf("list parsing logs: %w", err)
	}
	return logs, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-request-api/internal/models"
)

const uploadColumns = `id, file_name, file_path, file_type, file_size, academic_year, uploaded_by, uploaded_at, processing_status, processing_notes, is_active`

// UploadRepository persists calendar uploads.
type UploadRepository struct {
	db *sqlx.DB
}

// NewUploadRepository constructs an upload repository.
func NewUploadRepository(db *sqlx.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

// Create inserts a new upload row in pending state.
func (r *UploadRepository) Create(ctx context.Context, upload *models.CalendarUpload) error {
	if upload.ID == "" {
		upload.ID = uuid.NewString()
	}
	if upload.UploadedAt.IsZero() {
		upload.UploadedAt = time.Now().UTC()
	}
	if upload.ProcessingStatus == "" {
		upload.ProcessingStatus = models.ProcessingPending
	}
	query := `INSERT INTO calendar_uploads (id, file_name, file_path, file_type, file_size, academic_year, uploaded_by, uploaded_at, processing_status, processing_notes, is_active)
VALUES (:id, :file_name, :file_path, :file_type, :file_size, :academic_year, :uploaded_by, :uploaded_at, :processing_status, :processing_notes, :is_active)`
	if _, err := r.db.NamedExecContext(ctx, query, upload); err != nil {
		return fmt.Errorf("create calendar upload: %w", err)
	}
	return nil
}

// GetByID fetches an upload, or nil when it does not exist.
func (r *UploadRepository) GetByID(ctx context.Context, id string) (*models.CalendarUpload, error) {
	query := fmt.Sprintf(`SELECT %s FROM calendar_uploads WHERE id = $1`, uploadColumns)
	var upload models.CalendarUpload
	if err := r.db.GetContext(ctx, &upload, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get calendar upload: %w", err)
	}
	return &upload, nil
}

// List returns upload history, newest first.
func (r *UploadRepository) List(ctx context.Context, filter models.UploadFilter) ([]models.CalendarUpload, int, error) {
	where := "1=1"
	args := []interface{}{}
	if filter.AcademicYear != "" {
		where = "academic_year = $1"
		args = append(args, filter.AcademicYear)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM calendar_uploads WHERE %s ORDER BY uploaded_at DESC LIMIT %d OFFSET %d`,
		uploadColumns, where, size, offset)
	var uploads []models.CalendarUpload
	if err := r.db.SelectContext(ctx, &uploads, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list calendar uploads: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM calendar_uploads WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count calendar uploads: %w", err)
	}
	return uploads, total, nil
}

// UpdateStatus moves an upload through the processing state machine.
func (r *UploadRepository) UpdateStatus(ctx context.Context, id string, status models.ProcessingStatus, notes string) error {
	query := `UPDATE calendar_uploads SET processing_status = $2, processing_notes = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, notes); err != nil {
		return fmt.Errorf("update upload status: %w", err)
	}
	return nil
}

// Activate marks the given upload as the authoritative calendar for its
// academic year: all other uploads for the year are deactivated and this one
// is completed and activated in a single transaction, so the one-active-per-
// year invariant holds even under concurrent uploads.
func (r *UploadRepository) Activate(ctx context.Context, id, academicYear, notes string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin activation tx: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE calendar_uploads SET is_active = FALSE WHERE academic_year = $1 AND id <> $2`,
		academicYear, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("deactivate previous uploads: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE calendar_uploads SET is_active = TRUE, processing_status = $2, processing_notes = $3 WHERE id = $1`,
		id, models.ProcessingCompleted, notes); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("activate upload: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit activation tx: %w", err)
	}
	return nil
}

// FindActiveByYear returns the active completed upload for an academic year,
// or nil when the year has no active calendar.
func (r *UploadRepository) FindActiveByYear(ctx context.Context, academicYear string) (*models.CalendarUpload, error) {
	query := fmt.Sprintf(`SELECT %s FROM calendar_uploads WHERE academic_year = $1 AND is_active AND processing_status = $2`, uploadColumns)
	var upload models.CalendarUpload
	if err := r.db.GetContext(ctx, &upload, query, academicYear, models.ProcessingCompleted); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find active upload: %w", err)
	}
	return &upload, nil
}

// ListFailedOlderThan returns failed uploads whose files are cleanup candidates.
func (r *UploadRepository) ListFailedOlderThan(ctx context.Context, cutoff time.Time) ([]models.CalendarUpload, error) {
	query := fmt.Sprintf(`SELECT %s FROM calendar_uploads WHERE processing_status = $1 AND uploaded_at < $2`, uploadColumns)
	var uploads []models.CalendarUpload
	if err := r.db.SelectContext(ctx, &uploads, query, models.ProcessingFailed, cutoff); err != nil {
		return nil, fmt.Errorf("list failed uploads: %w", err)
	}
	return uploads, nil
}

// Delete removes an upload; events and parsing logs cascade at the schema level.
func (r *UploadRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM calendar_uploads WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete calendar upload: %w", err)
	}
	return nil
}

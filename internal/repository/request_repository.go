package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-request-api/internal/models"
)

// RequestRepository persists student requests.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs a request repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts a new request.
func (r *RequestRepository) Create(ctx context.Context, request *models.StudentRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	if request.Status == "" {
		request.Status = models.RequestOpen
	}
	query := `INSERT INTO student_requests (id, student_id, department, subject, body, status, created_at)
VALUES (:id, :student_id, :department, :subject, :body, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create student request: %w", err)
	}
	return nil
}

// ListByStudent returns a student's requests, newest first.
func (r *RequestRepository) ListByStudent(ctx context.Context, studentID string) ([]models.StudentRequest, error) {
	const query = `SELECT id, student_id, department, subject, body, status, created_at
FROM student_requests WHERE student_id = $1 ORDER BY created_at DESC`
	var requests []models.StudentRequest
	if err := r.db.SelectContext(ctx, &requests, query, studentID); err != nil {
		return nil, fmt.Errorf("list student requests: %w", err)
	}
	return requests, nil
}

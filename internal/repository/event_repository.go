package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/campus-request-api/internal/models"
)

const eventColumns = `e.id, e.upload_id, e.event_type, e.event_name, e.start_date, e.end_date, e.is_recurring, e.recurring_type, e.affects_request_creation, e.description, e.priority_level, e.source_line, e.extraction_method, e.created_at`

// EventRepository persists extracted calendar events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a calendar event.
func (r *EventRepository) Create(ctx context.Context, event *models.CalendarEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO calendar_events (id, upload_id, event_type, event_name, start_date, end_date, is_recurring, recurring_type, affects_request_creation, description, priority_level, source_line, extraction_method, created_at)
VALUES (:id, :upload_id, :event_type, :event_name, :start_date, :end_date, :is_recurring, :recurring_type, :affects_request_creation, :description, :priority_level, :source_line, :extraction_method, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create calendar event: %w", err)
	}
	return nil
}

// List returns events matching the filter. Date bounds use overlap semantics:
// an event matches when end_date >= From and start_date <= To.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.CalendarEvent, error) {
	base := `FROM calendar_events e JOIN calendar_uploads u ON u.id = e.upload_id`
	where := []string{"1=1"}
	args := []interface{}{}

	if filter.ActiveOnly {
		where = append(where, fmt.Sprintf("u.is_active AND u.processing_status = $%d", len(args)+1))
		args = append(args, models.ProcessingCompleted)
	}
	if filter.AcademicYear != "" {
		where = append(where, fmt.Sprintf("u.academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.UploadID != "" {
		where = append(where, fmt.Sprintf("e.upload_id = $%d", len(args)+1))
		args = append(args, filter.UploadID)
	}
	if filter.From != nil {
		where = append(where, fmt.Sprintf("e.end_date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf("e.start_date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	if len(filter.EventTypes) > 0 {
		types := make([]string, len(filter.EventTypes))
		for i, t := range filter.EventTypes {
			types[i] = string(t)
		}
		where = append(where, fmt.Sprintf("e.event_type = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(types))
	}
	if filter.AffectsOnly {
		where = append(where, "e.affects_request_creation")
	}

	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY e.start_date ASC, e.end_date ASC`,
		eventColumns, base, strings.Join(where, " AND "))
	if filter.Limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, filter.Limit)
	}

	var events []models.CalendarEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}
	return events, nil
}

// ListBlocking returns authoritative blocking events whose inclusive range
// contains the given date. Authoritative means the owning upload is active
// and completed.
func (r *EventRepository) ListBlocking(ctx context.Context, date time.Time) ([]models.CalendarEvent, error) {
	query := fmt.Sprintf(`SELECT %s FROM calendar_events e
JOIN calendar_uploads u ON u.id = e.upload_id
WHERE u.is_active AND u.processing_status = $1
  AND e.affects_request_creation
  AND e.start_date <= $2 AND e.end_date >= $2
ORDER BY e.start_date ASC`, eventColumns)
	var events []models.CalendarEvent
	if err := r.db.SelectContext(ctx, &events, query, models.ProcessingCompleted, date); err != nil {
		return nil, fmt.Errorf("list blocking events: %w", err)
	}
	return events, nil
}

// ListBlockingInRange returns authoritative blocking events overlapping
// [from, to], used by the oracle's buffer window and next-available search.
func (r *EventRepository) ListBlockingInRange(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error) {
	query := fmt.Sprintf(`SELECT %s FROM calendar_events e
JOIN calendar_uploads u ON u.id = e.upload_id
WHERE u.is_active AND u.processing_status = $1
  AND e.affects_request_creation
  AND e.end_date >= $2 AND e.start_date <= $3
ORDER BY e.start_date ASC`, eventColumns)
	var events []models.CalendarEvent
	if err := r.db.SelectContext(ctx, &events, query, models.ProcessingCompleted, from, to); err != nil {
		return nil, fmt.Errorf("list blocking events in range: %w", err)
	}
	return events, nil
}

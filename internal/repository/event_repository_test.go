package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-request-api/internal/models"
)

func eventRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "upload_id", "event_type", "event_name", "start_date", "end_date",
		"is_recurring", "recurring_type", "affects_request_creation", "description",
		"priority_level", "source_line", "extraction_method", "created_at",
	})
}

func sampleEventRow(rows *sqlmock.Rows, id string, eventType string, start, end time.Time, blocking bool) *sqlmock.Rows {
	return rows.AddRow(
		id, "upload-1", eventType, "Cumhuriyet Bayramı", start, end,
		true, "national_holiday", blocking, "",
		"high", "29 Ekim 2025 Cumhuriyet Bayramı", "single_date", time.Now().UTC(),
	)
}

func TestEventRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	from := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)
	day := time.Date(2025, time.October, 29, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM calendar_events e JOIN calendar_uploads u").
		WithArgs(models.ProcessingCompleted, "2025-2026", from, to, sqlmock.AnyArg()).
		WillReturnRows(sampleEventRow(eventRows(), "event-1", "holiday", day, day, true))

	events, err := repo.List(context.Background(), models.EventFilter{
		ActiveOnly:   true,
		AcademicYear: "2025-2026",
		From:         &from,
		To:           &to,
		EventTypes:   []models.EventType{models.EventHoliday},
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventHoliday, events[0].EventType)
	assert.True(t, events[0].AffectsRequestCreation)
}

func TestEventRepositoryListBlocking(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	day := time.Date(2025, time.October, 29, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM calendar_events e").
		WithArgs(models.ProcessingCompleted, day).
		WillReturnRows(sampleEventRow(eventRows(), "event-1", "holiday", day, day, true))

	events, err := repo.ListBlocking(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "event-1", events[0].ID)
}

func TestEventRepositoryListBlockingInRange(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	from := time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM calendar_events e").
		WithArgs(models.ProcessingCompleted, from, to).
		WillReturnRows(sampleEventRow(eventRows(), "event-2", "holiday",
			time.Date(2026, time.January, 26, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.February, 6, 0, 0, 0, 0, time.UTC), true))

	events, err := repo.ListBlockingInRange(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestEventRepositoryCreateFillsDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec("INSERT INTO calendar_events").
		WillReturnResult(sqlmock.NewResult(1, 1))

	day := time.Date(2025, time.October, 29, 0, 0, 0, 0, time.UTC)
	event := &models.CalendarEvent{
		UploadID:  "upload-1",
		EventType: models.EventHoliday,
		EventName: "Cumhuriyet Bayramı",
		StartDate: day,
		EndDate:   day,
	}
	require.NoError(t, repo.Create(context.Background(), event))
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
}

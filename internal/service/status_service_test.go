package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-request-api/internal/models"
)

type mockEventLister struct {
	events  []models.CalendarEvent
	filters []models.EventFilter
	err     error
}

func (m *mockEventLister) List(ctx context.Context, filter models.EventFilter) ([]models.CalendarEvent, error) {
	m.filters = append(m.filters, filter)
	if m.err != nil {
		return nil, m.err
	}
	return m.events, nil
}

type mockActiveFinder struct {
	upload *models.CalendarUpload
	err    error
}

func (m *mockActiveFinder) FindActiveByYear(ctx context.Context, academicYear string) (*models.CalendarUpload, error) {
	return m.upload, m.err
}

type mockHealthChecker struct {
	missing []string
}

func (m *mockHealthChecker) CheckTables(ctx context.Context) []string {
	return m.missing
}

func newStatusService(settings *mockSettingsReader, uploads *mockActiveFinder, events *mockEventLister, oracle *mockOracle, health *mockHealthChecker) *StatusService {
	return NewStatusService(settings, uploads, events, oracle, health, zap.NewNop())
}

func TestStatusAggregates(t *testing.T) {
	settings := enabledSettings(24)
	uploads := &mockActiveFinder{upload: &models.CalendarUpload{
		ID: "upload-1", FileName: "takvim.docx", AcademicYear: "2025-2026", IsActive: true,
	}}
	events := &mockEventLister{events: []models.CalendarEvent{
		blockingEvent("Cumhuriyet Bayramı", day(2025, 10, 29), day(2025, 10, 29)),
	}}
	oracle := &mockOracle{
		check: &DateCheck{Date: "2025-10-27", CanCreateRequests: true},
		next:  &NextAvailableResult{Found: true, NextDate: "2025-10-28"},
	}

	status := newStatusService(settings, uploads, events, oracle, &mockHealthChecker{}).Status(context.Background())

	assert.Equal(t, 24, status.Settings.BufferHours)
	require.NotNil(t, status.ActiveCalendar)
	assert.Equal(t, "upload-1", status.ActiveCalendar.UploadID)
	assert.Equal(t, 1, status.ActiveCalendar.EventCount)
	assert.True(t, status.Today.CanCreateRequests)
	assert.Equal(t, "2025-10-28", status.NextAvailable.NextDate)
	assert.True(t, status.SystemHealth.DateCheckReachable)
	assert.True(t, status.SystemHealth.NextAvailableReachable)
	require.Len(t, status.UpcomingEvents, 1)
}

func TestStatusWithoutActiveCalendar(t *testing.T) {
	settings := &mockSettingsReader{settings: models.CalendarSettings{Enabled: true}}
	oracle := &mockOracle{check: &DateCheck{CanCreateRequests: true}}

	status := newStatusService(settings, &mockActiveFinder{}, &mockEventLister{}, oracle, &mockHealthChecker{}).Status(context.Background())

	assert.Nil(t, status.ActiveCalendar)

	// No rows must serialize as an empty list, never null.
	require.NotNil(t, status.UpcomingEvents)
	assert.Empty(t, status.UpcomingEvents)
}

func TestStatusDegradedDateCheck(t *testing.T) {
	oracle := &mockOracle{check: &DateCheck{Diagnostics: &CheckDiagnostics{FunctionError: true}}}

	status := newStatusService(enabledSettings(0), &mockActiveFinder{}, &mockEventLister{}, oracle, &mockHealthChecker{}).Status(context.Background())

	assert.False(t, status.SystemHealth.DateCheckReachable)
}

func TestStatusSettingsFailureDegrades(t *testing.T) {
	settings := &mockSettingsReader{err: errors.New("db down")}
	oracle := &mockOracle{check: &DateCheck{CanCreateRequests: true}}

	status := newStatusService(settings, &mockActiveFinder{}, &mockEventLister{}, oracle, &mockHealthChecker{}).Status(context.Background())

	assert.True(t, status.Settings.Enabled)
	assert.Nil(t, status.ActiveCalendar)
}

func TestValidateHealthy(t *testing.T) {
	oracle := &mockOracle{check: &DateCheck{CanCreateRequests: true}}

	report := newStatusService(enabledSettings(0), &mockActiveFinder{}, &mockEventLister{}, oracle, &mockHealthChecker{}).Validate(context.Background())

	assert.Equal(t, "healthy", report.Status)
	assert.Empty(t, report.MissingTables)
	assert.Len(t, report.Checks, 3)
}

func TestValidatePartialOnMissingTable(t *testing.T) {
	oracle := &mockOracle{check: &DateCheck{CanCreateRequests: true}}
	health := &mockHealthChecker{missing: []string{"parsing_logs"}}

	report := newStatusService(enabledSettings(0), &mockActiveFinder{}, &mockEventLister{}, oracle, health).Validate(context.Background())

	assert.Equal(t, "partial", report.Status)
	assert.Equal(t, []string{"parsing_logs"}, report.MissingTables)
	require.NotEmpty(t, report.Hints)
	assert.Contains(t, report.Hints[0], "parsing_logs")
}

func TestValidateUnhealthy(t *testing.T) {
	oracle := &mockOracle{check: &DateCheck{Diagnostics: &CheckDiagnostics{FunctionError: true}}}
	health := &mockHealthChecker{missing: []string{"calendar_events", "calendar_settings"}}

	report := newStatusService(enabledSettings(0), &mockActiveFinder{}, &mockEventLister{}, oracle, health).Validate(context.Background())

	assert.Equal(t, "unhealthy", report.Status)
	assert.Len(t, report.MissingTables, 2)
}

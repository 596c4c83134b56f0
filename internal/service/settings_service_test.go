package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-request-api/internal/models"
)

type mockSettingsStore struct {
	rows     []models.CalendarSetting
	upserted []models.CalendarSetting
	listErr  error
}

func (m *mockSettingsStore) ListByKeys(ctx context.Context, keys []string) ([]models.CalendarSetting, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.rows, nil
}

func (m *mockSettingsStore) Upsert(ctx context.Context, setting *models.CalendarSetting) error {
	m.upserted = append(m.upserted, *setting)
	m.rows = append(m.rows, *setting)
	return nil
}

func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }

func TestSettingsGetAppliesDefaults(t *testing.T) {
	svc := NewSettingsService(&mockSettingsStore{}, nil, zap.NewNop())

	settings, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, settings.Enabled)
	assert.Equal(t, 0, settings.BufferHours)
	assert.NotEmpty(t, settings.CurrentAcademicYear)
}

func TestSettingsGetOverlaysStoredValues(t *testing.T) {
	store := &mockSettingsStore{rows: []models.CalendarSetting{
		{Key: models.SettingCalendarEnabled, Value: "false"},
		{Key: models.SettingHolidayBufferHours, Value: "48"},
		{Key: models.SettingCurrentAcademicYear, Value: "2025-2026"},
	}}
	svc := NewSettingsService(store, nil, zap.NewNop())

	settings, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, settings.Enabled)
	assert.Equal(t, 48, settings.BufferHours)
	assert.Equal(t, "2025-2026", settings.CurrentAcademicYear)
}

func TestSettingsUpdateValidatesBufferHours(t *testing.T) {
	svc := NewSettingsService(&mockSettingsStore{}, nil, zap.NewNop())

	_, err := svc.Update(context.Background(), UpdateSettingsRequest{BufferHours: intPtr(200)}, "admin-1")
	require.Error(t, err)

	_, err = svc.Update(context.Background(), UpdateSettingsRequest{BufferHours: intPtr(-1)}, "admin-1")
	require.Error(t, err)
}

func TestSettingsUpdateValidatesAcademicYear(t *testing.T) {
	svc := NewSettingsService(&mockSettingsStore{}, nil, zap.NewNop())

	_, err := svc.Update(context.Background(), UpdateSettingsRequest{CurrentAcademicYear: strPtr("2025-2027")}, "admin-1")
	require.Error(t, err)
}

func TestSettingsUpdateIsPartial(t *testing.T) {
	store := &mockSettingsStore{}
	svc := NewSettingsService(store, nil, zap.NewNop())

	settings, err := svc.Update(context.Background(), UpdateSettingsRequest{BufferHours: intPtr(24)}, "admin-1")
	require.NoError(t, err)

	require.Len(t, store.upserted, 1)
	assert.Equal(t, models.SettingHolidayBufferHours, store.upserted[0].Key)
	assert.Equal(t, "24", store.upserted[0].Value)
	require.NotNil(t, store.upserted[0].UpdatedBy)
	assert.Equal(t, "admin-1", *store.upserted[0].UpdatedBy)

	assert.Equal(t, 24, settings.BufferHours)
	assert.True(t, settings.Enabled)
}

func TestSettingsUpdateDisablesCalendar(t *testing.T) {
	store := &mockSettingsStore{}
	svc := NewSettingsService(store, nil, zap.NewNop())

	settings, err := svc.Update(context.Background(), UpdateSettingsRequest{Enabled: boolPtr(false)}, "admin-1")
	require.NoError(t, err)

	require.Len(t, store.upserted, 1)
	assert.Equal(t, models.SettingCalendarEnabled, store.upserted[0].Key)
	assert.Equal(t, "false", store.upserted[0].Value)
	assert.False(t, settings.Enabled)
}

func TestSettingsUpdateInvalidatesDateCheckCache(t *testing.T) {
	cache := &mockCacheInvalidator{}
	svc := NewSettingsService(&mockSettingsStore{}, cache, zap.NewNop())

	_, err := svc.Update(context.Background(), UpdateSettingsRequest{Enabled: boolPtr(false)}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, []string{checkCacheKeyPattern}, cache.patterns)

	_, err = svc.Update(context.Background(), UpdateSettingsRequest{BufferHours: intPtr(500)}, "admin-1")
	require.Error(t, err)
	assert.Len(t, cache.patterns, 1)
}

func TestSetCurrentAcademicYear(t *testing.T) {
	store := &mockSettingsStore{}
	svc := NewSettingsService(store, nil, zap.NewNop())

	require.NoError(t, svc.SetCurrentAcademicYear(context.Background(), "2025-2026", "admin-1"))
	require.Len(t, store.upserted, 1)
	assert.Equal(t, models.SettingCurrentAcademicYear, store.upserted[0].Key)
	assert.Equal(t, "2025-2026", store.upserted[0].Value)
}

func TestDefaultAcademicYearBoundary(t *testing.T) {
	spring := defaultSettings(time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2025-2026", spring.CurrentAcademicYear)

	autumn := defaultSettings(time.Date(2025, time.September, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2025-2026", autumn.CurrentAcademicYear)
}

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

func strPtr(s string) *string { return &s }

func TestSettingsRepositoryListByKeys(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	rows := sqlmock.NewRows([]string{"key", "value", "updated_by", "updated_at"}).
		AddRow(models.SettingCalendarEnabled, "true", "admin-1", time.Now()).
		AddRow(models.SettingHolidayBufferHours, "24", "admin-1", time.Now())
	mock.ExpectQuery("SELECT key, value").
		WithArgs(models.SettingCalendarEnabled, models.SettingHolidayBufferHours).
		WillReturnRows(rows)

	settings, err := repo.ListByKeys(context.Background(), []string{
		models.SettingCalendarEnabled,
		models.SettingHolidayBufferHours,
	})
	require.NoError(t, err)
	require.Len(t, settings, 2)
	assert.Equal(t, "true", settings[0].Value)
}

func TestSettingsRepositoryListByKeysEmpty(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	settings, err := repo.ListByKeys(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, settings)
}

func TestSettingsRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectExec("INSERT INTO calendar_settings").
		WillReturnResult(sqlmock.NewResult(1, 1))

	setting := &models.CalendarSetting{
		Key:       models.SettingHolidayBufferHours,
		Value:     "48",
		UpdatedBy: strPtr("admin-1"),
	}
	require.NoError(t, repo.Upsert(context.Background(), setting))
	assert.False(t, setting.UpdatedAt.IsZero())
}

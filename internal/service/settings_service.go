package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-request-api/internal/extract"
	"github.com/noah-isme/campus-request-api/internal/models"
	appErrors "github.com/noah-isme/campus-request-api/pkg/errors"
)

type settingsStore interface {
	ListByKeys(ctx context.Context, keys []string) ([]models.CalendarSetting, error)
	Upsert(ctx context.Context, setting *models.CalendarSetting) error
}

// SettingsService owns the calendar settings snapshot. All mutation flows
// through its validated partial update; readers get an explicit snapshot to
// pass into the oracle and pipeline rather than ambient global state.
type SettingsService struct {
	repo   settingsStore
	cache  checkCacheInvalidator
	logger *zap.Logger
}

// NewSettingsService constructs the service.
func NewSettingsService(repo settingsStore, cache checkCacheInvalidator, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, cache: cache, logger: logger}
}

// UpdateSettingsRequest carries a partial update; nil fields keep prior values.
type UpdateSettingsRequest struct {
	Enabled             *bool   `json:"academic_calendar_enabled"`
	BufferHours         *int    `json:"holiday_buffer_hours"`
	CurrentAcademicYear *string `json:"current_academic_year"`
}

// Get returns the settings snapshot with defaults applied for missing keys.
func (s *SettingsService) Get(ctx context.Context) (models.CalendarSettings, error) {
	settings := defaultSettings(time.Now().UTC())

	rows, err := s.repo.ListByKeys(ctx, []string{
		models.SettingCalendarEnabled,
		models.SettingHolidayBufferHours,
		models.SettingCurrentAcademicYear,
	})
	if err != nil {
		return settings, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load calendar settings")
	}

	for _, row := range rows {
		switch row.Key {
		case models.SettingCalendarEnabled:
			if v, err := strconv.ParseBool(row.Value); err == nil {
				settings.Enabled = v
			}
		case models.SettingHolidayBufferHours:
			if v, err := strconv.Atoi(row.Value); err == nil {
				settings.BufferHours = v
			}
		case models.SettingCurrentAcademicYear:
			if row.Value != "" {
				settings.CurrentAcademicYear = row.Value
			}
		}
	}

	return settings, nil
}

// Update applies a validated partial update and returns the full snapshot.
// Each changed key records the acting admin and a timestamp; writes are
// last-writer-wins.
func (s *SettingsService) Update(ctx context.Context, req UpdateSettingsRequest, updatedBy string) (models.CalendarSettings, error) {
	if req.BufferHours != nil && (*req.BufferHours < 0 || *req.BufferHours > 168) {
		return models.CalendarSettings{}, appErrors.Clone(appErrors.ErrValidation, "holiday_buffer_hours must be between 0 and 168")
	}
	if req.CurrentAcademicYear != nil {
		if _, _, err := extract.ParseAcademicYear(*req.CurrentAcademicYear); err != nil {
			return models.CalendarSettings{}, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
	}

	type change struct {
		key   string
		value string
	}
	var changes []change
	if req.Enabled != nil {
		changes = append(changes, change{models.SettingCalendarEnabled, strconv.FormatBool(*req.Enabled)})
	}
	if req.BufferHours != nil {
		changes = append(changes, change{models.SettingHolidayBufferHours, strconv.Itoa(*req.BufferHours)})
	}
	if req.CurrentAcademicYear != nil {
		changes = append(changes, change{models.SettingCurrentAcademicYear, *req.CurrentAcademicYear})
	}

	for _, c := range changes {
		setting := &models.CalendarSetting{Key: c.key, Value: c.value, UpdatedBy: &updatedBy}
		if err := s.repo.Upsert(ctx, setting); err != nil {
			return models.CalendarSettings{}, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status,
				fmt.Sprintf("failed to update setting %s", c.key))
		}
		s.logger.Info("calendar setting updated", zap.String("key", c.key), zap.String("updated_by", updatedBy))
	}

	// Cached date checks embed the settings in force at evaluation time.
	if len(changes) > 0 && s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, checkCacheKeyPattern); err != nil {
			s.logger.Warn("failed to invalidate date check cache", zap.Error(err))
		}
	}

	return s.Get(ctx)
}

// SetCurrentAcademicYear records the academic year of the calendar that was
// just activated. The ingestion pipeline calls it best-effort.
func (s *SettingsService) SetCurrentAcademicYear(ctx context.Context, academicYear, updatedBy string) error {
	setting := &models.CalendarSetting{
		Key:       models.SettingCurrentAcademicYear,
		Value:     academicYear,
		UpdatedBy: &updatedBy,
	}
	return s.repo.Upsert(ctx, setting)
}

// defaultSettings supplies values for keys missing from the store. The
// academic year boundary is taken as July 1st.
func defaultSettings(now time.Time) models.CalendarSettings {
	year := now.Year()
	academicYear := fmt.Sprintf("%d-%d", year, year+1)
	if now.Month() < time.July {
		academicYear = fmt.Sprintf("%d-%d", year-1, year)
	}
	return models.CalendarSettings{
		Enabled:             true,
		BufferHours:         0,
		CurrentAcademicYear: academicYear,
	}
}

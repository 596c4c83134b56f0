package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-request-api/internal/models"
	appErrors "github.com/noah-isme/campus-request-api/pkg/errors"
)

const dayLayout = "2006-01-02"

type blockingEventStore interface {
	ListBlocking(ctx context.Context, date time.Time) ([]models.CalendarEvent, error)
	ListBlockingInRange(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error)
}

type settingsReader interface {
	Get(ctx context.Context) (models.CalendarSettings, error)
}

type dateCheckCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CheckDiagnostics carries soft-failure flags. The oracle never fails a
// caller outright; degraded lookups are reported here instead.
type CheckDiagnostics struct {
	FunctionError bool `json:"function_error,omitempty"`
	FormatError   bool `json:"format_error,omitempty"`
	NoData        bool `json:"no_data,omitempty"`
}

// DateCheck is the oracle's answer for a single date.
type DateCheck struct {
	Date              string                 `json:"date"`
	IsWeekend         bool                   `json:"is_weekend"`
	IsHoliday         bool                   `json:"is_holiday"`
	BlockingEvents    []models.CalendarEvent `json:"blocking_events"`
	BufferApplied     bool                   `json:"buffer_applied"`
	CanCreateRequests bool                   `json:"can_create_requests"`
	CalendarEnabled   bool                   `json:"calendar_enabled"`
	Diagnostics       *CheckDiagnostics      `json:"diagnostics,omitempty"`
}

// NextAvailableResult reports the first open date after a starting point, or
// that none exists within the search horizon.
type NextAvailableResult struct {
	From         string `json:"from"`
	NextDate     string `json:"next_available_date,omitempty"`
	Found        bool   `json:"found"`
	DaysSearched int    `json:"days_searched"`
}

// AvailabilityService answers whether a date is open for request creation.
// The weekend rule always applies; holiday checks consult the active
// calendar's blocking events and are bypassed when the calendar is disabled.
// Lookup failures degrade to a non-blocking answer with a diagnostic flag
// rather than an error.
type AvailabilityService struct {
	events        blockingEventStore
	settings      settingsReader
	cache         dateCheckCache
	metrics       *MetricsService
	logger        *zap.Logger
	cacheTTL      time.Duration
	searchHorizon int
}

// NewAvailabilityService constructs the oracle. searchHorizon bounds the
// next-available scan in days.
func NewAvailabilityService(events blockingEventStore, settings settingsReader, cache dateCheckCache, metrics *MetricsService, cacheTTL time.Duration, searchHorizon int, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if searchHorizon <= 0 {
		searchHorizon = 365
	}
	return &AvailabilityService{
		events:        events,
		settings:      settings,
		cache:         cache,
		metrics:       metrics,
		logger:        logger,
		cacheTTL:      cacheTTL,
		searchHorizon: searchHorizon,
	}
}

// CheckDate evaluates one calendar date. It never returns an error from
// lookup failures; those are reported through Diagnostics.
func (s *AvailabilityService) CheckDate(ctx context.Context, date time.Time) *DateCheck {
	date = truncateToDay(date)
	key := checkCacheKey(date)
	s.metrics.RecordDateCheck()

	if s.cache != nil {
		var cached DateCheck
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return &cached
		} else if err != appErrors.ErrCacheMiss {
			s.logger.Warn("date check cache read failed", zap.String("key", key), zap.Error(err))
		}
		s.metrics.RecordCacheOperation(false)
	}

	settings, diag := s.loadSettings(ctx)
	check := s.evaluate(ctx, date, settings, diag)

	if s.cache != nil && check.Diagnostics == nil {
		if err := s.cache.Set(ctx, key, check, s.cacheTTL); err != nil {
			s.logger.Warn("date check cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return check
}

// NextAvailable scans day by day from the day after `from` for the first
// non-weekend date free of blocking events and buffer windows, bounded by
// the configured horizon.
func (s *AvailabilityService) NextAvailable(ctx context.Context, from time.Time) *NextAvailableResult {
	from = truncateToDay(from)
	result := &NextAvailableResult{From: from.Format(dayLayout)}

	settings, diag := s.loadSettings(ctx)
	bufferDays := bufferWindowDays(settings.BufferHours)

	var blocking []models.CalendarEvent
	if settings.Enabled {
		first := from.AddDate(0, 0, 1)
		last := from.AddDate(0, 0, s.searchHorizon+bufferDays)
		events, err := s.events.ListBlockingInRange(ctx, first, last)
		if err != nil {
			s.logger.Warn("blocking event range lookup failed", zap.Error(err))
			diag = markFunctionError(diag)
		} else {
			blocking = events
		}
	}

	for i := 1; i <= s.searchHorizon; i++ {
		candidate := from.AddDate(0, 0, i)
		result.DaysSearched = i
		if isWeekend(candidate) {
			continue
		}
		if settings.Enabled && diag == nil {
			if len(eventsContaining(blocking, candidate)) > 0 {
				continue
			}
			if bufferDays > 0 && len(eventsStartingWithin(blocking, candidate, bufferDays)) > 0 {
				continue
			}
		}
		result.Found = true
		result.NextDate = candidate.Format(dayLayout)
		return result
	}
	return result
}

func (s *AvailabilityService) evaluate(ctx context.Context, date time.Time, settings models.CalendarSettings, diag *CheckDiagnostics) *DateCheck {
	check := &DateCheck{
		Date:            date.Format(dayLayout),
		IsWeekend:       isWeekend(date),
		BlockingEvents:  []models.CalendarEvent{},
		CalendarEnabled: settings.Enabled,
	}

	if settings.Enabled {
		blocking, err := s.events.ListBlocking(ctx, date)
		if err != nil {
			s.logger.Warn("blocking event lookup failed", zap.String("date", check.Date), zap.Error(err))
			diag = markFunctionError(diag)
		} else {
			check.BlockingEvents = blocking
			check.IsHoliday = len(blocking) > 0
		}

		if !check.IsHoliday && diag == nil {
			bufferDays := bufferWindowDays(settings.BufferHours)
			if bufferDays > 0 {
				upcoming, err := s.events.ListBlockingInRange(ctx, date, date.AddDate(0, 0, bufferDays))
				if err != nil {
					s.logger.Warn("buffer window lookup failed", zap.String("date", check.Date), zap.Error(err))
					diag = markFunctionError(diag)
				} else if starting := eventsStartingWithin(upcoming, date, bufferDays); len(starting) > 0 {
					check.BufferApplied = true
					check.IsHoliday = true
					check.BlockingEvents = starting
				}
			}
		}
	}

	check.CanCreateRequests = !check.IsWeekend && !check.IsHoliday
	check.Diagnostics = diag
	return check
}

func (s *AvailabilityService) loadSettings(ctx context.Context) (models.CalendarSettings, *CheckDiagnostics) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Warn("settings lookup failed, using defaults", zap.Error(err))
		return models.CalendarSettings{Enabled: true}, &CheckDiagnostics{FunctionError: true}
	}
	return settings, nil
}

func markFunctionError(diag *CheckDiagnostics) *CheckDiagnostics {
	if diag == nil {
		diag = &CheckDiagnostics{}
	}
	diag.FunctionError = true
	return diag
}

// bufferWindowDays converts the configured buffer hours into whole days,
// rounding up. The buffer is a leading window before a blocking event's
// start date.
func bufferWindowDays(hours int) int {
	if hours <= 0 {
		return 0
	}
	return (hours + 23) / 24
}

func isWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func eventsContaining(events []models.CalendarEvent, date time.Time) []models.CalendarEvent {
	var out []models.CalendarEvent
	for _, e := range events {
		if !date.Before(truncateToDay(e.StartDate)) && !date.After(truncateToDay(e.EndDate)) {
			out = append(out, e)
		}
	}
	return out
}

// eventsStartingWithin returns events whose start date falls after `date`
// but no more than `days` days ahead. The buffer never extends past an
// event's own range.
func eventsStartingWithin(events []models.CalendarEvent, date time.Time, days int) []models.CalendarEvent {
	var out []models.CalendarEvent
	limit := date.AddDate(0, 0, days)
	for _, e := range events {
		start := truncateToDay(e.StartDate)
		if start.After(date) && !start.After(limit) {
			out = append(out, e)
		}
	}
	return out
}

func checkCacheKey(date time.Time) string {
	return fmt.Sprintf("calendar:check:%s", date.Format(dayLayout))
}

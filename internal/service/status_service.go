package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-request-api/internal/models"
)

type tableHealthChecker interface {
	CheckTables(ctx context.Context) []string
}

// ActiveCalendarSummary describes the upload currently serving a given
// academic year.
type ActiveCalendarSummary struct {
	UploadID     string    `json:"upload_id"`
	FileName     string    `json:"file_name"`
	AcademicYear string    `json:"academic_year"`
	UploadedAt   time.Time `json:"uploaded_at"`
	EventCount   int       `json:"event_count"`
}

// SystemHealth reports whether the dependent lookup routines answered.
type SystemHealth struct {
	DateCheckReachable     bool `json:"date_check_reachable"`
	NextAvailableReachable bool `json:"next_available_reachable"`
}

// CalendarStatus is the aggregate answer for the public status endpoint.
type CalendarStatus struct {
	Settings       models.CalendarSettings `json:"settings"`
	ActiveCalendar *ActiveCalendarSummary  `json:"active_calendar"`
	Today          *DateCheck              `json:"today"`
	NextAvailable  *NextAvailableResult    `json:"next_available"`
	UpcomingEvents []models.CalendarEvent  `json:"upcoming_events"`
	SystemHealth   SystemHealth            `json:"system_health"`
}

// ValidationReport is the system validation verdict with remediation hints.
type ValidationReport struct {
	Status        string   `json:"status"`
	MissingTables []string `json:"missing_tables,omitempty"`
	Checks        []string `json:"checks"`
	Hints         []string `json:"hints,omitempty"`
}

// StatusService aggregates settings, the active calendar, today's
// availability and upcoming events into one status answer, and runs the
// deeper system validation probe.
type StatusService struct {
	settings settingsReader
	uploads  activeUploadFinder
	events   eventLister
	oracle   availabilityOracle
	health   tableHealthChecker
	logger   *zap.Logger
	now      func() time.Time
}

// NewStatusService constructs the status service.
func NewStatusService(settings settingsReader, uploads activeUploadFinder, events eventLister, oracle availabilityOracle, health tableHealthChecker, logger *zap.Logger) *StatusService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusService{
		settings: settings,
		uploads:  uploads,
		events:   events,
		oracle:   oracle,
		health:   health,
		logger:   logger,
		now:      time.Now,
	}
}

// Status builds the aggregate status answer. Individual lookup failures
// degrade the corresponding section rather than failing the whole call.
func (s *StatusService) Status(ctx context.Context) *CalendarStatus {
	today := s.now().UTC()
	status := &CalendarStatus{
		UpcomingEvents: []models.CalendarEvent{},
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Warn("settings lookup failed for status", zap.Error(err))
		settings = models.CalendarSettings{Enabled: true}
	}
	status.Settings = settings

	if settings.CurrentAcademicYear != "" {
		status.ActiveCalendar = s.activeSummary(ctx, settings.CurrentAcademicYear)
	}

	status.Today = s.oracle.CheckDate(ctx, today)
	status.SystemHealth.DateCheckReachable = status.Today.Diagnostics == nil

	status.NextAvailable = s.oracle.NextAvailable(ctx, today)
	status.SystemHealth.NextAvailableReachable = true

	from := truncateToDay(today)
	upcoming, err := s.events.List(ctx, models.EventFilter{
		From:       &from,
		To:         timePtr(from.AddDate(0, 0, 30)),
		ActiveOnly: true,
		Limit:      10,
	})
	if err != nil {
		s.logger.Warn("upcoming event lookup failed for status", zap.Error(err))
	} else if upcoming != nil {
		status.UpcomingEvents = upcoming
	}
	return status
}

// Validate probes the persisted tables and the two date-computation
// routines, classifying the system as healthy, partial or unhealthy.
func (s *StatusService) Validate(ctx context.Context) *ValidationReport {
	report := &ValidationReport{}

	missing := s.health.CheckTables(ctx)
	if len(missing) == 0 {
		report.Checks = append(report.Checks, "database tables reachable")
	} else {
		report.MissingTables = missing
		for _, table := range missing {
			report.Hints = append(report.Hints, fmt.Sprintf("table %q is unreachable; run migrations", table))
		}
	}

	check := s.oracle.CheckDate(ctx, s.now().UTC())
	dateCheckOK := check.Diagnostics == nil
	if dateCheckOK {
		report.Checks = append(report.Checks, "date check routine reachable")
	} else {
		report.Hints = append(report.Hints, "date check routine degraded; verify the events store and settings")
	}

	next := s.oracle.NextAvailable(ctx, s.now().UTC())
	nextOK := next != nil
	if nextOK {
		report.Checks = append(report.Checks, "next available routine reachable")
	}

	switch {
	case len(missing) == 0 && dateCheckOK && nextOK:
		report.Status = "healthy"
	case len(missing) > 0 && !dateCheckOK:
		report.Status = "unhealthy"
	default:
		report.Status = "partial"
	}
	return report
}

func (s *StatusService) activeSummary(ctx context.Context, academicYear string) *ActiveCalendarSummary {
	upload, err := s.uploads.FindActiveByYear(ctx, academicYear)
	if err != nil {
		s.logger.Warn("active calendar lookup failed", zap.String("academic_year", academicYear), zap.Error(err))
		return nil
	}
	if upload == nil {
		return nil
	}

	summary := &ActiveCalendarSummary{
		UploadID:     upload.ID,
		FileName:     upload.FileName,
		AcademicYear: upload.AcademicYear,
		UploadedAt:   upload.UploadedAt,
	}
	events, err := s.events.List(ctx, models.EventFilter{UploadID: upload.ID})
	if err != nil {
		s.logger.Warn("active calendar event count failed", zap.String("upload_id", upload.ID), zap.Error(err))
	} else {
		summary.EventCount = len(events)
	}
	return summary
}

func timePtr(t time.Time) *time.Time {
	return &t
}

package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-request-api/internal/models"
	appErrors "github.com/noah-isme/campus-request-api/pkg/errors"
	"github.com/noah-isme/campus-request-api/pkg/export"
	"github.com/noah-isme/campus-request-api/pkg/ical"
)

type eventLister interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.CalendarEvent, error)
}

type activeUploadFinder interface {
	FindActiveByYear(ctx context.Context, academicYear string) (*models.CalendarUpload, error)
}

// EventSummary groups a result set by event type.
type EventSummary struct {
	TotalEvents  int                      `json:"total_events"`
	ByType       map[models.EventType]int `json:"by_type"`
	BlockingDays int                      `json:"blocking_events"`
}

// EventQueryResult bundles events with their type-grouped summary.
type EventQueryResult struct {
	Events  []models.CalendarEvent `json:"events"`
	Summary EventSummary           `json:"summary"`
}

// EventQueryService serves read-side event queries, the export surface and
// the public ICS feed.
type EventQueryService struct {
	events   eventLister
	uploads  activeUploadFinder
	settings settingsReader
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewEventQueryService constructs the query service.
func NewEventQueryService(events eventLister, uploads activeUploadFinder, settings settingsReader, logger *zap.Logger) *EventQueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventQueryService{
		events:   events,
		uploads:  uploads,
		settings: settings,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

// Query returns events matching the filter plus a type-grouped summary.
func (s *EventQueryService) Query(ctx context.Context, filter models.EventFilter) (*EventQueryResult, error) {
	events, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to query calendar events")
	}

	summary := EventSummary{
		TotalEvents: len(events),
		ByType:      map[models.EventType]int{},
	}
	for _, e := range events {
		summary.ByType[e.EventType]++
		if e.AffectsRequestCreation {
			summary.BlockingDays++
		}
	}
	return &EventQueryResult{Events: events, Summary: summary}, nil
}

// Export renders the filtered events as CSV or PDF bytes.
func (s *EventQueryService) Export(ctx context.Context, filter models.EventFilter, format string) ([]byte, string, error) {
	result, err := s.Query(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	data := eventDataset(result.Events)
	switch format {
	case "csv":
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "csv export failed")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(data, "Academic Calendar Events")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "pdf export failed")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format: %s", format))
	}
}

// Feed renders the active calendar's events as an iCalendar document. When
// academicYear is empty the current academic year from settings is used.
func (s *EventQueryService) Feed(ctx context.Context, academicYear string) (string, error) {
	if academicYear == "" {
		settings, err := s.settings.Get(ctx)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve academic year")
		}
		academicYear = settings.CurrentAcademicYear
	}

	upload, err := s.uploads.FindActiveByYear(ctx, academicYear)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve active calendar")
	}
	if upload == nil {
		return "", appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no active calendar for %s", academicYear))
	}

	events, err := s.events.List(ctx, models.EventFilter{UploadID: upload.ID})
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load calendar events")
	}
	return ical.Feed(events, academicYear), nil
}

func eventDataset(events []models.CalendarEvent) export.Dataset {
	data := export.Dataset{
		Headers: []string{"Event", "Type", "Start", "End", "Blocks Requests", "Recurring", "Priority"},
	}
	for _, e := range events {
		data.Rows = append(data.Rows, map[string]string{
			"Event":           e.EventName,
			"Type":            string(e.EventType),
			"Start":           e.StartDate.Format(dayLayout),
			"End":             e.EndDate.Format(dayLayout),
			"Blocks Requests": strconv.FormatBool(e.AffectsRequestCreation),
			"Recurring":       string(e.RecurringType),
			"Priority":        string(e.PriorityLevel),
		})
	}
	return data
}

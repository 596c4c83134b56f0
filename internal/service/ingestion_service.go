package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-request-api/internal/docparse"
	"github.com/noah-isme/campus-request-api/internal/extract"
	"github.com/noah-isme/campus-request-api/internal/models"
	appErrors "github.com/noah-isme/campus-request-api/pkg/errors"
)

// checkCacheKeyPattern matches all cached oracle date checks.
const checkCacheKeyPattern = "calendar:check:*"

type uploadStore interface {
	Create(ctx context.Context, upload *models.CalendarUpload) error
	UpdateStatus(ctx context.Context, id string, status models.ProcessingStatus, notes string) error
	Activate(ctx context.Context, id, academicYear, notes string) error
}

type eventStore interface {
	Create(ctx context.Context, event *models.CalendarEvent) error
}

type parsingLogStore interface {
	Append(ctx context.Context, log *models.ParsingLog) error
}

type documentParser interface {
	Parse(path, mimeType string) (*docparse.Result, error)
}

type eventExtractor interface {
	Extract(text, academicYear string) ([]models.CalendarEvent, extract.Summary, error)
}

type uploadFileStore interface {
	Delete(filename string) error
	Path(filename string) string
}

type academicYearWriter interface {
	SetCurrentAcademicYear(ctx context.Context, academicYear, updatedBy string) error
}

type checkCacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// IngestionService orchestrates upload → parse → extract → persist → activate
// for calendar documents. Each upload is processed synchronously within the
// request lifecycle; every stage transition is durably logged before any
// failure is surfaced, and the stored file is removed on every failure path.
type IngestionService struct {
	uploads   uploadStore
	events    eventStore
	logs      parsingLogStore
	parser    documentParser
	extractor eventExtractor
	storage   uploadFileStore
	settings  academicYearWriter
	cache     checkCacheInvalidator
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewIngestionService constructs the pipeline.
func NewIngestionService(
	uploads uploadStore,
	events eventStore,
	logs parsingLogStore,
	parser documentParser,
	extractor eventExtractor,
	storage uploadFileStore,
	settings academicYearWriter,
	cache checkCacheInvalidator,
	metrics *MetricsService,
	logger *zap.Logger,
) *IngestionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestionService{
		uploads:   uploads,
		events:    events,
		logs:      logs,
		parser:    parser,
		extractor: extractor,
		storage:   storage,
		settings:  settings,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
	}
}

// ProcessUploadRequest describes a stored calendar document awaiting
// ingestion. StoredPath is relative to the upload storage root.
type ProcessUploadRequest struct {
	AcademicYear string
	FileName     string
	StoredPath   string
	MimeType     string
	FileSize     int64
	UploadedBy   string
}

// FailedEvent records one event dropped during the persistence loop.
type FailedEvent struct {
	EventName string `json:"event_name"`
	Error     string `json:"error"`
}

// UploadResult is the pipeline's partial-success outcome.
type UploadResult struct {
	UploadID        string                 `json:"upload_id"`
	EventsProcessed int                    `json:"events_processed"`
	SavedCount      int                    `json:"saved_count"`
	FailedEvents    []FailedEvent          `json:"failed_events"`
	Preview         []models.CalendarEvent `json:"preview"`
	Summary         extract.Summary        `json:"summary"`
}

// ProcessUpload runs the full ingestion pipeline for one stored document.
func (s *IngestionService) ProcessUpload(ctx context.Context, req ProcessUploadRequest) (*UploadResult, error) {
	// Step 1: validate before any row exists.
	if _, _, err := extract.ParseAcademicYear(req.AcademicYear); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	// Step 2: create the upload row.
	upload := &models.CalendarUpload{
		FileName:         req.FileName,
		FilePath:         req.StoredPath,
		FileType:         req.MimeType,
		FileSize:         req.FileSize,
		AcademicYear:     req.AcademicYear,
		UploadedBy:       req.UploadedBy,
		ProcessingStatus: models.ProcessingPending,
	}
	if err := s.uploads.Create(ctx, upload); err != nil {
		s.deleteFile(req.StoredPath)
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to record upload")
	}

	// Step 3: log the upload stage.
	s.logStage(ctx, upload.ID, models.StageUpload, models.ParsingStageCompleted, "document stored", "", map[string]interface{}{
		"file_name": req.FileName,
		"file_size": req.FileSize,
		"mime_type": req.MimeType,
	})

	if err := s.uploads.UpdateStatus(ctx, upload.ID, models.ProcessingInProgress, ""); err != nil {
		return nil, s.fail(ctx, upload, models.StageTextExtraction, "failed to start processing", err.Error())
	}

	// Step 4: text extraction.
	s.logStage(ctx, upload.ID, models.StageTextExtraction, models.ParsingStarted, "extracting document text", "", nil)
	parsed, err := s.parser.Parse(s.storage.Path(req.StoredPath), req.MimeType)
	if err != nil {
		return nil, s.fail(ctx, upload, models.StageTextExtraction, "document could not be parsed", err.Error())
	}
	s.logStage(ctx, upload.ID, models.StageTextExtraction, models.ParsingStageCompleted, "text extracted", "", map[string]interface{}{
		"text_length": len(parsed.Text),
		"warnings":    parsed.Messages,
	})

	// Step 5: date parsing.
	s.logStage(ctx, upload.ID, models.StageDateParsing, models.ParsingStarted, "scanning for calendar events", "", nil)
	events, summary, err := s.extractor.Extract(parsed.Text, req.AcademicYear)
	if err != nil {
		s.logStage(ctx, upload.ID, models.StageDateParsing, models.ParsingStageFailed, "event extraction failed", err.Error(), map[string]interface{}{
			"text_sample": textSample(parsed.Text),
		})
		return nil, s.failNoStageLog(ctx, upload, err.Error())
	}
	if len(events) == 0 {
		msg := "no calendar events recognized in document"
		s.logStage(ctx, upload.ID, models.StageDateParsing, models.ParsingStageFailed, msg, "", map[string]interface{}{
			"text_sample": textSample(parsed.Text),
			"text_length": len(parsed.Text),
		})
		return nil, s.failNoStageLog(ctx, upload, msg)
	}
	s.logStage(ctx, upload.ID, models.StageDateParsing, models.ParsingStageCompleted, "events recognized", "", map[string]interface{}{
		"event_count": len(events),
		"summary":     summary,
	})

	// Steps 6-7: persist events independently; one bad row never aborts the batch.
	s.logStage(ctx, upload.ID, models.StageEventCreation, models.ParsingStarted, "persisting events", "", nil)
	saved := 0
	var failed []FailedEvent
	for i := range events {
		events[i].UploadID = upload.ID
		if err := s.events.Create(ctx, &events[i]); err != nil {
			failed = append(failed, FailedEvent{EventName: events[i].EventName, Error: err.Error()})
			s.logger.Warn("event persistence failed",
				zap.String("upload_id", upload.ID),
				zap.String("event_name", events[i].EventName),
				zap.Error(err))
			continue
		}
		saved++
	}
	s.logStage(ctx, upload.ID, models.StageEventCreation, models.ParsingStageCompleted, "events persisted", "", map[string]interface{}{
		"saved_count":  saved,
		"failed_count": len(failed),
	})
	if saved == 0 {
		return nil, s.fail(ctx, upload, models.StageEventCreation, "no events could be persisted", fmt.Sprintf("%d events failed", len(failed)))
	}

	// Step 8: deactivate siblings and activate this upload atomically.
	notes := fmt.Sprintf("processed %d events (%d saved, %d failed)", len(events), saved, len(failed))
	if err := s.uploads.Activate(ctx, upload.ID, req.AcademicYear, notes); err != nil {
		return nil, s.fail(ctx, upload, models.StageEventCreation, "failed to activate calendar", err.Error())
	}
	s.logStage(ctx, upload.ID, models.StageCompleted, models.ParsingStageCompleted, notes, "", nil)

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, checkCacheKeyPattern); err != nil {
			s.logger.Warn("failed to invalidate date check cache", zap.Error(err))
		}
	}

	// Step 9: best-effort settings update; never fails the upload.
	if err := s.settings.SetCurrentAcademicYear(ctx, req.AcademicYear, req.UploadedBy); err != nil {
		s.logger.Warn("failed to update current academic year setting",
			zap.String("academic_year", req.AcademicYear),
			zap.Error(err))
	}

	s.metrics.RecordUpload("completed", saved)

	preview := events
	if len(preview) > 10 {
		preview = preview[:10]
	}
	return &UploadResult{
		UploadID:        upload.ID,
		EventsProcessed: len(events),
		SavedCount:      saved,
		FailedEvents:    failed,
		Preview:         preview,
		Summary:         summary,
	}, nil
}

// fail marks the upload failed, records the stage failure, removes the stored
// file and returns a stage-labelled error.
func (s *IngestionService) fail(ctx context.Context, upload *models.CalendarUpload, stage models.ParsingStage, message, details string) error {
	s.logStage(ctx, upload.ID, stage, models.ParsingStageFailed, message, details, nil)
	return s.finishFailure(ctx, upload, stage, message, details)
}

// failNoStageLog is used when the stage failure record was already written
// with diagnostic payload attached.
func (s *IngestionService) failNoStageLog(ctx context.Context, upload *models.CalendarUpload, message string) error {
	return s.finishFailure(ctx, upload, models.StageDateParsing, message, "")
}

func (s *IngestionService) finishFailure(ctx context.Context, upload *models.CalendarUpload, stage models.ParsingStage, message, details string) error {
	if err := s.uploads.UpdateStatus(ctx, upload.ID, models.ProcessingFailed, message); err != nil {
		s.logger.Error("failed to mark upload failed", zap.String("upload_id", upload.ID), zap.Error(err))
	}
	s.deleteFile(upload.FilePath)
	s.metrics.RecordUpload("failed", 0)

	base := appErrors.ErrParse
	switch stage {
	case models.StageDateParsing:
		base = appErrors.ErrExtraction
	case models.StageEventCreation:
		base = appErrors.ErrPersistence
	}
	appErr := appErrors.Clone(base, message)
	if details != "" {
		appErr.Err = fmt.Errorf("%s", details)
	}
	return appErrors.WithStage(appErr, string(stage))
}

func (s *IngestionService) deleteFile(path string) {
	if path == "" {
		return
	}
	if err := s.storage.Delete(path); err != nil {
		s.logger.Warn("failed to remove uploaded file", zap.String("path", path), zap.Error(err))
	}
}

func (s *IngestionService) logStage(ctx context.Context, uploadID string, stage models.ParsingStage, status models.ParsingStatus, message, errDetails string, data interface{}) {
	log := &models.ParsingLog{
		UploadID:     uploadID,
		Stage:        stage,
		Status:       status,
		Message:      message,
		ErrorDetails: errDetails,
	}
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			log.DataExtracted = raw
		}
	}
	if err := s.logs.Append(ctx, log); err != nil {
		s.logger.Error("failed to append parsing log",
			zap.String("upload_id", uploadID),
			zap.String("stage", string(stage)),
			zap.Error(err))
	}
}

// textSample returns the first ~500 characters of extracted text for
// diagnostics on extraction failures.
func textSample(text string) string {
	runes := []rune(text)
	if len(runes) > 500 {
		runes = runes[:500]
	}
	return string(runes)
}

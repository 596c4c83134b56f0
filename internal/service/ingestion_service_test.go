package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-request-api/internal/docparse"
	"github.com/noah-isme/campus-request-api/internal/extract"
	"github.com/noah-isme/campus-request-api/internal/models"
	appErrors "github.com/noah-isme/campus-request-api/pkg/errors"
)

type mockUploadStore struct {
	created     *models.CalendarUpload
	statuses    []models.ProcessingStatus
	activated   bool
	createErr   error
	activateErr error
}

func (m *mockUploadStore) Create(ctx context.Context, upload *models.CalendarUpload) error {
	if m.createErr != nil {
		return m.createErr
	}
	upload.ID = "upload-1"
	m.created = upload
	return nil
}

func (m *mockUploadStore) UpdateStatus(ctx context.Context, id string, status models.ProcessingStatus, notes string) error {
	m.statuses = append(m.statuses, status)
	return nil
}

func (m *mockUploadStore) Activate(ctx context.Context, id, academicYear, notes string) error {
	if m.activateErr != nil {
		return m.activateErr
	}
	m.activated = true
	return nil
}

type mockEventStore struct {
	created []models.CalendarEvent
	failOn  map[string]error
}

func (m *mockEventStore) Create(ctx context.Context, event *models.CalendarEvent) error {
	if err, ok := m.failOn[event.EventName]; ok {
		return err
	}
	m.created = append(m.created, *event)
	return nil
}

type mockLogStore struct {
	logs []models.ParsingLog
}

func (m *mockLogStore) Append(ctx context.Context, log *models.ParsingLog) error {
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockLogStore) stages(status models.ParsingStatus) []models.ParsingStage {
	var out []models.ParsingStage
	for _, l := range m.logs {
		if l.Status == status {
			out = append(out, l.Stage)
		}
	}
	return out
}

type mockDocParser struct {
	result *docparse.Result
	err    error
	path   string
}

func (m *mockDocParser) Parse(path, mimeType string) (*docparse.Result, error) {
	m.path = path
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockExtractor struct {
	events []models.CalendarEvent
	summ   extract.Summary
	err    error
}

func (m *mockExtractor) Extract(text, academicYear string) ([]models.CalendarEvent, extract.Summary, error) {
	if m.err != nil {
		return nil, extract.Summary{}, m.err
	}
	return m.events, m.summ, nil
}

type mockFileStorage struct {
	deleted []string
}

func (m *mockFileStorage) Delete(filename string) error {
	m.deleted = append(m.deleted, filename)
	return nil
}

func (m *mockFileStorage) Path(filename string) string {
	return filepath.Join("/var/uploads", filename)
}

type mockYearWriter struct {
	year string
	err  error
}

func (m *mockYearWriter) SetCurrentAcademicYear(ctx context.Context, academicYear, updatedBy string) error {
	m.year = academicYear
	return m.err
}

type mockCacheInvalidator struct {
	patterns []string
}

func (m *mockCacheInvalidator) DeleteByPattern(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	return nil
}

type ingestionFixture struct {
	uploads   *mockUploadStore
	events    *mockEventStore
	logs      *mockLogStore
	parser    *mockDocParser
	extractor *mockExtractor
	storage   *mockFileStorage
	settings  *mockYearWriter
	cache     *mockCacheInvalidator
	svc       *IngestionService
}

func newIngestionFixture() *ingestionFixture {
	f := &ingestionFixture{
		uploads: &mockUploadStore{},
		events:  &mockEventStore{},
		logs:    &mockLogStore{},
		parser: &mockDocParser{result: &docparse.Result{
			Text: "29 Ekim 2025 Cumhuriyet Bayramı",
		}},
		extractor: &mockExtractor{
			events: []models.CalendarEvent{
				blockingEvent("Cumhuriyet Bayramı", day(2025, 10, 29), day(2025, 10, 29)),
			},
			summ: extract.Summary{TotalEvents: 1, BlockingCount: 1},
		},
		storage:  &mockFileStorage{},
		settings: &mockYearWriter{},
		cache:    &mockCacheInvalidator{},
	}
	f.svc = NewIngestionService(f.uploads, f.events, f.logs, f.parser, f.extractor,
		f.storage, f.settings, f.cache, nil, zap.NewNop())
	return f
}

func sampleUploadRequest() ProcessUploadRequest {
	return ProcessUploadRequest{
		AcademicYear: "2025-2026",
		FileName:     "takvim.docx",
		StoredPath:   "abc123.docx",
		MimeType:     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		FileSize:     2048,
		UploadedBy:   "admin-1",
	}
}

func TestProcessUploadSuccess(t *testing.T) {
	f := newIngestionFixture()

	result, err := f.svc.ProcessUpload(context.Background(), sampleUploadRequest())
	require.NoError(t, err)

	assert.Equal(t, "upload-1", result.UploadID)
	assert.Equal(t, 1, result.EventsProcessed)
	assert.Equal(t, 1, result.SavedCount)
	assert.Empty(t, result.FailedEvents)
	require.Len(t, result.Preview, 1)

	assert.True(t, f.uploads.activated)
	require.Len(t, f.events.created, 1)
	assert.Equal(t, "upload-1", f.events.created[0].UploadID)

	completed := f.logs.stages(models.ParsingStageCompleted)
	assert.Contains(t, completed, models.StageUpload)
	assert.Contains(t, completed, models.StageTextExtraction)
	assert.Contains(t, completed, models.StageDateParsing)
	assert.Contains(t, completed, models.StageEventCreation)
	assert.Contains(t, completed, models.StageCompleted)

	assert.Equal(t, []string{checkCacheKeyPattern}, f.cache.patterns)
	assert.Equal(t, "2025-2026", f.settings.year)
	assert.Empty(t, f.storage.deleted)
	assert.Equal(t, "/var/uploads/abc123.docx", f.parser.path)
}

func TestProcessUploadInvalidAcademicYear(t *testing.T) {
	f := newIngestionFixture()

	req := sampleUploadRequest()
	req.AcademicYear = "2025-2027"

	_, err := f.svc.ProcessUpload(context.Background(), req)
	require.Error(t, err)
	assert.Nil(t, f.uploads.created)
}

func TestProcessUploadParseFailure(t *testing.T) {
	f := newIngestionFixture()
	f.parser.err = errors.New("file is corrupted")

	_, err := f.svc.ProcessUpload(context.Background(), sampleUploadRequest())
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, string(models.StageTextExtraction), appErr.Stage)

	assert.Contains(t, f.uploads.statuses, models.ProcessingFailed)
	assert.False(t, f.uploads.activated)
	assert.Empty(t, f.events.created)
	assert.Equal(t, []string{"abc123.docx"}, f.storage.deleted)

	failed := f.logs.stages(models.ParsingStageFailed)
	assert.Contains(t, failed, models.StageTextExtraction)
}

func TestProcessUploadNoEventsRecognized(t *testing.T) {
	f := newIngestionFixture()
	f.extractor.events = nil

	_, err := f.svc.ProcessUpload(context.Background(), sampleUploadRequest())
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, string(models.StageDateParsing), appErr.Stage)

	assert.Contains(t, f.uploads.statuses, models.ProcessingFailed)
	assert.Equal(t, []string{"abc123.docx"}, f.storage.deleted)

	// The failure log carries a text sample for diagnostics.
	var failLog *models.ParsingLog
	for i := range f.logs.logs {
		if f.logs.logs[i].Stage == models.StageDateParsing && f.logs.logs[i].Status == models.ParsingStageFailed {
			failLog = &f.logs.logs[i]
		}
	}
	require.NotNil(t, failLog)
	assert.Contains(t, string(failLog.DataExtracted), "text_sample")
}

func TestProcessUploadPartialPersistence(t *testing.T) {
	f := newIngestionFixture()
	f.extractor.events = []models.CalendarEvent{
		blockingEvent("Cumhuriyet Bayramı", day(2025, 10, 29), day(2025, 10, 29)),
		blockingEvent("Yılbaşı", day(2026, 1, 1), day(2026, 1, 1)),
	}
	f.events.failOn = map[string]error{"Yılbaşı": errors.New("duplicate key")}

	result, err := f.svc.ProcessUpload(context.Background(), sampleUploadRequest())
	require.NoError(t, err)

	assert.Equal(t, 2, result.EventsProcessed)
	assert.Equal(t, 1, result.SavedCount)
	require.Len(t, result.FailedEvents, 1)
	assert.Equal(t, "Yılbaşı", result.FailedEvents[0].EventName)
	assert.True(t, f.uploads.activated)
}

func TestProcessUploadAllEventsFailPersistence(t *testing.T) {
	f := newIngestionFixture()
	f.events.failOn = map[string]error{"Cumhuriyet Bayramı": errors.New("insert failed")}

	_, err := f.svc.ProcessUpload(context.Background(), sampleUploadRequest())
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, string(models.StageEventCreation), appErr.Stage)
	assert.False(t, f.uploads.activated)
	assert.Equal(t, []string{"abc123.docx"}, f.storage.deleted)
}

func TestProcessUploadSettingsFailureDoesNotFailUpload(t *testing.T) {
	f := newIngestionFixture()
	f.settings.err = errors.New("settings store down")

	result, err := f.svc.ProcessUpload(context.Background(), sampleUploadRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, result.SavedCount)
	assert.True(t, f.uploads.activated)
}

func TestProcessUploadPreviewCapped(t *testing.T) {
	f := newIngestionFixture()
	var events []models.CalendarEvent
	for i := 0; i < 14; i++ {
		events = append(events, blockingEvent("Etkinlik", day(2025, 10, 1).AddDate(0, 0, i), day(2025, 10, 1).AddDate(0, 0, i)))
	}
	f.extractor.events = events

	result, err := f.svc.ProcessUpload(context.Background(), sampleUploadRequest())
	require.NoError(t, err)
	assert.Equal(t, 14, result.EventsProcessed)
	assert.Len(t, result.Preview, 10)
}

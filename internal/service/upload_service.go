package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-request-api/internal/models"
	appErrors "github.com/noah-isme/campus-request-api/pkg/errors"
)

type uploadAdminStore interface {
	GetByID(ctx context.Context, id string) (*models.CalendarUpload, error)
	List(ctx context.Context, filter models.UploadFilter) ([]models.CalendarUpload, int, error)
	Delete(ctx context.Context, id string) error
}

type parsingLogReader interface {
	ListByUpload(ctx context.Context, uploadID string) ([]models.ParsingLog, error)
}

// UploadService exposes administrative visibility over past uploads: the
// paged history, per-upload parsing logs and deletion.
type UploadService struct {
	uploads uploadAdminStore
	logs    parsingLogReader
	storage uploadFileStore
	cache   checkCacheInvalidator
	logger  *zap.Logger
}

// NewUploadService constructs the upload admin service.
func NewUploadService(uploads uploadAdminStore, logs parsingLogReader, storage uploadFileStore, cache checkCacheInvalidator, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{
		uploads: uploads,
		logs:    logs,
		storage: storage,
		cache:   cache,
		logger:  logger,
	}
}

// History returns the paged upload history plus the total row count.
func (s *UploadService) History(ctx context.Context, filter models.UploadFilter) ([]models.CalendarUpload, int, error) {
	uploads, total, err := s.uploads.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list uploads")
	}
	return uploads, total, nil
}

// Logs returns the chronological parsing audit trail for one upload.
func (s *UploadService) Logs(ctx context.Context, uploadID string) ([]models.ParsingLog, error) {
	upload, err := s.uploads.GetByID(ctx, uploadID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load upload")
	}
	if upload == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "upload not found")
	}

	logs, err := s.logs.ListByUpload(ctx, uploadID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list parsing logs")
	}
	return logs, nil
}

// Delete removes an upload row (events and logs cascade at the schema
// level) and the stored document. Deleting an active upload also drops any
// cached date checks derived from its events.
func (s *UploadService) Delete(ctx context.Context, uploadID string) error {
	upload, err := s.uploads.GetByID(ctx, uploadID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load upload")
	}
	if upload == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "upload not found")
	}

	if err := s.uploads.Delete(ctx, uploadID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to delete upload")
	}

	if upload.FilePath != "" {
		if err := s.storage.Delete(upload.FilePath); err != nil {
			s.logger.Warn("failed to remove stored document", zap.String("path", upload.FilePath), zap.Error(err))
		}
	}

	if upload.IsActive && s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, checkCacheKeyPattern); err != nil {
			s.logger.Warn("failed to invalidate date check cache", zap.Error(err))
		}
	}

	s.logger.Info("calendar upload deleted",
		zap.String("upload_id", uploadID),
		zap.String("academic_year", upload.AcademicYear))
	return nil
}

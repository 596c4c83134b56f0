package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-request-api/internal/models"
)

type failedUploadLister interface {
	ListFailedOlderThan(ctx context.Context, cutoff time.Time) ([]models.CalendarUpload, error)
}

type cleanupFileStore interface {
	Delete(filename string) error
}

// CleanupService purges stored documents left behind by failed uploads. The
// ingestion pipeline already deletes files on its failure paths; this sweep
// catches files orphaned by crashes mid-pipeline.
type CleanupService struct {
	uploads failedUploadLister
	storage cleanupFileStore
	ttl     time.Duration
	logger  *zap.Logger
}

// NewCleanupService constructs the cleanup sweep.
func NewCleanupService(uploads failedUploadLister, storage cleanupFileStore, ttl time.Duration, logger *zap.Logger) *CleanupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CleanupService{uploads: uploads, storage: storage, ttl: ttl, logger: logger}
}

// Run executes one sweep over failed uploads older than the TTL, removing
// any stored document each still references. Files belonging to completed
// uploads are kept until the upload itself is deleted.
func (s *CleanupService) Run(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-s.ttl)

	failed, err := s.uploads.ListFailedOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	removed := 0
	for _, upload := range failed {
		if upload.FilePath == "" {
			continue
		}
		if err := s.storage.Delete(upload.FilePath); err != nil {
			s.logger.Warn("failed to remove stale upload file",
				zap.String("upload_id", upload.ID),
				zap.String("path", upload.FilePath),
				zap.Error(err))
			continue
		}
		removed++
	}

	s.logger.Info("upload cleanup sweep finished",
		zap.Int("failed_upload_files", removed),
		zap.Int("candidates", len(failed)))
	return nil
}

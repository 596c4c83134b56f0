package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-request-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func uploadRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "file_name", "file_path", "file_type", "file_size", "academic_year",
		"uploaded_by", "uploaded_at", "processing_status", "processing_notes", "is_active",
	})
}

func TestUploadRepositoryCreateFillsDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUploadRepository(db)

	mock.ExpectExec("INSERT INTO calendar_uploads").
		WillReturnResult(sqlmock.NewResult(1, 1))

	upload := &models.CalendarUpload{
		FileName:     "takvim.docx",
		AcademicYear: "2025-2026",
		UploadedBy:   "admin-1",
	}
	require.NoError(t, repo.Create(context.Background(), upload))
	assert.NotEmpty(t, upload.ID)
	assert.False(t, upload.UploadedAt.IsZero())
	assert.Equal(t, models.ProcessingPending, upload.ProcessingStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUploadRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM calendar_uploads WHERE id").
		WithArgs("missing").
		WillReturnRows(uploadRows())

	upload, err := repo.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, upload)
}

func TestUploadRepositoryActivateRunsInTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUploadRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE calendar_uploads SET is_active = FALSE").
		WithArgs("2025-2026", "upload-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE calendar_uploads SET is_active = TRUE").
		WithArgs("upload-2", models.ProcessingCompleted, "processed 12 events").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Activate(context.Background(), "upload-2", "2025-2026", "processed 12 events"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadRepositoryActivateRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUploadRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE calendar_uploads SET is_active = FALSE").
		WithArgs("2025-2026", "upload-2").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Activate(context.Background(), "upload-2", "2025-2026", "notes")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadRepositoryFindActiveByYear(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUploadRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM calendar_uploads WHERE academic_year").
		WithArgs("2025-2026", models.ProcessingCompleted).
		WillReturnRows(uploadRows().AddRow(
			"upload-1", "takvim.docx", "abc.docx", "application/msword", int64(2048),
			"2025-2026", "admin-1", now, "completed", "processed 12 events", true,
		))

	upload, err := repo.FindActiveByYear(context.Background(), "2025-2026")
	require.NoError(t, err)
	require.NotNil(t, upload)
	assert.Equal(t, "upload-1", upload.ID)
	assert.True(t, upload.IsActive)
}

func TestUploadRepositoryListFailedOlderThan(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUploadRepository(db)

	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	mock.ExpectQuery("SELECT (.+) FROM calendar_uploads WHERE processing_status").
		WithArgs(models.ProcessingFailed, cutoff).
		WillReturnRows(uploadRows().AddRow(
			"upload-9", "bozuk.docx", "xyz.docx", "application/msword", int64(100),
			"2025-2026", "admin-1", cutoff.Add(-time.Hour), "failed", "document could not be parsed", false,
		))

	uploads, err := repo.ListFailedOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	assert.Equal(t, "upload-9", uploads[0].ID)
}

package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/campus-request-api/internal/models"
	"github.com/noah-isme/campus-request-api/internal/service"
	"github.com/noah-isme/campus-request-api/pkg/config"
	appErrors "github.com/noah-isme/campus-request-api/pkg/errors"
	"github.com/noah-isme/campus-request-api/pkg/response"
	"github.com/noah-isme/campus-request-api/pkg/storage"
)

// CalendarHandler exposes the administrative calendar ingestion endpoints.
type CalendarHandler struct {
	ingestion *service.IngestionService
	uploads   *service.UploadService
	storage   *storage.LocalStorage
	cfg       config.UploadsConfig
}

// NewCalendarHandler constructs CalendarHandler.
func NewCalendarHandler(ingestion *service.IngestionService, uploads *service.UploadService, store *storage.LocalStorage, cfg config.UploadsConfig) *CalendarHandler {
	return &CalendarHandler{
		ingestion: ingestion,
		uploads:   uploads,
		storage:   store,
		cfg:       cfg,
	}
}

// Upload godoc
// @Summary Upload an academic calendar document
// @Tags Calendar Admin
// @Accept multipart/form-data
// @Produce json
// @Param calendar_document formData file true "Calendar document (.doc/.docx/.txt/.pdf)"
// @Param academic_year formData string true "Academic year (YYYY-YYYY)"
// @Success 201 {object} response.Envelope
// @Router /admin/calendar/upload [post]
func (h *CalendarHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("calendar_document")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "calendar_document is required"))
		return
	}
	academicYear := strings.TrimSpace(c.PostForm("academic_year"))
	if academicYear == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "academic_year is required"))
		return
	}

	if h.cfg.MaxFileSizeBytes > 0 && fileHeader.Size > h.cfg.MaxFileSizeBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("file exceeds maximum size of %d bytes", h.cfg.MaxFileSizeBytes)))
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if !h.mimeAllowed(mimeType) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("unsupported content type: %s", mimeType)))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	storedName := fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(fileHeader.Filename))
	if _, err := h.storage.SaveStream(storedName, src); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file"))
		return
	}

	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, err := h.ingestion.ProcessUpload(c.Request.Context(), service.ProcessUploadRequest{
		AcademicYear: academicYear,
		FileName:     fileHeader.Filename,
		StoredPath:   storedName,
		MimeType:     mimeType,
		FileSize:     fileHeader.Size,
		UploadedBy:   claims.UserID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// History godoc
// @Summary List past calendar uploads
// @Tags Calendar Admin
// @Produce json
// @Param academic_year query string false "Filter by academic year"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/calendar/history [get]
func (h *CalendarHandler) History(c *gin.Context) {
	var filter models.UploadFilter
	filter.AcademicYear = c.Query("academic_year")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	uploads, total, err := h.uploads.History(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, uploads, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Logs godoc
// @Summary List the parsing audit trail for an upload
// @Tags Calendar Admin
// @Produce json
// @Param id path string true "Upload ID"
// @Success 200 {object} response.Envelope
// @Router /admin/calendar/uploads/{id}/logs [get]
func (h *CalendarHandler) Logs(c *gin.Context) {
	logs, err := h.uploads.Logs(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}

// Delete godoc
// @Summary Delete a calendar upload and its events
// @Tags Calendar Admin
// @Produce json
// @Param id path string true "Upload ID"
// @Success 204
// @Router /admin/calendar/uploads/{id} [delete]
func (h *CalendarHandler) Delete(c *gin.Context) {
	if err := h.uploads.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *CalendarHandler) mimeAllowed(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	for _, allowed := range h.cfg.AllowedMIMEs {
		if mimeType == allowed {
			return true
		}
	}
	return false
}

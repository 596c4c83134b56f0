package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-request-api/internal/service"
	appErrors "github.com/noah-isme/campus-request-api/pkg/errors"
	"github.com/noah-isme/campus-request-api/pkg/response"
)

// AvailabilityHandler exposes the public calendar status and date check
// endpoints.
type AvailabilityHandler struct {
	oracle *service.AvailabilityService
	status *service.StatusService
}

// NewAvailabilityHandler constructs AvailabilityHandler.
func NewAvailabilityHandler(oracle *service.AvailabilityService, status *service.StatusService) *AvailabilityHandler {
	return &AvailabilityHandler{oracle: oracle, status: status}
}

// Status godoc
// @Summary Current calendar status
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /calendar/status [get]
func (h *AvailabilityHandler) Status(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.status.Status(c.Request.Context()), nil)
}

// Check godoc
// @Summary Check whether a date allows request creation
// @Tags Calendar
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /calendar/check/{date} [get]
func (h *AvailabilityHandler) Check(c *gin.Context) {
	date, err := parseDateParam(c.Param("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	if err := validateSaneRange(date, time.Now().UTC()); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	response.JSON(c, http.StatusOK, h.oracle.CheckDate(c.Request.Context(), date), nil)
}

// NextAvailable godoc
// @Summary Find the next date open for request creation
// @Tags Calendar
// @Produce json
// @Param from query string false "Starting date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /calendar/next-available [get]
func (h *AvailabilityHandler) NextAvailable(c *gin.Context) {
	from := time.Now().UTC()
	if raw := c.Query("from"); raw != "" {
		parsed, err := parseDateParam(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
			return
		}
		if err := validateSaneRange(parsed, time.Now().UTC()); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
			return
		}
		from = parsed
	}
	response.JSON(c, http.StatusOK, h.oracle.NextAvailable(c.Request.Context(), from), nil)
}

// Validate godoc
// @Summary Validate calendar system health
// @Tags Calendar Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/calendar/validate [get]
func (h *AvailabilityHandler) Validate(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.status.Validate(c.Request.Context()), nil)
}

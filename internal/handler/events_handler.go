package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-request-api/internal/models"
	"github.com/noah-isme/campus-request-api/internal/service"
	appErrors "github.com/noah-isme/campus-request-api/pkg/errors"
	"github.com/noah-isme/campus-request-api/pkg/response"
)

// EventsHandler exposes calendar event queries, exports and the ICS feed.
type EventsHandler struct {
	events         *service.EventQueryService
	exportsEnabled bool
}

// NewEventsHandler constructs EventsHandler.
func NewEventsHandler(events *service.EventQueryService, exportsEnabled bool) *EventsHandler {
	return &EventsHandler{events: events, exportsEnabled: exportsEnabled}
}

// List godoc
// @Summary Query calendar events
// @Tags Calendar
// @Produce json
// @Param academic_year query string false "Academic year (YYYY-YYYY)"
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Param event_type query string false "Comma-separated event types"
// @Param affects_only query bool false "Only events blocking request creation"
// @Success 200 {object} response.Envelope
// @Router /calendar/events [get]
func (h *EventsHandler) List(c *gin.Context) {
	filter, err := eventFilterFromQuery(c)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}

	result, err := h.events.Query(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Export godoc
// @Summary Export calendar events as CSV or PDF
// @Tags Calendar Admin
// @Produce octet-stream
// @Param format query string true "Export format (csv or pdf)"
// @Router /admin/calendar/events/export [get]
func (h *EventsHandler) Export(c *gin.Context) {
	if !h.exportsEnabled {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled"))
		return
	}

	filter, err := eventFilterFromQuery(c)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}

	format := c.DefaultQuery("format", "csv")
	payload, contentType, err := h.events.Export(c.Request.Context(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=calendar-events."+format)
	c.Data(http.StatusOK, contentType, payload)
}

// Feed godoc
// @Summary iCalendar feed of the active calendar
// @Tags Calendar
// @Produce plain
// @Param academic_year query string false "Academic year (YYYY-YYYY)"
// @Router /calendar/feed.ics [get]
func (h *EventsHandler) Feed(c *gin.Context) {
	feed, err := h.events.Feed(c.Request.Context(), c.Query("academic_year"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}

func eventFilterFromQuery(c *gin.Context) (models.EventFilter, error) {
	filter := models.EventFilter{ActiveOnly: true}
	filter.AcademicYear = c.Query("academic_year")
	filter.AffectsOnly = c.Query("affects_only") == "true"

	if raw := c.Query("from"); raw != "" {
		from, err := parseDateParam(raw)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := parseDateParam(raw)
		if err != nil {
			return filter, err
		}
		filter.To = &to
	}
	if raw := c.Query("event_type"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filter.EventTypes = append(filter.EventTypes, models.EventType(t))
			}
		}
	}
	return filter, nil
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-request-api/internal/models"
	"github.com/noah-isme/campus-request-api/internal/service"
)

type emptyEventStore struct{}

func (emptyEventStore) ListBlocking(ctx context.Context, date time.Time) ([]models.CalendarEvent, error) {
	return nil, nil
}

func (emptyEventStore) ListBlockingInRange(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error) {
	return nil, nil
}

type staticSettings struct{}

func (staticSettings) Get(ctx context.Context) (models.CalendarSettings, error) {
	return models.CalendarSettings{Enabled: true, CurrentAcademicYear: "2025-2026"}, nil
}

func newTestOracle() *service.AvailabilityService {
	return service.NewAvailabilityService(emptyEventStore{}, staticSettings{}, nil, nil, time.Minute, 30, zap.NewNop())
}

func TestAvailabilityCheckRejectsMalformedDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAvailabilityHandler(newTestOracle(), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/calendar/check/29-10-2025", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "date", Value: "29-10-2025"}}

	handler.Check(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailabilityCheckRejectsFarPastDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAvailabilityHandler(newTestOracle(), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	old := time.Now().UTC().AddDate(-3, 0, 0).Format("2006-01-02")
	req, _ := http.NewRequest(http.MethodGet, "/calendar/check/"+old, nil)
	c.Request = req
	c.Params = gin.Params{{Key: "date", Value: old}}

	handler.Check(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailabilityCheckAnswers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAvailabilityHandler(newTestOracle(), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	date := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
	req, _ := http.NewRequest(http.MethodGet, "/calendar/check/"+date, nil)
	c.Request = req
	c.Params = gin.Params{{Key: "date", Value: date}}

	handler.Check(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data service.DateCheck `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, date, envelope.Data.Date)
	assert.True(t, envelope.Data.CalendarEnabled)
}

func TestAvailabilityNextAvailableRejectsBadFrom(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAvailabilityHandler(newTestOracle(), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/calendar/next-available?from=tomorrow", nil)
	c.Request = req

	handler.NextAvailable(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailabilityNextAvailableAnswers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAvailabilityHandler(newTestOracle(), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/calendar/next-available", nil)
	c.Request = req

	handler.NextAvailable(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data service.NextAvailableResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Found)
	assert.NotEmpty(t, envelope.Data.NextDate)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-request-api/internal/service"
	appErrors "github.com/noah-isme/campus-request-api/pkg/errors"
	"github.com/noah-isme/campus-request-api/pkg/response"
)

// RequestHandler exposes student request creation and listing. Creation is
// refused with the availability breakdown when the calendar blocks today.
type RequestHandler struct {
	requests *service.RequestService
}

// NewRequestHandler constructs RequestHandler.
func NewRequestHandler(requests *service.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

// Create godoc
// @Summary Submit a student request
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body service.CreateRequestInput true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	var input service.CreateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	request, blocked, err := h.requests.Create(c.Request.Context(), claims.UserID, input)
	if err != nil {
		if blocked != nil {
			response.ErrorWithData(c, err, blocked)
			return
		}
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// ListMine godoc
// @Summary List the caller's requests
// @Tags Requests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	requests, err := h.requests.ListByStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

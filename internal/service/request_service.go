package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-request-api/internal/models"
	appErrors "github.com/noah-isme/campus-request-api/pkg/errors"
)

type requestStore interface {
	Create(ctx context.Context, request *models.StudentRequest) error
	ListByStudent(ctx context.Context, studentID string) ([]models.StudentRequest, error)
}

type availabilityOracle interface {
	CheckDate(ctx context.Context, date time.Time) *DateCheck
	NextAvailable(ctx context.Context, from time.Time) *NextAvailableResult
}

// CreateRequestInput is the payload for a new student request.
type CreateRequestInput struct {
	Department string `json:"department" validate:"required,max=120"`
	Subject    string `json:"subject" validate:"required,max=200"`
	Body       string `json:"body" validate:"required"`
}

// RequestBlockedError explains a creation refusal and suggests the next
// open date.
type RequestBlockedError struct {
	Check         *DateCheck `json:"check"`
	NextAvailable string     `json:"next_available_date,omitempty"`
}

// RequestService creates and lists student requests. Creation asks the
// availability oracle whether today is open before any write.
type RequestService struct {
	requests requestStore
	oracle   availabilityOracle
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewRequestService constructs the request service.
func NewRequestService(requests requestStore, oracle availabilityOracle, logger *zap.Logger) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		requests: requests,
		oracle:   oracle,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// Create validates the payload, consults the oracle for today and persists
// the request. A closed date yields a conflict carrying the check breakdown
// and the next open date.
func (s *RequestService) Create(ctx context.Context, studentID string, input CreateRequestInput) (*models.StudentRequest, *RequestBlockedError, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	today := s.now().UTC()
	check := s.oracle.CheckDate(ctx, today)
	if !check.CanCreateRequests {
		blocked := &RequestBlockedError{Check: check}
		if next := s.oracle.NextAvailable(ctx, today); next.Found {
			blocked.NextAvailable = next.NextDate
		}
		return nil, blocked, appErrors.Clone(appErrors.ErrConflict, "request creation is closed today")
	}

	request := &models.StudentRequest{
		StudentID:  studentID,
		Department: input.Department,
		Subject:    input.Subject,
		Body:       input.Body,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to save request")
	}
	s.logger.Info("student request created",
		zap.String("request_id", request.ID),
		zap.String("student_id", studentID))
	return request, nil, nil
}

// ListByStudent returns the student's own requests, newest first.
func (s *RequestService) ListByStudent(ctx context.Context, studentID string) ([]models.StudentRequest, error) {
	requests, err := s.requests.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return requests, nil
}

package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v3"
	"github.com/pablofelipe01/rodapolo-sub000/entity"
	"github.com/pablofelipe01/rodapolo-sub000/reservation"
)

const headerKeyCorrelationID = "Correlation-ID"

type Reservations interface {
	BookChildren(ctx context.Context, classID string, childIDs []string) ([]reservation.Result, error)
	Cancel(ctx context.Context, bookingID, reason string) (reservation.CancelResult, error)
	RecordAttendance(ctx context.Context, bookingID string, status entity.BookingStatus) (entity.Booking, error)
	AvailableTickets(ctx context.Context, guardianID string) (int, error)
}

type ClassRepo interface {
	Add(ctx context.Context, class entity.SchedClass) error
	Get(ctx context.Context, classID string) (entity.SchedClass, error)
	SetStatus(ctx context.Context, classID string, status entity.ClassStatus) error
	SetCapacity(ctx context.Context, classID string, capacity int) error
}

type ChildRepo interface {
	Add(ctx context.Context, child entity.Child) error
	Deactivate(ctx context.Context, childID string) error
}

type BookingRepo interface {
	ListByClass(ctx context.Context, classID string) ([]entity.Booking, error)
}

type Publisher interface {
	Publish(ctx context.Context, event any) error
}

type handler struct {
	reservations  Reservations
	classes       ClassRepo
	children      ChildRepo
	bookings      BookingRepo
	publisher     Publisher
	webhookSecret string
}

func correlationIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		correlationID := req.Header.Get(headerKeyCorrelationID)
		if correlationID == "" {
			correlationID = "gen_" + shortuuid.New()
		}

		ctx := log.ContextWithCorrelationID(req.Context(), correlationID)
		c.SetRequest(req.WithContext(ctx))
		c.Response().Header().Set(headerKeyCorrelationID, correlationID)

		return next(c)
	}
}

// bind decodes and validates a request body.
func bind(c echo.Context, request any) error {
	if err := c.Bind(request); err != nil {
		return &echo.HTTPError{
			Code:     http.StatusBadRequest,
			Message:  "failed to parse request",
			Internal: fmt.Errorf("failed to bind request: %w", err),
		}
	}

	if err := c.Validate(request); err != nil {
		return &echo.HTTPError{
			Code:     http.StatusUnprocessableEntity,
			Message:  err.Error(),
			Internal: err,
		}
	}

	return nil
}

// errorResponse maps domain errors to HTTP errors.
func errorResponse(err error, action string) error {
	code := http.StatusInternalServerError
	message := http.StatusText(http.StatusInternalServerError)

	var cerr *reservation.CompensationError
	switch {
	case errors.As(err, &cerr):
		message = "reservation needs reconciliation"
	case errors.Is(err, entity.ErrClassNotFound),
		errors.Is(err, entity.ErrChildNotFound),
		errors.Is(err, entity.ErrBookingNotFound):
		code = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, entity.ErrCapacityLocked),
		errors.Is(err, entity.ErrBookingNotConfirmed):
		code = http.StatusConflict
		message = err.Error()
	case errors.Is(err, reservation.ErrInvalidAttendance):
		code = http.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, reservation.ErrBatchFailed):
		code = http.StatusServiceUnavailable
		message = reservation.ErrBatchFailed.Error()
	}

	return &echo.HTTPError{
		Code:     code,
		Message:  message,
		Internal: fmt.Errorf("%s: %w", action, err),
	}
}

package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pablofelipe01/rodapolo-sub000/entity"
)

const dateLayout = "2006-01-02"

type addClassRequest struct {
	ClassID   string `json:"class_id" validate:"omitempty,uuid"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
	Level     string `json:"level" validate:"required,oneof=alpha beta mixed"`
	Capacity  int    `json:"capacity" validate:"required,gt=0"`
}

type addClassResponse struct {
	ClassID string `json:"class_id"`
}

func (h handler) AddClass(c echo.Context) error {
	var request addClassRequest
	if err := bind(c, &request); err != nil {
		return err
	}

	date, err := time.Parse(dateLayout, request.Date)
	if err != nil {
		return &echo.HTTPError{
			Code:     http.StatusUnprocessableEntity,
			Message:  "invalid date",
			Internal: fmt.Errorf("parsing date: %w", err),
		}
	}
	if request.EndTime <= request.StartTime {
		return &echo.HTTPError{
			Code:    http.StatusUnprocessableEntity,
			Message: "end_time must be after start_time",
		}
	}

	classID := request.ClassID
	if classID == "" {
		classID = uuid.NewString()
	}

	class := entity.SchedClass{
		ClassID:   classID,
		Date:      date,
		StartTime: request.StartTime,
		EndTime:   request.EndTime,
		Level:     entity.Level(request.Level),
		Capacity:  request.Capacity,
		Status:    entity.ClassScheduled,
	}
	if err := h.classes.Add(c.Request().Context(), class); err != nil {
		return errorResponse(err, "adding class")
	}

	return c.JSON(http.StatusCreated, addClassResponse{ClassID: classID})
}

func (h handler) GetClass(c echo.Context) error {
	class, err := h.classes.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorResponse(err, "getting class")
	}

	return c.JSON(http.StatusOK, class)
}

type setClassStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled confirmed cancelled completed"`
}

func (h handler) SetClassStatus(c echo.Context) error {
	var request setClassStatusRequest
	if err := bind(c, &request); err != nil {
		return err
	}

	err := h.classes.SetStatus(c.Request().Context(), c.Param("id"), entity.ClassStatus(request.Status))
	if err != nil {
		return errorResponse(err, "setting class status")
	}

	return c.NoContent(http.StatusNoContent)
}

type setClassCapacityRequest struct {
	Capacity int `json:"capacity" validate:"required,gt=0"`
}

func (h handler) SetClassCapacity(c echo.Context) error {
	var request setClassCapacityRequest
	if err := bind(c, &request); err != nil {
		return err
	}

	if err := h.classes.SetCapacity(c.Request().Context(), c.Param("id"), request.Capacity); err != nil {
		return errorResponse(err, "setting class capacity")
	}

	return c.NoContent(http.StatusNoContent)
}

func (h handler) ListClassBookings(c echo.Context) error {
	ctx := c.Request().Context()
	classID := c.Param("id")

	if _, err := h.classes.Get(ctx, classID); err != nil {
		return errorResponse(err, "getting class")
	}

	bookings, err := h.bookings.ListByClass(ctx, classID)
	if err != nil {
		return errorResponse(err, "listing bookings")
	}

	return c.JSON(http.StatusOK, bookings)
}

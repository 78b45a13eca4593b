package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pablofelipe01/rodapolo-sub000/entity"
	"github.com/pablofelipe01/rodapolo-sub000/reservation"
)

type bookChildrenRequest struct {
	ChildIDs []string `json:"child_ids" validate:"required,min=1,max=20,dive,required"`
}

type bookChildrenResponse struct {
	Results []reservation.Result `json:"results"`
}

// BookChildren answers 200 even when some children could not be booked; the
// per-child results say which.
func (h handler) BookChildren(c echo.Context) error {
	var request bookChildrenRequest
	if err := bind(c, &request); err != nil {
		return err
	}

	results, err := h.reservations.BookChildren(c.Request().Context(), c.Param("id"), request.ChildIDs)
	if err != nil {
		return errorResponse(err, "booking children")
	}

	return c.JSON(http.StatusOK, bookChildrenResponse{Results: results})
}

type cancelBookingRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

func (h handler) CancelBooking(c echo.Context) error {
	var request cancelBookingRequest
	if err := bind(c, &request); err != nil {
		return err
	}

	res, err := h.reservations.Cancel(c.Request().Context(), c.Param("id"), request.Reason)
	if err != nil {
		return errorResponse(err, "cancelling booking")
	}

	if res.Status == reservation.CancelNotFound {
		return c.JSON(http.StatusNotFound, res)
	}

	return c.JSON(http.StatusOK, res)
}

type recordAttendanceRequest struct {
	Status string `json:"status" validate:"required,oneof=attended no_show"`
}

func (h handler) RecordAttendance(c echo.Context) error {
	var request recordAttendanceRequest
	if err := bind(c, &request); err != nil {
		return err
	}

	b, err := h.reservations.RecordAttendance(c.Request().Context(), c.Param("id"), entity.BookingStatus(request.Status))
	if err != nil {
		return errorResponse(err, "recording attendance")
	}

	return c.JSON(http.StatusOK, b)
}

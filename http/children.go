package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pablofelipe01/rodapolo-sub000/entity"
)

type addChildRequest struct {
	Name     string  `json:"name" validate:"required,max=255"`
	Level    string  `json:"level" validate:"required,oneof=alpha beta"`
	Handicap float64 `json:"handicap" validate:"gte=-2,lte=10"`
}

type addChildResponse struct {
	ChildID string `json:"child_id"`
}

func (h handler) AddChild(c echo.Context) error {
	var request addChildRequest
	if err := bind(c, &request); err != nil {
		return err
	}

	child := entity.Child{
		ChildID:    uuid.NewString(),
		GuardianID: c.Param("id"),
		Name:       request.Name,
		Level:      entity.Level(request.Level),
		Active:     true,
		Handicap:   request.Handicap,
	}
	if err := h.children.Add(c.Request().Context(), child); err != nil {
		return errorResponse(err, "adding child")
	}

	return c.JSON(http.StatusCreated, addChildResponse{ChildID: child.ChildID})
}

func (h handler) DeactivateChild(c echo.Context) error {
	if err := h.children.Deactivate(c.Request().Context(), c.Param("id")); err != nil {
		return errorResponse(err, "deactivating child")
	}

	return c.NoContent(http.StatusNoContent)
}

type availableTicketsResponse struct {
	GuardianID string `json:"guardian_id"`
	Available  int    `json:"available"`
}

func (h handler) AvailableTickets(c echo.Context) error {
	guardianID := c.Param("id")

	n, err := h.reservations.AvailableTickets(c.Request().Context(), guardianID)
	if err != nil {
		return errorResponse(err, "counting available tickets")
	}

	return c.JSON(http.StatusOK, availableTicketsResponse{
		GuardianID: guardianID,
		Available:  n,
	})
}

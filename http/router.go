package http

import (
	"net/http"

	commonHTTP "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/labstack/echo/v4"
)

var ErrServerClosed = http.ErrServerClosed

type RouterDeps struct {
	Reservations  Reservations
	Classes       ClassRepo
	Children      ChildRepo
	Bookings      BookingRepo
	Publisher     Publisher
	WebhookSecret string
}

func NewRouter(deps RouterDeps) *echo.Echo {
	server := commonHTTP.NewEcho()
	server.Validator = newValidator()
	server.Use(correlationIDMiddleware)

	server.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	handler := handler{
		reservations:  deps.Reservations,
		classes:       deps.Classes,
		children:      deps.Children,
		bookings:      deps.Bookings,
		publisher:     deps.Publisher,
		webhookSecret: deps.WebhookSecret,
	}

	server.POST("/classes", handler.AddClass)
	server.GET("/classes/:id", handler.GetClass)
	server.PUT("/classes/:id/status", handler.SetClassStatus)
	server.PUT("/classes/:id/capacity", handler.SetClassCapacity)
	server.GET("/classes/:id/bookings", handler.ListClassBookings)
	server.POST("/classes/:id/bookings", handler.BookChildren)

	server.POST("/guardians/:id/children", handler.AddChild)
	server.PUT("/children/:id/deactivate", handler.DeactivateChild)
	server.GET("/guardians/:id/tickets", handler.AvailableTickets)

	server.POST("/bookings/:id/cancel", handler.CancelBooking)
	server.PUT("/bookings/:id/attendance", handler.RecordAttendance)

	server.POST("/webhooks/stripe", handler.StripeWebhook)

	return server
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/pablofelipe01/rodapolo-sub000/http"
	"github.com/pablofelipe01/rodapolo-sub000/message"
	"github.com/pablofelipe01/rodapolo-sub000/postgres"
	"github.com/pablofelipe01/rodapolo-sub000/reservation"
	"github.com/pablofelipe01/rodapolo-sub000/settlement"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	msgRouter  *message.Router
	forwarder  *message.Forwarder
	httpRouter *echo.Echo
	httpAddr   string
}

func New(
	cfg Config,
	logger watermill.LoggerAdapter,
	db *sqlx.DB,
	redisClient *redis.Client,
	receiptIssuer message.ReceiptIssuer,
	spreadsheetAppender message.SpreadsheetAppender,
) (*Service, error) {
	publisher, err := message.NewRedisPublisher(redisClient, logger)
	if err != nil {
		return nil, err
	}

	eventBus, err := message.NewEventBus(publisher, logger)
	if err != nil {
		return nil, err
	}

	ledger := postgres.NewTicketLedger(db, logger)
	classes := postgres.NewClassRepo(db)
	bookings := postgres.NewBookingRepo(db)
	children := postgres.NewChildRepo(db)

	orchestrator := reservation.NewOrchestrator(ledger, classes, bookings, children, eventBus)

	msgRouter, err := message.NewRouter(message.RouterDeps{
		Logger:              logger,
		ReceiptIssuer:       receiptIssuer,
		RedisClient:         redisClient,
		Settler:             settlement.NewHandler(ledger, cfg.TicketValidity),
		SpreadsheetAppender: spreadsheetAppender,
	})
	if err != nil {
		return nil, fmt.Errorf("creating message router: %w", err)
	}

	forwarder, err := message.NewForwarder(db, redisClient, logger)
	if err != nil {
		return nil, fmt.Errorf("creating outbox forwarder: %w", err)
	}

	httpRouter := http.NewRouter(http.RouterDeps{
		Reservations:  orchestrator,
		Classes:       classes,
		Children:      children,
		Bookings:      bookings,
		Publisher:     eventBus,
		WebhookSecret: cfg.WebhookSecret,
	})

	httpAddr := cfg.HTTPAddr
	if httpAddr == "" {
		httpAddr = defaultHTTPAddr
	}

	return &Service{
		msgRouter:  msgRouter,
		forwarder:  forwarder,
		httpRouter: httpRouter,
		httpAddr:   httpAddr,
	}, nil
}

func (s Service) Run(ctx context.Context) error {
	g, runCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.msgRouter.Run(runCtx); err != nil {
			return fmt.Errorf("running messaging router: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		if err := s.forwarder.Run(runCtx); err != nil {
			return fmt.Errorf("running outbox forwarder: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		// Wait for message router
		<-s.msgRouter.Running()

		logrus.WithField("addr", s.httpAddr).Info("Starting HTTP server...")
		err := s.httpRouter.Start(s.httpAddr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("starting http server: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-runCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		logrus.Info("Shutting down HTTP server...")
		if err := s.httpRouter.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("waiting for shutdown: %w", err)
	}
	logrus.Info("Shutdown complete.")

	return nil
}

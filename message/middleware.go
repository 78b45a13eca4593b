package message

import (
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/lithammer/shortuuid/v3"
	"github.com/sirupsen/logrus"
)

func addMiddlewares(router *message.Router, logger watermill.LoggerAdapter) {
	router.AddMiddleware(correlationIDMiddleware)
	router.AddMiddleware(loggerMiddleware)
	router.AddMiddleware(handlerLogMiddleware)
	router.AddMiddleware(middleware.Retry{
		MaxRetries:      10,
		InitialInterval: time.Millisecond * 100,
		MaxInterval:     time.Second,
		Multiplier:      2,
		Logger:          logger,
	}.Middleware)
}

func correlationIDMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		correlationID := middleware.MessageCorrelationID(msg)
		if correlationID == "" {
			correlationID = "gen_" + shortuuid.New()
		}

		ctx := log.ContextWithCorrelationID(msg.Context(), correlationID)
		msg.SetContext(ctx)

		return next(msg)
	}
}

// loggerMiddleware puts a logger carrying the event name and the booking keys
// found in metadata into the message context.
func loggerMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		fields := logrus.Fields{
			"message_uuid":   msg.UUID,
			"correlation_id": log.CorrelationIDFromContext(msg.Context()),
			"event_name":     msg.Metadata.Get("name"),
		}
		for _, key := range []string{metadataIdempotencyKey, metadataGuardianID, metadataClassID, metadataBookingID} {
			if v := msg.Metadata.Get(key); v != "" {
				fields[key] = v
			}
		}

		msg.SetContext(log.ToContext(msg.Context(), logrus.WithFields(fields)))

		return next(msg)
	}
}

func handlerLogMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		logger := log.FromContext(msg.Context())
		logger.Debug("Handling event")

		msgs, err := next(msg)
		if err != nil {
			logger.WithError(err).Error("Event handler failed, will be retried")
			return msgs, err
		}

		logger.Info("Event handled")
		return msgs, nil
	}
}

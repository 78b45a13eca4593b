package message

import (
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pablofelipe01/rodapolo-sub000/event"
	"github.com/redis/go-redis/v9"
)

func NewRedisPublisher(rdb *redis.Client, logger watermill.LoggerAdapter) (message.Publisher, error) {
	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: rdb,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating publisher: %w", err)
	}

	return log.CorrelationPublisherDecorator{Publisher: publisher}, nil
}

// NewEventBus publishes each event on a topic named after its type.
func NewEventBus(publisher message.Publisher, logger watermill.LoggerAdapter) (*cqrs.EventBus, error) {
	eventBus, err := cqrs.NewEventBusWithConfig(publisher, cqrs.EventBusConfig{
		GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
			return params.EventName, nil
		},
		OnPublish: setEventMetadata,
		Marshaler: marshaler,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating event bus: %w", err)
	}

	return eventBus, nil
}

// Metadata keys copied from event payloads so handlers can log them without
// unmarshalling.
const (
	metadataIdempotencyKey = "idempotency_key"
	metadataGuardianID     = "guardian_id"
	metadataClassID        = "class_id"
	metadataBookingID      = "booking_id"
)

func setEventMetadata(params cqrs.OnEventSendParams) error {
	for key, value := range eventMetadata(params.Event) {
		if value != "" {
			params.Message.Metadata.Set(key, value)
		}
	}
	return nil
}

func eventMetadata(e any) map[string]string {
	switch e := e.(type) {
	case event.PaymentCompleted:
		return map[string]string{
			metadataIdempotencyKey: e.Header.IdempotencyKey,
			metadataGuardianID:     e.GuardianID,
		}
	case event.TicketBatchMaterialized:
		return map[string]string{
			metadataIdempotencyKey: e.Header.IdempotencyKey,
			metadataGuardianID:     e.GuardianID,
		}
	case event.BookingConfirmed:
		return map[string]string{
			metadataIdempotencyKey: e.Header.IdempotencyKey,
			metadataGuardianID:     e.GuardianID,
			metadataClassID:        e.ClassID,
			metadataBookingID:      e.BookingID,
		}
	case event.BookingCancelled:
		return map[string]string{
			metadataIdempotencyKey: e.Header.IdempotencyKey,
			metadataClassID:        e.ClassID,
			metadataBookingID:      e.BookingID,
		}
	case event.ReservationCompensationFailed:
		return map[string]string{
			metadataIdempotencyKey: e.Header.IdempotencyKey,
			metadataClassID:        e.ClassID,
		}
	}
	return nil
}

var marshaler = cqrs.JSONMarshaler{
	GenerateName: cqrs.StructName,
}

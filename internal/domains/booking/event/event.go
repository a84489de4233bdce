// Package event publishes booking lifecycle changes to Kafka.
package event

//go:generate go run go.uber.org/mock/mockgen -source=./event.go -destination=../mocks/event_mock.go -package=mocks

import (
	"context"
	"fmt"
	"hotel/config"
	"hotel/infras/kafka"
	"hotel/infras/otel"
	"hotel/internal/domains/booking/model"
	"hotel/shared/constant"
	"hotel/shared/timezone"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeCreated       Type = "booking.created"
	TypeCancelled     Type = "booking.cancelled"
	TypeStatusUpdated Type = "booking.status_updated"
)

type Event struct {
	Type          Type                `json:"type"`
	BookingID     string              `json:"booking_id"`
	UserID        string              `json:"user_id"`
	RoomID        string              `json:"room_id"`
	HotelID       string              `json:"hotel_id"`
	Status        model.Status        `json:"status"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
	TotalPrice    decimal.Decimal     `json:"total_price"`
	StartDate     time.Time           `json:"start_date"`
	EndDate       time.Time           `json:"end_date"`
	OccurredAt    time.Time           `json:"occurred_at"`
}

// FromModel snapshots a booking as an event of the given type.
func FromModel(eventType Type, booking model.Booking) Event {
	return Event{
		Type:          eventType,
		BookingID:     booking.ID,
		UserID:        booking.UserID,
		RoomID:        booking.RoomID,
		HotelID:       booking.HotelID,
		Status:        booking.Status,
		PaymentStatus: booking.PaymentStatus,
		TotalPrice:    booking.TotalPrice,
		StartDate:     booking.StartDate,
		EndDate:       booking.EndDate,
		OccurredAt:    timezone.Now(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

type kafkaPublisher struct {
	client kafka.Client
	topic  string
	otel   otel.Otel
}

type noopPublisher struct{}

// New returns a Kafka backed publisher, or one that drops events when Kafka
// is disabled or no client could be built.
func New(cfg *config.Config, client kafka.Client, otel otel.Otel) Publisher {
	if !cfg.Kafka.Enable || client == nil {
		log.Info().Msg("booking events disabled")

		return noopPublisher{}
	}

	return &kafkaPublisher{
		client: client,
		topic:  cfg.Kafka.Topic.Booking,
		otel:   otel,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, evt Event) (err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+"."+string(evt.Type))
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	// keyed by booking so every event of a booking lands on one partition
	if err = p.client.SendMessages(ctx, p.topic, kafka.Message{Key: evt.BookingID, Value: evt}); err != nil {
		return fmt.Errorf("failed to publish %s: %w", evt.Type, err)
	}

	return nil
}

func (noopPublisher) Publish(context.Context, Event) error {
	return nil
}

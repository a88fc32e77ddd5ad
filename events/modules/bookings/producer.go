// Package bookings handles Kafka event production for booking confirmations.
package bookings

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/schoolbridge/schedsync/model"
	"github.com/segmentio/kafka-go"
)

// BookingProducer handles sending booking confirmation events to Kafka.
type BookingProducer struct {
	Writer *kafka.Writer
}

// NewBookingProducer initializes a new Kafka writer for booking events.
func NewBookingProducer(brokers []string, topic string) *BookingProducer {
	return &BookingProducer{
		Writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// PublishBookingConfirmed sends the event to the Kafka topic.
func (p *BookingProducer) PublishBookingConfirmed(ctx context.Context, booking model.Booking) error {
	event := BookingConfirmedEvent{
		EventType:     "booking.confirmed",
		EventID:       uuid.New().String(),
		EventTime:     time.Now().UTC(),
		SchemaVersion: "v1",
		Booking:       booking,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	key := booking.Key
	if booking.ExternalBookingID != nil {
		key = strconv.FormatInt(*booking.ExternalBookingID, 10)
	}

	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	})
}

// Close flushes and closes the underlying writer.
func (p *BookingProducer) Close() error {
	return p.Writer.Close()
}

// Package bookings defines types for Kafka event processing of booking
// lifecycle events.
package bookings

import (
	"time"

	"github.com/schoolbridge/schedsync/model"
)

// BookingConfirmedEvent is published after a booking is confirmed against
// the external platform.
type BookingConfirmedEvent struct {
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	SchemaVersion string    `json:"schema_version"`

	Booking model.Booking `json:"booking"`
}

// BookingStatusChangedEvent is an asynchronous status notification from the
// external platform, delivered over the event bus. Events carry no ordering
// guarantee; consumers apply them last-writer-wins by external id.
type BookingStatusChangedEvent struct {
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	SchemaVersion string    `json:"schema_version"`

	ExternalBookingID int64  `json:"external_booking_id"`
	Status            string `json:"status"`
}

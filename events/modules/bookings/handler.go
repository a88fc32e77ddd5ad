// Package bookings handles Kafka event processing for booking status events.
package bookings

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

// StatusApplier defines the interface for applying external status updates
// to local booking records.
type StatusApplier interface {
	ApplyExternalStatus(ctx context.Context, externalBookingID int64, status string) error
}

// HandleBookingStatusChanged processes booking status events from Kafka.
func HandleBookingStatusChanged(ctx context.Context, msg []byte, applier StatusApplier) error {
	var event BookingStatusChangedEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		return fmt.Errorf("failed to unmarshal BookingStatusChangedEvent: %w", err)
	}

	if event.ExternalBookingID == 0 || event.Status == "" {
		return fmt.Errorf("invalid event: missing required fields")
	}

	log.Printf("Processing status %s for external booking %d", event.Status, event.ExternalBookingID)

	if err := applier.ApplyExternalStatus(ctx, event.ExternalBookingID, event.Status); err != nil {
		return fmt.Errorf("failed to apply booking status: %w", err)
	}

	return nil
}

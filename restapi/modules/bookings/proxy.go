package bookings

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/schoolbridge/schedsync/model"
	"github.com/schoolbridge/schedsync/scheduling"
)

// Publisher announces confirmed bookings downstream. Optional; a nil
// publisher disables event production.
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, booking model.Booking) error
}

// Proxy translates local scheduling requests into external platform calls
// and keeps the local booking records linked via external references.
type Proxy struct {
	Store    Store
	Platform scheduling.API
	Events   Publisher
}

// BookingDraft is the caller-supplied slot selection for a new booking.
type BookingDraft struct {
	ExpertStaffKey   string    `json:"expert_staff_key"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	AttendeeName     string    `json:"attendee_name"`
	AttendeeEmail    string    `json:"attendee_email"`
	AttendeeTimeZone string    `json:"attendee_time_zone,omitempty"`
	IdempotencyKey   string    `json:"idempotency_key,omitempty"`
}

// bookableStaff loads a staff member and checks they can be booked against
// the external platform.
func (p *Proxy) bookableStaff(ctx context.Context, staffKey string) (*model.Staff, error) {
	staff, err := p.Store.GetStaff(ctx, staffKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load staff: %w", err)
	}
	if staff == nil {
		return nil, fmt.Errorf("staff %s not found", staffKey)
	}
	if !staff.IsBookable() {
		return nil, fmt.Errorf("%w: staff %s has no external account or event type", model.ErrNotProvisioned, staffKey)
	}
	return staff, nil
}

// ListAvailability returns the expert's bookable slots for a date range,
// passed through unmodified from the external platform. No local state is
// written.
func (p *Proxy) ListAvailability(ctx context.Context, staffKey string, dateFrom, dateTo time.Time) ([]model.Slot, error) {
	staff, err := p.bookableStaff(ctx, staffKey)
	if err != nil {
		return nil, err
	}

	slots, err := p.Platform.GetAvailability(ctx, *staff.ExternalEventTypeID, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("%w: availability query: %v", model.ErrBookingFailed, err)
	}
	return slots, nil
}

// CreateBooking submits a slot selection to the external platform. The local
// record is pre-created pending, then either confirmed together with its
// external reference in one write, or marked failed. No retry happens here;
// callers re-invoke with the same idempotency key, which both deduplicates
// locally and is passed through for the platform to deduplicate on.
func (p *Proxy) CreateBooking(ctx context.Context, draft BookingDraft) (*model.Booking, error) {
	staff, err := p.bookableStaff(ctx, draft.ExpertStaffKey)
	if err != nil {
		return nil, err
	}

	if draft.IdempotencyKey != "" {
		existing, err := p.Store.FindBookingByIdempotencyKey(ctx, draft.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
		if existing != nil {
			return existing, nil
		}
	}

	booking := model.NewBooking(staff.Key, draft.Start, draft.End)
	booking.AttendeeName = draft.AttendeeName
	booking.AttendeeEmail = draft.AttendeeEmail
	booking.AttendeeTimeZone = draft.AttendeeTimeZone
	booking.IdempotencyKey = draft.IdempotencyKey
	if err := p.Store.InsertBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}

	result, err := p.Platform.CreateBooking(ctx, scheduling.BookingRequest{
		EventTypeID:    *staff.ExternalEventTypeID,
		Start:          draft.Start,
		End:            draft.End,
		Name:           draft.AttendeeName,
		Email:          draft.AttendeeEmail,
		TimeZone:       draft.AttendeeTimeZone,
		IdempotencyKey: draft.IdempotencyKey,
	})
	if err != nil {
		if ferr := p.Store.FailBooking(ctx, booking.Key); ferr != nil {
			log.Printf("failed to mark booking %s failed: %v", booking.Key, ferr)
		}
		booking.Status = model.BookingStatusFailed
		return booking, fmt.Errorf("%w: %v", model.ErrBookingFailed, err)
	}

	if err := p.Store.ConfirmBooking(ctx, booking.Key, result.ID); err != nil {
		return nil, fmt.Errorf("booking %d created externally but local confirm failed: %w", result.ID, err)
	}
	booking.ExternalBookingID = &result.ID
	booking.Status = model.BookingStatusConfirmed

	if p.Events != nil {
		if err := p.Events.PublishBookingConfirmed(ctx, *booking); err != nil {
			// Event delivery is best effort; the booking itself stands.
			log.Printf("failed to publish confirmation for booking %s: %v", booking.Key, err)
		}
	}

	return booking, nil
}

// externalStatusMap normalizes the platform's status vocabulary onto the
// local enumeration.
var externalStatusMap = map[string]string{
	"ACCEPTED":  model.BookingStatusConfirmed,
	"PENDING":   model.BookingStatusPending,
	"CANCELLED": model.BookingStatusCancelled,
	"REJECTED":  model.BookingStatusFailed,
}

// NormalizeExternalStatus maps a platform status onto the local enumeration.
// Already-local statuses pass through unchanged.
func NormalizeExternalStatus(status string) (string, bool) {
	if mapped, ok := externalStatusMap[status]; ok {
		return mapped, true
	}
	if model.ValidBookingStatus(status) {
		return status, true
	}
	return "", false
}

// ApplyExternalStatus applies an out-of-band status notification to the
// booking holding the external reference. Notifications carry no ordering
// guarantee; the last writer wins. An unknown external id is a no-op, logged
// but not fatal, since notifications can outlive or precede local records.
func (p *Proxy) ApplyExternalStatus(ctx context.Context, externalBookingID int64, status string) error {
	normalized, ok := NormalizeExternalStatus(status)
	if !ok {
		return fmt.Errorf("unknown booking status %q", status)
	}

	matched, err := p.Store.ApplyStatusByExternalID(ctx, externalBookingID, normalized)
	if err != nil {
		return fmt.Errorf("failed to apply status for external booking %d: %w", externalBookingID, err)
	}
	if !matched {
		log.Printf("status update for unknown external booking %d ignored", externalBookingID)
	}
	return nil
}

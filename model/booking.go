package model

import "time"

// Booking statuses. A booking starts pending, moves to confirmed or failed by
// the creating call, and may later be updated by asynchronous notifications
// from the external platform (last writer wins).
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusFailed    = "failed"
	BookingStatusCancelled = "cancelled"
)

// Booking represents a locally persisted booking backed by the external
// scheduling platform. ExternalBookingID is set only after the platform
// accepted the creation call.
type Booking struct {
	Key               string    `json:"_key,omitempty"`
	ExpertStaffKey    string    `json:"expert_staff_key"`
	AttendeeName      string    `json:"attendee_name"`
	AttendeeEmail     string    `json:"attendee_email"`
	AttendeeTimeZone  string    `json:"attendee_time_zone,omitempty"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	ExternalBookingID *int64    `json:"external_booking_id,omitempty"`
	Status            string    `json:"status"`
	IdempotencyKey    string    `json:"idempotency_key,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewBooking creates a pending booking awaiting the external creation call.
func NewBooking(expertStaffKey string, start, end time.Time) *Booking {
	now := time.Now()
	return &Booking{
		ExpertStaffKey: expertStaffKey,
		Start:          start,
		End:            end,
		Status:         BookingStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Slot is a bookable time window returned by an availability query. Slots are
// a passthrough of the external platform's answer; nothing is persisted.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ValidBookingStatus reports whether s is one of the known local statuses.
func ValidBookingStatus(s string) bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusFailed, BookingStatusCancelled:
		return true
	}
	return false
}

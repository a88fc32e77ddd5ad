package bookings

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/schoolbridge/schedsync/model"
	"github.com/schoolbridge/schedsync/scheduling"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store for proxy tests.
type memStore struct {
	staff    map[string]*model.Staff
	bookings map[string]*model.Booking
	next     int
}

func newMemStore() *memStore {
	return &memStore{
		staff:    make(map[string]*model.Staff),
		bookings: make(map[string]*model.Booking),
	}
}

func (s *memStore) GetStaff(_ context.Context, key string) (*model.Staff, error) {
	if st, ok := s.staff[key]; ok {
		cp := *st
		return &cp, nil
	}
	return nil, nil
}

func (s *memStore) InsertBooking(_ context.Context, booking *model.Booking) error {
	s.next++
	booking.Key = fmt.Sprintf("booking-%d", s.next)
	cp := *booking
	s.bookings[booking.Key] = &cp
	return nil
}

func (s *memStore) ConfirmBooking(_ context.Context, key string, externalID int64) error {
	b := s.bookings[key]
	b.ExternalBookingID = &externalID
	b.Status = model.BookingStatusConfirmed
	return nil
}

func (s *memStore) FailBooking(_ context.Context, key string) error {
	s.bookings[key].Status = model.BookingStatusFailed
	return nil
}

func (s *memStore) FindBookingByIdempotencyKey(_ context.Context, idemKey string) (*model.Booking, error) {
	for _, b := range s.bookings {
		if b.IdempotencyKey == idemKey && b.Status == model.BookingStatusConfirmed {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) ApplyStatusByExternalID(_ context.Context, externalID int64, status string) (bool, error) {
	matched := false
	for _, b := range s.bookings {
		if b.ExternalBookingID != nil && *b.ExternalBookingID == externalID {
			b.Status = status
			matched = true
		}
	}
	return matched, nil
}

// fakePlatform implements the slot and booking calls of scheduling.API.
type fakePlatform struct {
	slots         []model.Slot
	availErr      error
	bookingErr    error
	nextBookingID int64
	bookingCalls  int
	lastRequest   scheduling.BookingRequest
}

func (f *fakePlatform) GetAvailability(_ context.Context, eventTypeID int64, _, _ time.Time) ([]model.Slot, error) {
	if f.availErr != nil {
		return nil, f.availErr
	}
	return f.slots, nil
}

func (f *fakePlatform) CreateBooking(_ context.Context, req scheduling.BookingRequest) (*scheduling.BookingResult, error) {
	f.bookingCalls++
	f.lastRequest = req
	if f.bookingErr != nil {
		return nil, f.bookingErr
	}
	f.nextBookingID++
	return &scheduling.BookingResult{ID: 300 + f.nextBookingID, Status: "ACCEPTED"}, nil
}

func (f *fakePlatform) CreateTeam(context.Context, string, string) (*scheduling.Team, error) {
	return nil, nil
}
func (f *fakePlatform) DeleteTeam(context.Context, int64) error { return nil }
func (f *fakePlatform) FindUserByEmail(context.Context, string) (*scheduling.User, error) {
	return nil, nil
}
func (f *fakePlatform) CreateManagedUser(context.Context, string, string, string) (*scheduling.User, error) {
	return nil, nil
}
func (f *fakePlatform) GetMembership(context.Context, int64, int64) (*scheduling.Membership, error) {
	return nil, nil
}
func (f *fakePlatform) CreateMembership(context.Context, int64, int64, string, bool) (*scheduling.Membership, error) {
	return nil, nil
}
func (f *fakePlatform) UpdateMembership(context.Context, int64, int64, string) error { return nil }

type recordingPublisher struct {
	published []model.Booking
	err       error
}

func (r *recordingPublisher) PublishBookingConfirmed(_ context.Context, b model.Booking) error {
	if r.err != nil {
		return r.err
	}
	r.published = append(r.published, b)
	return nil
}

func newTestProxy() (*Proxy, *memStore, *fakePlatform) {
	store := newMemStore()
	userID := int64(7)
	eventTypeID := int64(9)
	store.staff["staff-1"] = &model.Staff{
		Key:                 "staff-1",
		OrgKey:              "org-1",
		Email:               "jane@school.edu",
		ExternalUserID:      &userID,
		ExternalEventTypeID: &eventTypeID,
	}
	platform := &fakePlatform{}
	proxy := &Proxy{Store: store, Platform: platform}
	return proxy, store, platform
}

func TestListAvailability_Passthrough(t *testing.T) {
	proxy, _, platform := newTestProxy()
	platform.slots = []model.Slot{
		{Start: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC), End: time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)},
	}

	slots, err := proxy.ListAvailability(context.Background(), "staff-1", time.Now(), time.Now().Add(24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, platform.slots, slots)
}

func TestListAvailability_UnlinkedStaffRejected(t *testing.T) {
	proxy, store, _ := newTestProxy()
	store.staff["staff-2"] = &model.Staff{Key: "staff-2", Email: "new@school.edu"}

	_, err := proxy.ListAvailability(context.Background(), "staff-2", time.Now(), time.Now())
	require.ErrorIs(t, err, model.ErrNotProvisioned)
}

func TestCreateBooking_Success(t *testing.T) {
	proxy, store, platform := newTestProxy()
	events := &recordingPublisher{}
	proxy.Events = events

	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	booking, err := proxy.CreateBooking(context.Background(), BookingDraft{
		ExpertStaffKey: "staff-1",
		Start:          start,
		End:            start.Add(30 * time.Minute),
		AttendeeName:   "Parent",
		AttendeeEmail:  "parent@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, model.BookingStatusConfirmed, booking.Status)
	require.NotNil(t, booking.ExternalBookingID)
	require.Equal(t, int64(301), *booking.ExternalBookingID)

	stored := store.bookings[booking.Key]
	require.Equal(t, model.BookingStatusConfirmed, stored.Status)
	require.Equal(t, int64(301), *stored.ExternalBookingID)

	require.Equal(t, int64(9), platform.lastRequest.EventTypeID)
	require.Len(t, events.published, 1)
}

func TestCreateBooking_ExternalFailureMarksFailed(t *testing.T) {
	proxy, store, platform := newTestProxy()
	platform.bookingErr = errors.New("request timed out")

	booking, err := proxy.CreateBooking(context.Background(), BookingDraft{
		ExpertStaffKey: "staff-1",
		Start:          time.Now(),
		End:            time.Now().Add(30 * time.Minute),
	})
	require.ErrorIs(t, err, model.ErrBookingFailed)
	require.Equal(t, model.BookingStatusFailed, booking.Status)
	require.Nil(t, booking.ExternalBookingID)

	stored := store.bookings[booking.Key]
	require.Equal(t, model.BookingStatusFailed, stored.Status)
	require.Nil(t, stored.ExternalBookingID)
}

func TestCreateBooking_IdempotencyKeyDeduplicates(t *testing.T) {
	proxy, _, platform := newTestProxy()

	draft := BookingDraft{
		ExpertStaffKey: "staff-1",
		Start:          time.Now(),
		End:            time.Now().Add(30 * time.Minute),
		IdempotencyKey: "req-1",
	}

	first, err := proxy.CreateBooking(context.Background(), draft)
	require.NoError(t, err)

	second, err := proxy.CreateBooking(context.Background(), draft)
	require.NoError(t, err)
	require.Equal(t, first.Key, second.Key)
	require.Equal(t, 1, platform.bookingCalls)
}

func TestCreateBooking_RetryAfterFailureCreatesAgain(t *testing.T) {
	proxy, _, platform := newTestProxy()
	platform.bookingErr = errors.New("request timed out")

	draft := BookingDraft{
		ExpertStaffKey: "staff-1",
		Start:          time.Now(),
		End:            time.Now().Add(30 * time.Minute),
		IdempotencyKey: "req-1",
	}

	_, err := proxy.CreateBooking(context.Background(), draft)
	require.ErrorIs(t, err, model.ErrBookingFailed)

	// A failed attempt does not satisfy the idempotency check; the retry
	// reaches the platform with the same key for platform-side dedupe.
	platform.bookingErr = nil
	booking, err := proxy.CreateBooking(context.Background(), draft)
	require.NoError(t, err)
	require.Equal(t, model.BookingStatusConfirmed, booking.Status)
	require.Equal(t, 2, platform.bookingCalls)
	require.Equal(t, "req-1", platform.lastRequest.IdempotencyKey)
}

func TestApplyExternalStatus(t *testing.T) {
	tests := []struct {
		name     string
		external string
		want     string
	}{
		{name: "accepted maps to confirmed", external: "ACCEPTED", want: model.BookingStatusConfirmed},
		{name: "cancelled maps to cancelled", external: "CANCELLED", want: model.BookingStatusCancelled},
		{name: "rejected maps to failed", external: "REJECTED", want: model.BookingStatusFailed},
		{name: "local status passes through", external: "cancelled", want: model.BookingStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proxy, store, _ := newTestProxy()
			booking, err := proxy.CreateBooking(context.Background(), BookingDraft{
				ExpertStaffKey: "staff-1",
				Start:          time.Now(),
				End:            time.Now().Add(30 * time.Minute),
			})
			require.NoError(t, err)

			err = proxy.ApplyExternalStatus(context.Background(), *booking.ExternalBookingID, tt.external)
			require.NoError(t, err)
			require.Equal(t, tt.want, store.bookings[booking.Key].Status)
		})
	}
}

func TestApplyExternalStatus_UnknownIDIsNoOp(t *testing.T) {
	proxy, _, _ := newTestProxy()
	err := proxy.ApplyExternalStatus(context.Background(), 9999, "CANCELLED")
	require.NoError(t, err)
}

func TestApplyExternalStatus_UnknownStatusRejected(t *testing.T) {
	proxy, _, _ := newTestProxy()
	err := proxy.ApplyExternalStatus(context.Background(), 1, "WAITLISTED")
	require.Error(t, err)
}

func TestApplyExternalStatus_LastWriterWins(t *testing.T) {
	proxy, store, _ := newTestProxy()
	booking, err := proxy.CreateBooking(context.Background(), BookingDraft{
		ExpertStaffKey: "staff-1",
		Start:          time.Now(),
		End:            time.Now().Add(30 * time.Minute),
	})
	require.NoError(t, err)
	extID := *booking.ExternalBookingID

	// Out-of-order delivery: the cancel lands after a stale accept; the
	// last write is what sticks.
	require.NoError(t, proxy.ApplyExternalStatus(context.Background(), extID, "CANCELLED"))
	require.NoError(t, proxy.ApplyExternalStatus(context.Background(), extID, "ACCEPTED"))
	require.Equal(t, model.BookingStatusConfirmed, store.bookings[booking.Key].Status)
}

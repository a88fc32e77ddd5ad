package bookings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeApplier struct {
	applied map[int64]string
	err     error
}

func (f *fakeApplier) ApplyExternalStatus(_ context.Context, externalBookingID int64, status string) error {
	if f.err != nil {
		return f.err
	}
	if f.applied == nil {
		f.applied = make(map[int64]string)
	}
	f.applied[externalBookingID] = status
	return nil
}

func TestHandleBookingStatusChanged(t *testing.T) {
	applier := &fakeApplier{}
	msg := []byte(`{
		"event_type": "booking.status_changed",
		"event_id": "evt-1",
		"schema_version": "v1",
		"external_booking_id": 314,
		"status": "CANCELLED"
	}`)

	err := HandleBookingStatusChanged(context.Background(), msg, applier)
	require.NoError(t, err)
	require.Equal(t, "CANCELLED", applier.applied[314])
}

func TestHandleBookingStatusChanged_InvalidPayload(t *testing.T) {
	tests := []struct {
		name string
		msg  string
	}{
		{name: "not json", msg: `{{`},
		{name: "missing booking id", msg: `{"status": "CANCELLED"}`},
		{name: "missing status", msg: `{"external_booking_id": 314}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applier := &fakeApplier{}
			err := HandleBookingStatusChanged(context.Background(), []byte(tt.msg), applier)
			require.Error(t, err)
			require.Empty(t, applier.applied)
		})
	}
}

func TestHandleBookingStatusChanged_ApplierErrorPropagates(t *testing.T) {
	applier := &fakeApplier{err: errors.New("database unavailable")}
	msg := []byte(`{"external_booking_id": 314, "status": "CANCELLED"}`)

	err := HandleBookingStatusChanged(context.Background(), msg, applier)
	require.Error(t, err)
}

// Package bookings proxies availability and booking operations to the
// external scheduling platform and keeps the local booking records linked to
// their external references.
package bookings

import (
	"context"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/schoolbridge/schedsync/database"
	"github.com/schoolbridge/schedsync/model"
)

// Store is the local persistence surface of the booking proxy.
type Store interface {
	GetStaff(ctx context.Context, key string) (*model.Staff, error)
	InsertBooking(ctx context.Context, booking *model.Booking) error
	ConfirmBooking(ctx context.Context, key string, externalID int64) error
	FailBooking(ctx context.Context, key string) error
	FindBookingByIdempotencyKey(ctx context.Context, idempotencyKey string) (*model.Booking, error)
	ApplyStatusByExternalID(ctx context.Context, externalID int64, status string) (bool, error)
}

// ArangoStore implements Store on the schedsync database.
type ArangoStore struct {
	DB database.DBConnection
}

// NewArangoStore wraps a database connection.
func NewArangoStore(db database.DBConnection) *ArangoStore {
	return &ArangoStore{DB: db}
}

// GetStaff returns a staff record by key, or nil.
func (s *ArangoStore) GetStaff(ctx context.Context, key string) (*model.Staff, error) {
	query := `FOR st IN staff FILTER st._key == @key LIMIT 1 RETURN st`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"key": key},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return nil, nil
	}

	var staff model.Staff
	if _, err := cursor.ReadDocument(ctx, &staff); err != nil {
		return nil, err
	}
	return &staff, nil
}

// InsertBooking persists a pending booking and fills in its key.
func (s *ArangoStore) InsertBooking(ctx context.Context, booking *model.Booking) error {
	meta, err := s.DB.Collections["booking"].CreateDocument(ctx, booking)
	if err != nil {
		return err
	}
	booking.Key = meta.Key
	return nil
}

// ConfirmBooking records the external reference and the confirmed status in
// one local write.
func (s *ArangoStore) ConfirmBooking(ctx context.Context, key string, externalID int64) error {
	query := `
		FOR b IN booking
		FILTER b._key == @key
		UPDATE b WITH {
			external_booking_id: @externalID,
			status: @status,
			updated_at: @now
		} IN booking
	`
	_, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"key":        key,
			"externalID": externalID,
			"status":     model.BookingStatusConfirmed,
			"now":        time.Now(),
		},
	})
	return err
}

// FailBooking marks a booking failed after an external creation error. No
// external reference is recorded.
func (s *ArangoStore) FailBooking(ctx context.Context, key string) error {
	query := `
		FOR b IN booking
		FILTER b._key == @key
		UPDATE b WITH {status: @status, updated_at: @now} IN booking
	`
	_, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"key":    key,
			"status": model.BookingStatusFailed,
			"now":    time.Now(),
		},
	})
	return err
}

// FindBookingByIdempotencyKey returns a previously confirmed booking created
// under the same idempotency key, or nil.
func (s *ArangoStore) FindBookingByIdempotencyKey(ctx context.Context, idempotencyKey string) (*model.Booking, error) {
	query := `
		FOR b IN booking
		FILTER b.idempotency_key == @idemKey AND b.status == @status
		LIMIT 1
		RETURN b
	`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"idemKey": idempotencyKey,
			"status":  model.BookingStatusConfirmed,
		},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return nil, nil
	}

	var booking model.Booking
	if _, err := cursor.ReadDocument(ctx, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// ApplyStatusByExternalID updates the booking matching an external id, last
// writer wins. Returns false when no booking matches.
func (s *ArangoStore) ApplyStatusByExternalID(ctx context.Context, externalID int64, status string) (bool, error) {
	query := `
		FOR b IN booking
		FILTER b.external_booking_id == @externalID
		UPDATE b WITH {status: @status, updated_at: @now} IN booking
		RETURN NEW._key
	`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"externalID": externalID,
			"status":     status,
			"now":        time.Now(),
		},
	})
	if err != nil {
		return false, err
	}
	defer cursor.Close()

	return cursor.HasMore(), nil
}

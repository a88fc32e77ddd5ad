package bookings

import (
	"context"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/graphql-go/graphql"
	"github.com/schoolbridge/schedsync/database"
	"github.com/schoolbridge/schedsync/model"
)

// GetQueryFields returns the booking queries to be mounted in the root
// schema.
func GetQueryFields(db database.DBConnection) graphql.Fields {
	return graphql.Fields{
		"booking": &graphql.Field{
			Type: BookingType,
			Args: graphql.FieldConfigArgument{
				"externalId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				externalID := p.Args["externalId"].(int)

				ctx := context.Background()
				query := `
					FOR b IN booking
						FILTER b.external_booking_id == @external_id
						LIMIT 1
						RETURN b
				`
				cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
					BindVars: map[string]interface{}{"external_id": externalID},
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
				return booking, nil
			},
		},
		"bookings": &graphql.Field{
			Type: graphql.NewList(BookingType),
			Args: graphql.FieldConfigArgument{
				"status": &graphql.ArgumentConfig{Type: graphql.String},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				ctx := context.Background()
				query := `FOR b IN booking SORT b.created_at DESC RETURN b`
				bindVars := map[string]interface{}{}

				if status, ok := p.Args["status"].(string); ok && status != "" {
					if !model.ValidBookingStatus(status) {
						return []model.Booking{}, nil
					}
					query = `
						FOR b IN booking
							FILTER b.status == @status
							SORT b.created_at DESC
							RETURN b
					`
					bindVars["status"] = status
				}

				cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
					BindVars: bindVars,
				})
				if err != nil {
					return nil, err
				}
				defer cursor.Close()

				bookings := []model.Booking{}
				for cursor.HasMore() {
					var booking model.Booking
					if _, err := cursor.ReadDocument(ctx, &booking); err == nil {
						bookings = append(bookings, booking)
					}
				}
				return bookings, nil
			},
		},
	}
}

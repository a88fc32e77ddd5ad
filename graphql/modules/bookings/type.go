package bookings

import "github.com/graphql-go/graphql"

var BookingType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Booking",
	Fields: graphql.Fields{
		"_key":                &graphql.Field{Type: graphql.String},
		"expert_staff_key":    &graphql.Field{Type: graphql.String},
		"attendee_name":       &graphql.Field{Type: graphql.String},
		"attendee_email":      &graphql.Field{Type: graphql.String},
		"attendee_time_zone":  &graphql.Field{Type: graphql.String},
		"start":               &graphql.Field{Type: graphql.DateTime},
		"end":                 &graphql.Field{Type: graphql.DateTime},
		"external_booking_id": &graphql.Field{Type: graphql.Int},
		"status":              &graphql.Field{Type: graphql.String},
		"created_at":          &graphql.Field{Type: graphql.DateTime},
		"updated_at":          &graphql.Field{Type: graphql.DateTime},
	},
})

// Package orgs defines the GraphQL types and queries for organizations and
// staff.
package orgs

import (
	"github.com/graphql-go/graphql"
)

// OrganizationType exposes an organization including its provisioning state.
var OrganizationType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Organization",
	Fields: graphql.Fields{
		"_key":             &graphql.Field{Type: graphql.String},
		"name":             &graphql.Field{Type: graphql.String},
		"slug":             &graphql.Field{Type: graphql.String},
		"tenant_id":        &graphql.Field{Type: graphql.String},
		"external_team_id": &graphql.Field{Type: graphql.Int},
		"status":           &graphql.Field{Type: graphql.String},
		"created_at":       &graphql.Field{Type: graphql.DateTime},
		"updated_at":       &graphql.Field{Type: graphql.DateTime},
	},
})

// StaffType exposes a staff member and their external identity link.
var StaffType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Staff",
	Fields: graphql.Fields{
		"_key":                   &graphql.Field{Type: graphql.String},
		"org_key":                &graphql.Field{Type: graphql.String},
		"email":                  &graphql.Field{Type: graphql.String},
		"display_name":           &graphql.Field{Type: graphql.String},
		"external_user_id":       &graphql.Field{Type: graphql.Int},
		"external_event_type_id": &graphql.Field{Type: graphql.Int},
		"created_at":             &graphql.Field{Type: graphql.DateTime},
		"updated_at":             &graphql.Field{Type: graphql.DateTime},
	},
})

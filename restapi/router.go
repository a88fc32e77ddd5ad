// Package restapi provides the main router and initialization for REST API endpoints.
package restapi

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"github.com/schoolbridge/schedsync/restapi/modules/bookings"
	"github.com/schoolbridge/schedsync/restapi/modules/orgs"
)

// SetupRoutes configures all REST API routes and the GraphQL endpoint.
func SetupRoutes(app *fiber.App, provisioner *orgs.Provisioner, proxy *bookings.Proxy, schema graphql.Schema) {

	// API Group /api/v1
	api := app.Group("/api/v1")

	// GraphQL Route - Mounted within the api group to inherit path prefixes
	api.Post("/graphql", GraphQLHandler(schema))

	// Organization provisioning and staff onboarding
	api.Post("/organizations", orgs.PostOrganization(provisioner))
	api.Get("/organizations/:slug", orgs.GetOrganization(provisioner.Store))
	api.Post("/organizations/:slug/staff", orgs.PostStaff(provisioner))

	// Booking proxy
	api.Get("/staff/:key/availability", bookings.GetAvailability(proxy))
	api.Post("/bookings", bookings.PostBooking(proxy))

	// Out-of-band status notifications from the scheduling platform
	api.Post("/webhooks/scheduling", bookings.PostStatusWebhook(proxy))

	log.Println("API routes initialized successfully")
}

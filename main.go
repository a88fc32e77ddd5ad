// package main provides the entry point for the schedsync microservice,
// wiring the organization provisioning saga, the booking proxy, the GraphQL
// API and the booking status event processor together.
package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/schoolbridge/schedsync/database"
	"github.com/schoolbridge/schedsync/internal/api"
	"github.com/schoolbridge/schedsync/internal/kafka"
	"github.com/schoolbridge/schedsync/restapi/modules/bookings"
	"github.com/schoolbridge/schedsync/restapi/modules/orgs"
	"github.com/schoolbridge/schedsync/scheduling"
	"github.com/schoolbridge/schedsync/tenant"

	bookingevents "github.com/schoolbridge/schedsync/events/modules/bookings"
)

func main() {
	db := database.InitializeDatabase()

	cfg, err := scheduling.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid scheduling platform config: %v", err)
	}

	platform := scheduling.NewClient(cfg)
	resolver := scheduling.NewResolver(platform, cfg.DefaultAdminEmail)
	memberships := scheduling.NewReconciler(platform)

	provisioner := &orgs.Provisioner{
		Store:       orgs.NewArangoStore(db),
		Tenants:     tenant.NewClientFromEnv(),
		Platform:    platform,
		Resolver:    resolver,
		Memberships: memberships,
	}

	proxy := &bookings.Proxy{
		Store:    bookings.NewArangoStore(db),
		Platform: platform,
	}

	// The confirmation producer and the status consumer are only wired when
	// a broker list is configured.
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		topic := database.GetEnvDefault("BOOKING_STATUS_TOPIC", "booking-status-events")
		producer := bookingevents.NewBookingProducer(strings.Split(brokers, ","), topic)
		defer producer.Close()
		proxy.Events = producer

		if err := kafka.RunEventProcessor(context.Background(), proxy); err != nil {
			log.Printf("WARNING: booking status event processor not started: %v", err)
		}
	} else {
		log.Println("KAFKA_BROKERS not set, booking status events disabled")
	}

	app := api.NewFiberApp(db, provisioner, proxy)

	port := database.GetEnvDefault("MS_PORT", "3000")
	log.Printf("Starting server on port %s", port)
	log.Printf("GraphQL endpoint available at /api/v1/graphql")
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

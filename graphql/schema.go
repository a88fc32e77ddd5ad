package graphql

import (
	"github.com/graphql-go/graphql"
	"github.com/schoolbridge/schedsync/database"
	gqlbookings "github.com/schoolbridge/schedsync/graphql/modules/bookings"
	gqlorgs "github.com/schoolbridge/schedsync/graphql/modules/orgs"
)

var db database.DBConnection

// InitDB stores the database connection used by the query resolvers.
func InitDB(dbconn database.DBConnection) {
	db = dbconn
}

// CreateSchema assembles the root query from the per-module field sets.
func CreateSchema() (graphql.Schema, error) {
	fields := graphql.Fields{}

	for name, field := range gqlorgs.GetQueryFields(db) {
		fields[name] = field
	}
	for name, field := range gqlbookings.GetQueryFields(db) {
		fields[name] = field
	}

	rootQuery := graphql.ObjectConfig{Name: "RootQuery", Fields: fields}
	schemaConfig := graphql.SchemaConfig{Query: graphql.NewObject(rootQuery)}
	return graphql.NewSchema(schemaConfig)
}

package orgs

import (
	"context"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/graphql-go/graphql"
	"github.com/schoolbridge/schedsync/database"
	"github.com/schoolbridge/schedsync/model"
	"github.com/schoolbridge/schedsync/util"
)

// GetQueryFields returns the organization queries to be mounted in the root
// schema.
func GetQueryFields(db database.DBConnection) graphql.Fields {
	return graphql.Fields{
		"organization": &graphql.Field{
			Type: OrganizationType,
			Args: graphql.FieldConfigArgument{
				"slug": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				slug := util.NormalizeSlug(p.Args["slug"].(string))

				ctx := context.Background()
				query := `
					FOR o IN organization
						FILTER o.slug == @slug
						LIMIT 1
						RETURN o
				`
				cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
					BindVars: map[string]interface{}{"slug": slug},
				})
				if err != nil {
					return nil, err
				}
				defer cursor.Close()

				if !cursor.HasMore() {
					return nil, nil
				}
				var org model.Organization
				if _, err := cursor.ReadDocument(ctx, &org); err != nil {
					return nil, err
				}
				return org, nil
			},
		},
		"organizations": &graphql.Field{
			Type: graphql.NewList(OrganizationType),
			Args: graphql.FieldConfigArgument{
				"status": &graphql.ArgumentConfig{Type: graphql.String},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				ctx := context.Background()
				query := `FOR o IN organization SORT o.created_at DESC RETURN o`
				bindVars := map[string]interface{}{}

				if status, ok := p.Args["status"].(string); ok && status != "" {
					query = `
						FOR o IN organization
							FILTER o.status == @status
							SORT o.created_at DESC
							RETURN o
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

				orgs := []model.Organization{}
				for cursor.HasMore() {
					var org model.Organization
					if _, err := cursor.ReadDocument(ctx, &org); err == nil {
						orgs = append(orgs, org)
					}
				}
				return orgs, nil
			},
		},
		"staff": &graphql.Field{
			Type: graphql.NewList(StaffType),
			Args: graphql.FieldConfigArgument{
				"orgSlug": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				slug := util.NormalizeSlug(p.Args["orgSlug"].(string))

				ctx := context.Background()
				query := `
					FOR o IN organization
						FILTER o.slug == @slug
						LIMIT 1
						FOR st IN staff
							FILTER st.org_key == o._key
							SORT st.created_at ASC
							RETURN st
				`
				cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
					BindVars: map[string]interface{}{"slug": slug},
				})
				if err != nil {
					return nil, err
				}
				defer cursor.Close()

				staff := []model.Staff{}
				for cursor.HasMore() {
					var member model.Staff
					if _, err := cursor.ReadDocument(ctx, &member); err == nil {
						staff = append(staff, member)
					}
				}
				return staff, nil
			},
		},
	}
}

// Package orgs implements organization provisioning and staff onboarding
// against the external scheduling platform.
package orgs

import (
	"context"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/schoolbridge/schedsync/database"
	"github.com/schoolbridge/schedsync/model"
)

// Store is the local registry surface the saga and handlers need. The Arango
// implementation lives below; tests substitute an in-memory store.
type Store interface {
	FindOrgBySlug(ctx context.Context, slug string) (*model.Organization, error)
	InsertOrg(ctx context.Context, org *model.Organization) error
	SetOrgTenant(ctx context.Context, key, tenantID string) error
	ClearOrgTenant(ctx context.Context, key string) error
	SetOrgExternalTeam(ctx context.Context, key string, teamID int64) error
	ClearOrgExternalTeam(ctx context.Context, key string) error
	FindStaffByEmail(ctx context.Context, orgKey, email string) (*model.Staff, error)
	InsertStaff(ctx context.Context, staff *model.Staff) error
	LinkStaffExternalUser(ctx context.Context, key string, userID int64) error
}

// ArangoStore implements Store on the schedsync database.
type ArangoStore struct {
	DB database.DBConnection
}

// NewArangoStore wraps a database connection.
func NewArangoStore(db database.DBConnection) *ArangoStore {
	return &ArangoStore{DB: db}
}

// FindOrgBySlug returns the organization with the given slug, or nil.
func (s *ArangoStore) FindOrgBySlug(ctx context.Context, slug string) (*model.Organization, error) {
	query := `FOR o IN organization FILTER o.slug == @slug LIMIT 1 RETURN o`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
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
	return &org, nil
}

// InsertOrg persists a new organization and fills in its key. The unique slug
// index is the registry's serialization point for concurrent provisioning.
func (s *ArangoStore) InsertOrg(ctx context.Context, org *model.Organization) error {
	meta, err := s.DB.Collections["organization"].CreateDocument(ctx, org)
	if err != nil {
		return err
	}
	org.Key = meta.Key
	return nil
}

func (s *ArangoStore) updateOrg(ctx context.Context, key string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	query := `FOR o IN organization FILTER o._key == @key UPDATE o WITH @fields IN organization`
	_, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"key": key, "fields": fields},
	})
	return err
}

// SetOrgTenant records the acquired tenant resource on the organization.
func (s *ArangoStore) SetOrgTenant(ctx context.Context, key, tenantID string) error {
	return s.updateOrg(ctx, key, map[string]interface{}{"tenant_id": tenantID})
}

// ClearOrgTenant removes the tenant link after a compensating delete.
func (s *ArangoStore) ClearOrgTenant(ctx context.Context, key string) error {
	return s.updateOrg(ctx, key, map[string]interface{}{"tenant_id": nil})
}

// SetOrgExternalTeam links the external team and marks the org active.
func (s *ArangoStore) SetOrgExternalTeam(ctx context.Context, key string, teamID int64) error {
	return s.updateOrg(ctx, key, map[string]interface{}{
		"external_team_id": teamID,
		"status":           model.OrgStatusActive,
	})
}

// ClearOrgExternalTeam unlinks a rolled-back team and returns the org to the
// pending state.
func (s *ArangoStore) ClearOrgExternalTeam(ctx context.Context, key string) error {
	return s.updateOrg(ctx, key, map[string]interface{}{
		"external_team_id": nil,
		"status":           model.OrgStatusPending,
	})
}

// FindStaffByEmail returns the staff member with the given email in an
// organization, or nil.
func (s *ArangoStore) FindStaffByEmail(ctx context.Context, orgKey, email string) (*model.Staff, error) {
	query := `FOR st IN staff FILTER st.org_key == @orgKey AND st.email == @email LIMIT 1 RETURN st`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"orgKey": orgKey, "email": email},
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

// InsertStaff persists a new staff record and fills in its key.
func (s *ArangoStore) InsertStaff(ctx context.Context, staff *model.Staff) error {
	meta, err := s.DB.Collections["staff"].CreateDocument(ctx, staff)
	if err != nil {
		return err
	}
	staff.Key = meta.Key
	return nil
}

// LinkStaffExternalUser stores the resolved external user id on a staff
// record. Written only after the membership is confirmed downstream.
func (s *ArangoStore) LinkStaffExternalUser(ctx context.Context, key string, userID int64) error {
	query := `
		FOR st IN staff
		FILTER st._key == @key
		UPDATE st WITH {external_user_id: @userID, updated_at: @now} IN staff
	`
	_, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"key": key, "userID": userID, "now": time.Now()},
	})
	return err
}

// Package model defines the data structures for organization and staff management.
package model

import "time"

// Organization statuses track provisioning progress against the external
// scheduling platform. An organization is schedulable only once active.
const (
	OrgStatusPending = "pending"
	OrgStatusActive  = "active"
)

// Organization represents a local organization paired with an external
// scheduling team. ExternalTeamID is nil until provisioning completes.
type Organization struct {
	Key            string    `json:"_key,omitempty"`
	ID             string    `json:"_id,omitempty"`
	Rev            string    `json:"_rev,omitempty"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	TenantID       string    `json:"tenant_id,omitempty"`
	ExternalTeamID *int64    `json:"external_team_id,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewOrganization creates an organization in the pending state, before any
// external provisioning has happened.
func NewOrganization(name, slug string) *Organization {
	now := time.Now()
	return &Organization{
		Name:      name,
		Slug:      slug,
		Status:    OrgStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsProvisioned reports whether the external team exists and is linked.
func (o *Organization) IsProvisioned() bool {
	return o.ExternalTeamID != nil
}

// Package model provides data models for the schedsync system.
package model

import "time"

// Staff represents a staff member of an organization. ExternalUserID is the
// managed account on the external scheduling platform; once set it is never
// reassigned to a different external identity.
type Staff struct {
	Key                 string    `json:"_key,omitempty"`
	OrgKey              string    `json:"org_key"`
	Email               string    `json:"email"`
	DisplayName         string    `json:"display_name,omitempty"`
	ExternalUserID      *int64    `json:"external_user_id,omitempty"`
	ExternalEventTypeID *int64    `json:"external_event_type_id,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// NewStaff creates a staff record not yet linked to an external account.
func NewStaff(orgKey, email, displayName string) *Staff {
	now := time.Now()
	return &Staff{
		OrgKey:      orgKey,
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsLinked reports whether the staff member has an external account.
func (s *Staff) IsLinked() bool {
	return s.ExternalUserID != nil
}

// IsBookable reports whether availability can be queried for this staff
// member: both the external account and its event type must exist.
func (s *Staff) IsBookable() bool {
	return s.ExternalUserID != nil && s.ExternalEventTypeID != nil
}

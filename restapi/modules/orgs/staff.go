package orgs

import (
	"context"
	"fmt"

	"github.com/schoolbridge/schedsync/model"
	"github.com/schoolbridge/schedsync/scheduling"
	"github.com/schoolbridge/schedsync/util"
)

// StaffDraft is the caller-supplied description of a staff member.
type StaffDraft struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	EventTypeID *int64 `json:"event_type_id,omitempty"`
}

// AddStaff onboards a staff member onto a provisioned organization: resolves
// or creates the external identity, ensures a MEMBER membership on the org's
// team, and only then persists the external user id on the staff record.
// Safe to re-invoke after a transient failure; an already-linked staff member
// is reconciled and returned unchanged.
func (p *Provisioner) AddStaff(ctx context.Context, orgSlug string, draft StaffDraft) (*model.Staff, error) {
	email := util.NormalizeEmail(draft.Email)
	if email == "" {
		return nil, fmt.Errorf("staff email is required")
	}

	org, err := p.Store.FindOrgBySlug(ctx, util.NormalizeSlug(orgSlug))
	if err != nil {
		return nil, fmt.Errorf("failed to load organization: %w", err)
	}
	if org == nil {
		return nil, fmt.Errorf("organization %s not found", orgSlug)
	}
	if !org.IsProvisioned() {
		return nil, fmt.Errorf("%w: %s", model.ErrNotProvisioned, org.Slug)
	}
	teamID := *org.ExternalTeamID

	staff, err := p.Store.FindStaffByEmail(ctx, org.Key, email)
	if err != nil {
		return nil, fmt.Errorf("failed to load staff: %w", err)
	}
	if staff == nil {
		staff = model.NewStaff(org.Key, email, draft.DisplayName)
		staff.ExternalEventTypeID = draft.EventTypeID
		if err := p.Store.InsertStaff(ctx, staff); err != nil {
			return nil, fmt.Errorf("failed to insert staff: %w", err)
		}
	}

	userID, err := p.Resolver.ResolveOrCreateUser(ctx, email, draft.DisplayName)
	if err != nil {
		return nil, err
	}

	if err := p.Memberships.EnsureMembership(ctx, userID, teamID, scheduling.RoleMember); err != nil {
		return nil, err
	}

	// Membership confirmed; the identity link is now safe to persist. Once
	// set it is never reassigned to a different external identity.
	if staff.ExternalUserID == nil {
		if err := p.Store.LinkStaffExternalUser(ctx, staff.Key, userID); err != nil {
			return nil, fmt.Errorf("failed to link staff to external user: %w", err)
		}
		staff.ExternalUserID = &userID
	}

	return staff, nil
}

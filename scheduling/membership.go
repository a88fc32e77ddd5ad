package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/schoolbridge/schedsync/model"
)

// Reconciler brings a team membership to a desired state idempotently. The
// source of truth for memberships is the external platform; nothing is cached
// locally.
type Reconciler struct {
	client API
}

// NewReconciler creates a membership reconciler.
func NewReconciler(client API) *Reconciler {
	return &Reconciler{client: client}
}

// EnsureMembership makes sure userID holds role on teamID. Missing
// memberships are created as accepted (no pending-invitation state); an
// existing membership at a different role is moved to the requested role; an
// existing membership at the requested role is a no-op success. Platform
// failures surface as ErrMembershipFailed with no local state change and no
// internal retries.
func (r *Reconciler) EnsureMembership(ctx context.Context, userID, teamID int64, role string) error {
	membership, err := r.client.GetMembership(ctx, teamID, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrMembershipFailed, err)
	}

	if membership == nil {
		_, err := r.client.CreateMembership(ctx, teamID, userID, role, true)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrConflict) {
			return fmt.Errorf("%w: %v", model.ErrMembershipFailed, err)
		}
		// Lost a race with a concurrent reconciler; fall through to the
		// role check against whatever won.
		membership, err = r.client.GetMembership(ctx, teamID, userID)
		if err != nil || membership == nil {
			return fmt.Errorf("%w: membership create conflicted but re-fetch failed: %v", model.ErrMembershipFailed, err)
		}
	}

	if membership.Role == role {
		return nil
	}

	if err := r.client.UpdateMembership(ctx, teamID, membership.ID, role); err != nil {
		return fmt.Errorf("%w: %v", model.ErrMembershipFailed, err)
	}
	return nil
}

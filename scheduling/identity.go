package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/schoolbridge/schedsync/model"
	"github.com/schoolbridge/schedsync/util"
)

// Resolver maps staff emails to external user identities, creating managed
// accounts only when no account exists for the email. The platform's own
// uniqueness constraint is the final arbiter under concurrency: a creation
// that loses the race falls back to lookup-and-reuse.
type Resolver struct {
	client     API
	adminEmail string

	mu      sync.Mutex
	adminID *int64 // cached for the process lifetime; admin identity is immutable
}

// NewResolver creates a resolver bound to the configured default
// administrator email.
func NewResolver(client API, adminEmail string) *Resolver {
	return &Resolver{
		client:     client,
		adminEmail: util.NormalizeEmail(adminEmail),
	}
}

// ResolveOrCreateUser returns the external user id for an email, creating a
// managed account if none exists. Calling it twice with the same email yields
// the same id; a second creation attempt is never made for a resolved email.
func (r *Resolver) ResolveOrCreateUser(ctx context.Context, email, displayName string) (int64, error) {
	email = util.NormalizeEmail(email)
	if email == "" {
		return 0, fmt.Errorf("email is required")
	}

	user, err := r.client.FindUserByEmail(ctx, email)
	if err != nil {
		// Ambiguous lookup state: do not attempt creation, it risks duplicates.
		return 0, fmt.Errorf("%w: %v", model.ErrLookupFailed, err)
	}
	if user != nil {
		return user.ID, nil
	}

	username := util.UsernameFromEmail(email)
	created, err := r.client.CreateManagedUser(ctx, email, username, displayName)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			// A concurrent caller created the account between our lookup and
			// create. Re-lookup and reuse theirs.
			existing, lerr := r.client.FindUserByEmail(ctx, email)
			if lerr != nil {
				return 0, fmt.Errorf("%w: %v", model.ErrLookupFailed, lerr)
			}
			if existing != nil {
				return existing.ID, nil
			}
		}
		return 0, fmt.Errorf("failed to create managed user for %s: %w", email, err)
	}

	return created.ID, nil
}

// DefaultAdminID returns the external id of the default administrator
// account. The account must already exist; absence is a configuration error,
// not a resolvable one. The id is cached once looked up successfully.
func (r *Resolver) DefaultAdminID(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.adminID != nil {
		return *r.adminID, nil
	}

	user, err := r.client.FindUserByEmail(ctx, r.adminEmail)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", model.ErrLookupFailed, err)
	}
	if user == nil {
		return 0, fmt.Errorf("%w: %s", model.ErrDefaultAdminMissing, r.adminEmail)
	}

	r.adminID = &user.ID
	return user.ID, nil
}

package orgs

import (
	"context"
	"fmt"
	"log"

	"github.com/schoolbridge/schedsync/model"
	"github.com/schoolbridge/schedsync/scheduling"
	"github.com/schoolbridge/schedsync/tenant"
	"github.com/schoolbridge/schedsync/util"
)

// OrgDraft is the caller-supplied description of a new organization.
type OrgDraft struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Provisioner runs the organization provisioning saga: local record plus
// tenant resource, external team, and the default administrator's owner
// membership, with compensating rollback when a later step fails.
type Provisioner struct {
	Store       Store
	Tenants     tenant.Provisioner
	Platform    scheduling.API
	Resolver    *scheduling.Resolver
	Memberships *scheduling.Reconciler
}

// sagaStep is one ordered unit of the provisioning flow. When a step fails,
// the compensations of the already-completed steps run in reverse order.
type sagaStep struct {
	name       string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

// runSaga executes steps in order. On failure at step k it runs the
// compensations for steps k-1..1, each exactly once, and reports a distinct
// ErrCompensationFailed when a rollback itself fails.
func runSaga(ctx context.Context, steps []sagaStep) error {
	for i, step := range steps {
		err := step.run(ctx)
		if err == nil {
			continue
		}

		for j := i - 1; j >= 0; j-- {
			if steps[j].compensate == nil {
				continue
			}
			if cerr := steps[j].compensate(ctx); cerr != nil {
				log.Printf("compensation of step %q failed, manual remediation needed: %v", steps[j].name, cerr)
				return fmt.Errorf("%w: step %q failed (%v), rollback of %q failed (%v)",
					model.ErrCompensationFailed, step.name, err, steps[j].name, cerr)
			}
		}
		return fmt.Errorf("provisioning step %q failed: %w", step.name, err)
	}
	return nil
}

// ProvisionOrganization creates (or resumes) an organization. Re-invoking
// with the slug of a fully provisioned organization fails fast with
// ErrDuplicateSlug before any external call; a pending row left behind by an
// earlier failed attempt resumes from external team creation.
func (p *Provisioner) ProvisionOrganization(ctx context.Context, draft OrgDraft) (*model.Organization, error) {
	slug := util.NormalizeSlug(draft.Slug)
	if draft.Name == "" || slug == "" {
		return nil, fmt.Errorf("organization name and slug are required")
	}

	existing, err := p.Store.FindOrgBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug uniqueness: %w", err)
	}
	if existing != nil && existing.IsProvisioned() {
		return nil, fmt.Errorf("%w: %s", model.ErrDuplicateSlug, slug)
	}

	org := existing
	resuming := org != nil
	if resuming {
		log.Printf("resuming provisioning for organization %s (slug %s)", org.Key, slug)
	}

	var teamID int64
	tenantAcquired := false

	steps := []sagaStep{
		{
			name: "acquire tenant and insert organization",
			run: func(ctx context.Context) error {
				if resuming && org.TenantID != "" {
					return nil
				}
				tenantID, err := p.Tenants.CreateTenant(ctx, slug)
				if err != nil {
					return err
				}
				tenantAcquired = true

				if org == nil {
					org = model.NewOrganization(draft.Name, slug)
					org.TenantID = tenantID
					if err := p.Store.InsertOrg(ctx, org); err != nil {
						// Nothing committed yet from the saga's point of view:
						// release the tenant inline so step 2 failures never
						// need compensation.
						if derr := p.Tenants.DeleteTenant(ctx, tenantID); derr != nil {
							log.Printf("failed to release tenant %s after insert failure: %v", tenantID, derr)
						}
						return err
					}
					return nil
				}
				org.TenantID = tenantID
				return p.Store.SetOrgTenant(ctx, org.Key, tenantID)
			},
			compensate: func(ctx context.Context) error {
				if !tenantAcquired && org.TenantID == "" {
					return nil
				}
				if err := p.Tenants.DeleteTenant(ctx, org.TenantID); err != nil {
					return err
				}
				tid := org.TenantID
				org.TenantID = ""
				if err := p.Store.ClearOrgTenant(ctx, org.Key); err != nil {
					log.Printf("tenant %s deleted but local clear failed: %v", tid, err)
				}
				return nil
			},
		},
		{
			name: "create external team",
			run: func(ctx context.Context) error {
				team, err := p.Platform.CreateTeam(ctx, org.Name, org.Slug)
				if err != nil {
					return err
				}
				teamID = team.ID
				return nil
			},
			compensate: func(ctx context.Context) error {
				return p.Platform.DeleteTeam(ctx, teamID)
			},
		},
		{
			name: "link external team",
			run: func(ctx context.Context) error {
				if err := p.Store.SetOrgExternalTeam(ctx, org.Key, teamID); err != nil {
					return err
				}
				org.ExternalTeamID = &teamID
				org.Status = model.OrgStatusActive
				return nil
			},
			compensate: func(ctx context.Context) error {
				// The team is being rolled back; the row must not present
				// itself as provisioned or the slug becomes unusable.
				org.ExternalTeamID = nil
				org.Status = model.OrgStatusPending
				return p.Store.ClearOrgExternalTeam(ctx, org.Key)
			},
		},
		{
			name: "grant default administrator ownership",
			run: func(ctx context.Context) error {
				adminID, err := p.Resolver.DefaultAdminID(ctx)
				if err != nil {
					return err
				}
				return p.Memberships.EnsureMembership(ctx, adminID, teamID, scheduling.RoleOwner)
			},
		},
	}

	if err := runSaga(ctx, steps); err != nil {
		return nil, err
	}
	return org, nil
}

package orgs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/schoolbridge/schedsync/model"
	"github.com/schoolbridge/schedsync/scheduling"
)

// memStore is an in-memory Store for saga tests.
type memStore struct {
	orgs  map[string]*model.Organization // by key
	staff map[string]*model.Staff        // by key
	next  int
}

func newMemStore() *memStore {
	return &memStore{
		orgs:  make(map[string]*model.Organization),
		staff: make(map[string]*model.Staff),
	}
}

func (s *memStore) FindOrgBySlug(_ context.Context, slug string) (*model.Organization, error) {
	for _, org := range s.orgs {
		if org.Slug == slug {
			cp := *org
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) InsertOrg(_ context.Context, org *model.Organization) error {
	s.next++
	org.Key = fmt.Sprintf("org-%d", s.next)
	cp := *org
	s.orgs[org.Key] = &cp
	return nil
}

func (s *memStore) SetOrgTenant(_ context.Context, key, tenantID string) error {
	s.orgs[key].TenantID = tenantID
	return nil
}

func (s *memStore) ClearOrgTenant(_ context.Context, key string) error {
	s.orgs[key].TenantID = ""
	return nil
}

func (s *memStore) SetOrgExternalTeam(_ context.Context, key string, teamID int64) error {
	s.orgs[key].ExternalTeamID = &teamID
	s.orgs[key].Status = model.OrgStatusActive
	return nil
}

func (s *memStore) ClearOrgExternalTeam(_ context.Context, key string) error {
	s.orgs[key].ExternalTeamID = nil
	s.orgs[key].Status = model.OrgStatusPending
	return nil
}

func (s *memStore) FindStaffByEmail(_ context.Context, orgKey, email string) (*model.Staff, error) {
	for _, st := range s.staff {
		if st.OrgKey == orgKey && st.Email == email {
			cp := *st
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) InsertStaff(_ context.Context, staff *model.Staff) error {
	s.next++
	staff.Key = fmt.Sprintf("staff-%d", s.next)
	cp := *staff
	s.staff[staff.Key] = &cp
	return nil
}

func (s *memStore) LinkStaffExternalUser(_ context.Context, key string, userID int64) error {
	s.staff[key].ExternalUserID = &userID
	return nil
}

// fakeTenants counts tenant lifecycle calls and can fail on demand.
type fakeTenants struct {
	createCalls int
	deleteCalls int
	deleted     []string
	createErr   error
	deleteErr   error
}

func (f *fakeTenants) CreateTenant(_ context.Context, domain string) (string, error) {
	f.createCalls++
	if f.createErr != nil {
		return "", f.createErr
	}
	return "tenant-" + domain, nil
}

func (f *fakeTenants) DeleteTenant(_ context.Context, tenantID string) error {
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, tenantID)
	return nil
}

// fakePlatform implements scheduling.API for saga and staff tests.
type fakePlatform struct {
	users       map[string]*scheduling.User
	memberships map[[2]int64]*scheduling.Membership

	nextTeamID int64
	nextUserID int64
	nextMemID  int64

	teamCreates   int
	teamDeletes   int
	createTeamErr error
	membershipErr error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		users:       make(map[string]*scheduling.User),
		memberships: make(map[[2]int64]*scheduling.Membership),
		nextTeamID:  41,
		nextUserID:  10,
		nextMemID:   100,
	}
}

func (f *fakePlatform) CreateTeam(_ context.Context, name, slug string) (*scheduling.Team, error) {
	f.teamCreates++
	if f.createTeamErr != nil {
		return nil, f.createTeamErr
	}
	f.nextTeamID++
	return &scheduling.Team{ID: f.nextTeamID, Name: name, Slug: slug}, nil
}

func (f *fakePlatform) DeleteTeam(context.Context, int64) error {
	f.teamDeletes++
	return nil
}

func (f *fakePlatform) FindUserByEmail(_ context.Context, email string) (*scheduling.User, error) {
	return f.users[email], nil
}

func (f *fakePlatform) CreateManagedUser(_ context.Context, email, username, name string) (*scheduling.User, error) {
	if _, exists := f.users[email]; exists {
		return nil, errors.New("user exists")
	}
	f.nextUserID++
	user := &scheduling.User{ID: f.nextUserID, Email: email, Username: username, Name: name}
	f.users[email] = user
	return user, nil
}

func (f *fakePlatform) GetMembership(_ context.Context, teamID, userID int64) (*scheduling.Membership, error) {
	if f.membershipErr != nil {
		return nil, f.membershipErr
	}
	return f.memberships[[2]int64{teamID, userID}], nil
}

func (f *fakePlatform) CreateMembership(_ context.Context, teamID, userID int64, role string, accepted bool) (*scheduling.Membership, error) {
	if f.membershipErr != nil {
		return nil, f.membershipErr
	}
	f.nextMemID++
	m := &scheduling.Membership{ID: f.nextMemID, TeamID: teamID, UserID: userID, Role: role, Accepted: accepted}
	f.memberships[[2]int64{teamID, userID}] = m
	return m, nil
}

func (f *fakePlatform) UpdateMembership(_ context.Context, teamID, membershipID int64, role string) error {
	for _, m := range f.memberships {
		if m.TeamID == teamID && m.ID == membershipID {
			m.Role = role
			return nil
		}
	}
	return errors.New("membership not found")
}

func (f *fakePlatform) GetAvailability(context.Context, int64, time.Time, time.Time) ([]model.Slot, error) {
	return nil, nil
}

func (f *fakePlatform) CreateBooking(context.Context, scheduling.BookingRequest) (*scheduling.BookingResult, error) {
	return nil, nil
}

// newTestProvisioner wires a saga over the fakes with the default admin
// account pre-provisioned, mirroring its out-of-band lifecycle.
func newTestProvisioner() (*Provisioner, *memStore, *fakeTenants, *fakePlatform) {
	store := newMemStore()
	tenants := &fakeTenants{}
	platform := newFakePlatform()
	platform.users["admin@school.edu"] = &scheduling.User{ID: 1, Email: "admin@school.edu"}

	p := &Provisioner{
		Store:       store,
		Tenants:     tenants,
		Platform:    platform,
		Resolver:    scheduling.NewResolver(platform, "admin@school.edu"),
		Memberships: scheduling.NewReconciler(platform),
	}
	return p, store, tenants, platform
}

package scheduling

import (
	"context"
	"time"

	"github.com/schoolbridge/schedsync/model"
)

// fakeAPI is an in-memory stand-in for the external platform used by the
// resolver and reconciler tests. Err fields force call failures; counters
// record call volume.
type fakeAPI struct {
	users       map[string]*User
	memberships map[[2]int64]*Membership // (teamID, userID) -> membership

	nextUserID       int64
	nextMembershipID int64

	findErr   error
	createErr error
	getErr    error
	addErr    error
	updateErr error

	// getMisses makes the first N GetMembership calls report no membership,
	// simulating a concurrent creation between get and create.
	getMisses int

	findCalls   int
	createCalls int
	addCalls    int
	updateCalls int

	// createConflicts makes CreateManagedUser fail with a conflict after
	// planting the user, simulating a concurrent winner.
	createConflicts bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		users:            make(map[string]*User),
		memberships:      make(map[[2]int64]*Membership),
		nextUserID:       100,
		nextMembershipID: 500,
	}
}

func (f *fakeAPI) FindUserByEmail(_ context.Context, email string) (*User, error) {
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.users[email], nil
}

func (f *fakeAPI) CreateManagedUser(_ context.Context, email, username, name string) (*User, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createConflicts {
		f.nextUserID++
		f.users[email] = &User{ID: f.nextUserID, Email: email, Username: username, Name: name}
		return nil, &apiError{StatusCode: 409, Body: "user exists"}
	}
	if _, exists := f.users[email]; exists {
		return nil, &apiError{StatusCode: 409, Body: "user exists"}
	}
	f.nextUserID++
	user := &User{ID: f.nextUserID, Email: email, Username: username, Name: name}
	f.users[email] = user
	return user, nil
}

func (f *fakeAPI) GetMembership(_ context.Context, teamID, userID int64) (*Membership, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.getMisses > 0 {
		f.getMisses--
		return nil, nil
	}
	return f.memberships[[2]int64{teamID, userID}], nil
}

func (f *fakeAPI) CreateMembership(_ context.Context, teamID, userID int64, role string, accepted bool) (*Membership, error) {
	f.addCalls++
	if f.addErr != nil {
		return nil, f.addErr
	}
	key := [2]int64{teamID, userID}
	if _, exists := f.memberships[key]; exists {
		return nil, &apiError{StatusCode: 409, Body: "membership exists"}
	}
	f.nextMembershipID++
	m := &Membership{ID: f.nextMembershipID, TeamID: teamID, UserID: userID, Role: role, Accepted: accepted}
	f.memberships[key] = m
	return m, nil
}

func (f *fakeAPI) UpdateMembership(_ context.Context, teamID, membershipID int64, role string) error {
	f.updateCalls++
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, m := range f.memberships {
		if m.TeamID == teamID && m.ID == membershipID {
			m.Role = role
			return nil
		}
	}
	return &apiError{StatusCode: 404, Body: "membership not found"}
}

func (f *fakeAPI) CreateTeam(context.Context, string, string) (*Team, error) {
	return nil, nil
}

func (f *fakeAPI) DeleteTeam(context.Context, int64) error {
	return nil
}

func (f *fakeAPI) GetAvailability(context.Context, int64, time.Time, time.Time) ([]model.Slot, error) {
	return nil, nil
}

func (f *fakeAPI) CreateBooking(context.Context, BookingRequest) (*BookingResult, error) {
	return nil, nil
}

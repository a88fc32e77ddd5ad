// Package scheduling implements the client for the external scheduling
// platform and the identity/membership orchestration built on top of it.
package scheduling

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/schoolbridge/schedsync/model"
)

// Team roles on the external platform.
const (
	RoleOwner  = "OWNER"
	RoleMember = "MEMBER"
)

// ErrConflict is returned when the platform rejects a create call because an
// equivalent resource already exists. Callers re-lookup and reuse.
var ErrConflict = errors.New("resource already exists on external platform")

// User is an external platform account.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}

// Team is the external platform's grouping construct, one per organization.
type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Membership links a user to a team at a role.
type Membership struct {
	ID       int64  `json:"id"`
	TeamID   int64  `json:"teamId"`
	UserID   int64  `json:"userId"`
	Role     string `json:"role"`
	Accepted bool   `json:"accepted"`
}

// BookingRequest is the payload submitted to create a booking.
type BookingRequest struct {
	EventTypeID    int64     `json:"eventTypeId"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	TimeZone       string    `json:"timeZone,omitempty"`
	IdempotencyKey string    `json:"-"`
}

// BookingResult is the platform's answer to a booking creation.
type BookingResult struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// API is the narrow capability the orchestration code consumes. The HTTP
// client below implements it; tests substitute fakes.
type API interface {
	CreateTeam(ctx context.Context, name, slug string) (*Team, error)
	DeleteTeam(ctx context.Context, teamID int64) error
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	CreateManagedUser(ctx context.Context, email, username, name string) (*User, error)
	GetMembership(ctx context.Context, teamID, userID int64) (*Membership, error)
	CreateMembership(ctx context.Context, teamID, userID int64, role string, accepted bool) (*Membership, error)
	UpdateMembership(ctx context.Context, teamID, membershipID int64, role string) error
	GetAvailability(ctx context.Context, eventTypeID int64, dateFrom, dateTo time.Time) ([]model.Slot, error)
	CreateBooking(ctx context.Context, req BookingRequest) (*BookingResult, error)
}

// Client is the HTTP implementation of API. All calls carry the single static
// platform credential; there is no per-user auth.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a platform client from configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// apiError reports a non-2xx platform response.
type apiError struct {
	StatusCode int
	Body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("scheduling platform returned %d: %s", e.StatusCode, e.Body)
}

// Unwrap lets errors.Is(err, ErrConflict) recognize duplicate-resource
// rejections regardless of the call that produced them.
func (e *apiError) Unwrap() error {
	if e.StatusCode == http.StatusConflict {
		return ErrConflict
	}
	return nil
}

// doJSON performs an authenticated request and decodes the response into out
// when out is non-nil. 4xx/5xx responses come back as *apiError.
func (c *Client) doJSON(ctx context.Context, method, path string, headers map[string]string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &apiError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to parse platform response: %w", err)
		}
	}
	return nil
}

// CreateTeam creates an external team for an organization.
func (c *Client) CreateTeam(ctx context.Context, name, slug string) (*Team, error) {
	var team Team
	err := c.doJSON(ctx, http.MethodPost, "/teams", nil, map[string]string{
		"name": name,
		"slug": slug,
	}, &team)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// DeleteTeam removes an external team. Used only by compensation paths.
func (c *Client) DeleteTeam(ctx context.Context, teamID int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/teams/%d", teamID), nil, nil, nil)
}

// FindUserByEmail looks up a platform account by exact email match.
// A missing account is a normal (nil, nil) result, not an error.
func (c *Client) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := c.doJSON(ctx, http.MethodGet, "/users?email="+url.QueryEscape(email), nil, nil, &user)
	if err != nil {
		var ae *apiError
		if errors.As(err, &ae) && ae.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// CreateManagedUser creates a platform account on behalf of a staff member.
func (c *Client) CreateManagedUser(ctx context.Context, email, username, name string) (*User, error) {
	var user User
	err := c.doJSON(ctx, http.MethodPost, "/users", nil, map[string]string{
		"email":    email,
		"username": username,
		"name":     name,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetMembership fetches the membership of a user on a team, or (nil, nil)
// when no membership exists.
func (c *Client) GetMembership(ctx context.Context, teamID, userID int64) (*Membership, error) {
	var membership Membership
	path := fmt.Sprintf("/teams/%d/memberships/%d", teamID, userID)
	err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &membership)
	if err != nil {
		var ae *apiError
		if errors.As(err, &ae) && ae.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &membership, nil
}

// CreateMembership adds a user to a team at a role.
func (c *Client) CreateMembership(ctx context.Context, teamID, userID int64, role string, accepted bool) (*Membership, error) {
	var membership Membership
	path := fmt.Sprintf("/teams/%d/memberships", teamID)
	err := c.doJSON(ctx, http.MethodPost, path, nil, map[string]interface{}{
		"userId":   userID,
		"role":     role,
		"accepted": accepted,
	}, &membership)
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// UpdateMembership changes the role of an existing membership.
func (c *Client) UpdateMembership(ctx context.Context, teamID, membershipID int64, role string) error {
	path := fmt.Sprintf("/teams/%d/memberships/%d", teamID, membershipID)
	return c.doJSON(ctx, http.MethodPatch, path, nil, map[string]string{
		"role": role,
	}, nil)
}

// GetAvailability queries bookable slots for an event type in a date range.
func (c *Client) GetAvailability(ctx context.Context, eventTypeID int64, dateFrom, dateTo time.Time) ([]model.Slot, error) {
	var result struct {
		Slots []model.Slot `json:"slots"`
	}
	path := fmt.Sprintf("/availability?eventTypeId=%d&dateFrom=%s&dateTo=%s",
		eventTypeID,
		dateFrom.UTC().Format(time.RFC3339),
		dateTo.UTC().Format(time.RFC3339))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &result); err != nil {
		return nil, err
	}
	return result.Slots, nil
}

// CreateBooking submits a booking. The caller-supplied idempotency key is
// passed as a header so the platform can deduplicate identical retries.
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (*BookingResult, error) {
	var headers map[string]string
	if req.IdempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": req.IdempotencyKey}
	}

	var result BookingResult
	if err := c.doJSON(ctx, http.MethodPost, "/bookings", headers, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

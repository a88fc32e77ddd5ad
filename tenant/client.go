// Package tenant talks to the tenant provisioning collaborator. A tenant is
// the compensable side effect of organization provisioning: created before
// the external team, deleted when a later step fails.
package tenant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/schoolbridge/schedsync/database"
)

// Provisioner is the capability the provisioning saga consumes.
type Provisioner interface {
	CreateTenant(ctx context.Context, domain string) (string, error)
	DeleteTenant(ctx context.Context, tenantID string) error
}

// Client is the HTTP implementation of Provisioner.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClientFromEnv builds a tenant client from TENANT_API_URL / TENANT_API_KEY.
func NewClientFromEnv() *Client {
	return &Client{
		BaseURL: database.GetEnvDefault("TENANT_API_URL", "http://localhost:7070"),
		APIKey:  os.Getenv("TENANT_API_KEY"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateTenant acquires a tenant resource for a domain and returns its id.
func (c *Client) CreateTenant(ctx context.Context, domain string) (string, error) {
	payload, _ := json.Marshal(map[string]string{"domain": domain})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/tenants", bytes.NewBuffer(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("tenant provisioner returned %d: %s", resp.StatusCode, string(raw))
	}

	var result struct {
		TenantID string `json:"tenant_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to parse tenant response: %w", err)
	}
	if result.TenantID == "" {
		return "", fmt.Errorf("tenant provisioner returned empty tenant id")
	}
	return result.TenantID, nil
}

// DeleteTenant releases a tenant resource. Deleting an already-deleted tenant
// is treated as success so compensation stays idempotent.
func (c *Client) DeleteTenant(ctx context.Context, tenantID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.BaseURL+"/tenants/"+tenantID, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("tenant provisioner returned %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}

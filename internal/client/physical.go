package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/cdm-client/internal/http"
	"github.com/fivetwenty-io/cdm-client/pkg/cdm"
)

// PhysicalClient implements cdm.PhysicalClient.
type PhysicalClient struct {
	httpClient *http.Client
}

// NewPhysicalClient creates a new physical host client.
func NewPhysicalClient(httpClient *http.Client) *PhysicalClient {
	return &PhysicalClient{
		httpClient: httpClient,
	}
}

// ListHosts implements cdm.PhysicalClient.ListHosts. An empty hostname lists
// every host.
func (c *PhysicalClient) ListHosts(ctx context.Context, hostname string) ([]cdm.Host, error) {
	var query url.Values
	if hostname != "" {
		query = url.Values{"hostname": []string{hostname}}
	}

	resp, err := c.httpClient.Get(ctx, cdm.APIVersionV1, "/host", query)
	if err != nil {
		return nil, fmt.Errorf("listing hosts: %w", err)
	}

	return parseList[cdm.Host](resp.Body, "host")
}

// AddHost implements cdm.PhysicalClient.AddHost.
func (c *PhysicalClient) AddHost(ctx context.Context, hostname string) (*cdm.ChangeResult, error) {
	if hostname == "" {
		return nil, fmt.Errorf("%w: hostname", cdm.ErrNameRequired)
	}

	existing, err := c.find(ctx, hostname)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return noChange("The host '%s' is already connected to the Rubrik cluster.", hostname), nil
	}

	body := map[string]interface{}{
		"hostname": hostname,
		"hasAgent": true,
	}

	_, err = c.httpClient.Post(ctx, cdm.APIVersionV1, "/host", body)
	if err != nil {
		return nil, fmt.Errorf("adding host: %w", err)
	}

	return changed("The host '%s' was added to the Rubrik cluster.", hostname), nil
}

// DeleteHost implements cdm.PhysicalClient.DeleteHost.
func (c *PhysicalClient) DeleteHost(ctx context.Context, hostname string) (*cdm.ChangeResult, error) {
	if hostname == "" {
		return nil, fmt.Errorf("%w: hostname", cdm.ErrNameRequired)
	}

	existing, err := c.find(ctx, hostname)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		return noChange("The host '%s' is not connected to the Rubrik cluster.", hostname), nil
	}

	_, err = c.httpClient.Delete(ctx, cdm.APIVersionV1, "/host/"+existing.ID)
	if err != nil {
		return nil, fmt.Errorf("deleting host: %w", err)
	}

	return changed("The host '%s' was removed from the Rubrik cluster.", hostname), nil
}

// find returns the host registered under exactly hostname, or nil.
func (c *PhysicalClient) find(ctx context.Context, hostname string) (*cdm.Host, error) {
	hosts, err := c.ListHosts(ctx, hostname)
	if err != nil {
		return nil, err
	}

	for i := range hosts {
		if hosts[i].Hostname == hostname {
			return &hosts[i], nil
		}
	}

	return nil, nil
}

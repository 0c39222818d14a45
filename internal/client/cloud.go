package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/cdm-client/internal/http"
	"github.com/fivetwenty-io/cdm-client/pkg/cdm"
)

// CloudClient implements cdm.CloudClient.
type CloudClient struct {
	httpClient *http.Client
}

// NewCloudClient creates a new cloud client.
func NewCloudClient(httpClient *http.Client) *CloudClient {
	return &CloudClient{
		httpClient: httpClient,
	}
}

// ArchiveLocations implements cdm.CloudClient.ArchiveLocations.
func (c *CloudClient) ArchiveLocations(ctx context.Context) ([]cdm.ArchiveLocation, error) {
	resp, err := c.httpClient.Get(ctx, cdm.APIVersionInternal, "/archive/location", nil)
	if err != nil {
		return nil, fmt.Errorf("listing archive locations: %w", err)
	}

	return parseList[cdm.ArchiveLocation](resp.Body, "archive location")
}

// AWSAccounts implements cdm.CloudClient.AWSAccounts.
func (c *CloudClient) AWSAccounts(ctx context.Context) ([]cdm.AWSAccount, error) {
	resp, err := c.httpClient.Get(ctx, cdm.APIVersionInternal, "/aws/account", nil)
	if err != nil {
		return nil, fmt.Errorf("listing AWS accounts: %w", err)
	}

	return parseList[cdm.AWSAccount](resp.Body, "AWS account")
}

// AddAWSAccount implements cdm.CloudClient.AddAWSAccount.
func (c *CloudClient) AddAWSAccount(ctx context.Context, account *cdm.AWSAccountRequest) (*cdm.ChangeResult, error) {
	if account == nil || account.Name == "" {
		return nil, fmt.Errorf("%w: AWS account", cdm.ErrNameRequired)
	}

	if account.AccessKey == "" || account.SecretKey == "" {
		return nil, fmt.Errorf("%w: the AWS access key and secret key are required", cdm.ErrInvalidParameter)
	}

	accounts, err := c.AWSAccounts(ctx)
	if err != nil {
		return nil, err
	}

	for _, existing := range accounts {
		if existing.Name == account.Name {
			return noChange("The AWS account '%s' is already configured on the Rubrik cluster.", account.Name), nil
		}
	}

	request := *account
	if request.Regions == nil {
		request.Regions = []string{}
	}

	_, err = c.httpClient.Post(ctx, cdm.APIVersionInternal, "/aws/account", &request)
	if err != nil {
		return nil, fmt.Errorf("adding AWS account: %w", err)
	}

	return changed("The AWS account '%s' was added to the Rubrik cluster.", account.Name), nil
}

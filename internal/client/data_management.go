package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/cdm-client/internal/http"
	"github.com/fivetwenty-io/cdm-client/pkg/cdm"
)

// Special SLA domain names and the ids the cluster uses for them.
const (
	slaDoNotProtect = "do not protect"
	slaClear        = "clear"
	slaUnprotected  = "UNPROTECTED"
	slaInherit      = "INHERIT"
)

// DataManagementClient implements cdm.DataManagementClient.
type DataManagementClient struct {
	httpClient *http.Client
}

// NewDataManagementClient creates a new data management client.
func NewDataManagementClient(httpClient *http.Client) *DataManagementClient {
	return &DataManagementClient{
		httpClient: httpClient,
	}
}

// SLADomainID implements cdm.DataManagementClient.SLADomainID. The names
// "do not protect" and "clear" map to the UNPROTECTED and INHERIT pseudo
// domains.
func (c *DataManagementClient) SLADomainID(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: SLA domain", cdm.ErrNameRequired)
	}

	switch strings.ToLower(name) {
	case slaDoNotProtect:
		return slaUnprotected, nil
	case slaClear:
		return slaInherit, nil
	}

	resp, err := c.httpClient.Get(ctx, cdm.APIVersionV1, "/sla_domain", url.Values{"name": []string{name}})
	if err != nil {
		return "", fmt.Errorf("looking up SLA domain: %w", err)
	}

	domains, err := parseList[cdm.SLADomain](resp.Body, "SLA domain")
	if err != nil {
		return "", err
	}

	var matches []cdm.SLADomain

	for _, domain := range domains {
		if domain.Name == name {
			matches = append(matches, domain)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: SLA domain %q", cdm.ErrObjectNotFound, name)
	case 1:
		return matches[0].ID, nil
	default:
		return "", fmt.Errorf("%w: SLA domain %q", cdm.ErrMultipleObjects, name)
	}
}

// VMwareVM implements cdm.DataManagementClient.VMwareVM.
func (c *DataManagementClient) VMwareVM(ctx context.Context, name string) (*cdm.VMwareVM, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: virtual machine", cdm.ErrNameRequired)
	}

	query := url.Values{
		"name":     []string{name},
		"is_relic": []string{"false"},
	}

	resp, err := c.httpClient.Get(ctx, cdm.APIVersionV1, "/vmware/vm", query)
	if err != nil {
		return nil, fmt.Errorf("looking up virtual machine: %w", err)
	}

	vms, err := parseList[cdm.VMwareVM](resp.Body, "virtual machine")
	if err != nil {
		return nil, err
	}

	var matches []cdm.VMwareVM

	for _, vm := range vms {
		if vm.Name == name {
			matches = append(matches, vm)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: virtual machine %q", cdm.ErrObjectNotFound, name)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%w: virtual machine %q", cdm.ErrMultipleObjects, name)
	}
}

// OnDemandSnapshot implements cdm.DataManagementClient.OnDemandSnapshot. An
// empty slaName keeps the SLA domain the VM is protected by.
func (c *DataManagementClient) OnDemandSnapshot(ctx context.Context, vmName, slaName string) (*cdm.AsyncRequest, error) {
	vm, err := c.VMwareVM(ctx, vmName)
	if err != nil {
		return nil, err
	}

	slaID := vm.EffectiveSLADomainID
	if slaName != "" {
		slaID, err = c.SLADomainID(ctx, slaName)
		if err != nil {
			return nil, err
		}
	}

	body := map[string]string{}
	if slaID != "" {
		body["slaId"] = slaID
	}

	resp, err := c.httpClient.Post(ctx, cdm.APIVersionV1, "/vmware/vm/"+vm.ID+"/snapshot", body)
	if err != nil {
		return nil, fmt.Errorf("taking on-demand snapshot: %w", err)
	}

	var request cdm.AsyncRequest

	err = json.Unmarshal(resp.Body, &request)
	if err != nil {
		return nil, fmt.Errorf("parsing snapshot request: %w", err)
	}

	return &request, nil
}

// AssignSLA implements cdm.DataManagementClient.AssignSLA.
func (c *DataManagementClient) AssignSLA(ctx context.Context, vmName, slaName string) (*cdm.ChangeResult, error) {
	slaID, err := c.SLADomainID(ctx, slaName)
	if err != nil {
		return nil, err
	}

	vm, err := c.VMwareVM(ctx, vmName)
	if err != nil {
		return nil, err
	}

	if vm.ConfiguredSLADomainID == slaID {
		return noChange("The vSphere VM '%s' is already assigned to the '%s' SLA Domain.", vmName, slaName), nil
	}

	body := map[string]interface{}{
		"managedIds": []string{vm.ID},
	}

	_, err = c.httpClient.Post(ctx, cdm.APIVersionInternal, "/sla_domain/"+slaID+"/assign", body)
	if err != nil {
		return nil, fmt.Errorf("assigning SLA domain: %w", err)
	}

	return changed("The vSphere VM '%s' was assigned to the '%s' SLA Domain.", vmName, slaName), nil
}

// JobStatus implements cdm.DataManagementClient.JobStatus. href is the
// "self" link of an asynchronous request.
func (c *DataManagementClient) JobStatus(ctx context.Context, href string) (*cdm.AsyncRequest, error) {
	version, endpoint, err := splitHref(href)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, version, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("getting job status: %w", err)
	}

	var request cdm.AsyncRequest

	err = json.Unmarshal(resp.Body, &request)
	if err != nil {
		return nil, fmt.Errorf("parsing job status: %w", err)
	}

	return &request, nil
}

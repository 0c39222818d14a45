package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/cdm-client/pkg/cdm"
)

// noChange is the result of an idempotent operation that found the cluster
// already in the requested state.
func noChange(format string, args ...interface{}) *cdm.ChangeResult {
	return &cdm.ChangeResult{Changed: false, Message: "No change required. " + fmt.Sprintf(format, args...)}
}

func changed(format string, args ...interface{}) *cdm.ChangeResult {
	return &cdm.ChangeResult{Changed: true, Message: fmt.Sprintf(format, args...)}
}

// parseList decodes a paged list envelope.
func parseList[T any](body []byte, what string) ([]T, error) {
	var list cdm.ListResponse[T]

	err := json.Unmarshal(body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing %s list: %w", what, err)
	}

	return list.Data, nil
}

// parseStrings decodes either a bare JSON array of strings or a list envelope
// of strings. Cluster settings endpoints use both shapes across releases.
func parseStrings(body []byte, what string) ([]string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var values []string

		err := json.Unmarshal(trimmed, &values)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", what, err)
		}

		return values, nil
	}

	return parseList[string](body, what)
}

// sameSet reports whether a and b hold the same values, ignoring order.
func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	counts := make(map[string]int, len(a))
	for _, value := range a {
		counts[value]++
	}

	for _, value := range b {
		counts[value]--
		if counts[value] < 0 {
			return false
		}
	}

	return true
}

// splitHref turns an absolute or relative API href
// ("https://node/api/v1/vmware/vm/request/ID") into its version and endpoint.
func splitHref(href string) (cdm.APIVersion, string, error) {
	parsed, err := url.Parse(href)
	if err != nil {
		return "", "", fmt.Errorf("%w: invalid href %q: %w", cdm.ErrInvalidParameter, href, err)
	}

	path := strings.TrimPrefix(parsed.Path, "/")
	path = strings.TrimPrefix(path, "api/")

	version, endpoint, found := strings.Cut(path, "/")
	if !found || endpoint == "" {
		return "", "", fmt.Errorf("%w: invalid href %q", cdm.ErrInvalidParameter, href)
	}

	endpoint = "/" + endpoint
	if parsed.RawQuery != "" {
		endpoint += "?" + parsed.RawQuery
	}

	return cdm.APIVersion(version), endpoint, nil
}

package cdm

import (
	"fmt"
	"slices"
	"strings"
)

// ValidateEndpoint checks an API version and endpoint before a call is made.
// When allowed is empty the SupportedAPIVersions are accepted.
//
// The endpoint must begin with "/" and must not end with "/" unless the slash
// follows "=" (as in "/browse?path=/").
func ValidateEndpoint(version APIVersion, endpoint string, allowed ...APIVersion) error {
	if len(allowed) == 0 {
		allowed = SupportedAPIVersions
	}

	if !slices.Contains(allowed, version) {
		return fmt.Errorf("%w %v", ErrInvalidAPIVersion, allowed)
	}

	if !strings.HasPrefix(endpoint, "/") {
		return ErrEndpointLeadingSlash
	}

	if strings.HasSuffix(endpoint, "/") && !strings.HasSuffix(endpoint, "=/") {
		return ErrEndpointTrailingSlash
	}

	return nil
}

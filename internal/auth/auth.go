package auth

import (
	"context"
	"encoding/base64"

	"github.com/fivetwenty-io/cdm-client/internal/constants"
	"github.com/fivetwenty-io/cdm-client/pkg/cdm"
)

// Authorizer supplies the header set attached to authenticated calls.
type Authorizer interface {
	Headers(ctx context.Context) (map[string]string, error)
}

// Credentials authenticate a session with the cluster. Exactly one of
// APIToken or Username+Password is set; see NewCredentials.
type Credentials struct {
	username  string
	password  string
	apiToken  string
	userAgent string
}

// NewCredentials validates and returns credentials. A non-empty token takes
// precedence and the username and password are dropped.
func NewCredentials(username, password, apiToken string) (*Credentials, error) {
	if apiToken != "" {
		return &Credentials{apiToken: apiToken, userAgent: constants.UserAgent}, nil
	}

	if username == "" && password == "" {
		return nil, cdm.ErrCredentialsRequired
	}

	if username == "" {
		return nil, cdm.ErrUsernameRequired
	}

	if password == "" {
		return nil, cdm.ErrPasswordRequired
	}

	return &Credentials{username: username, password: password, userAgent: constants.UserAgent}, nil
}

// WithUserAgent returns a copy that sends ua as the client identifier.
func (c *Credentials) WithUserAgent(ua string) *Credentials {
	clone := *c
	if ua != "" {
		clone.userAgent = ua
	}

	return &clone
}

// UsesToken reports whether Bearer authentication is used.
func (c *Credentials) UsesToken() bool {
	return c.apiToken != ""
}

// Username returns the Basic authentication user, empty for token sessions.
func (c *Credentials) Username() string {
	return c.username
}

// Headers implements Authorizer.
func (c *Credentials) Headers(ctx context.Context) (map[string]string, error) {
	return c.AuthorizationHeaders(), nil
}

// AuthorizationHeaders builds the header set for authenticated calls.
func (c *Credentials) AuthorizationHeaders() map[string]string {
	headers := BareHeaders()
	headers["User-Agent"] = c.userAgent

	if c.apiToken != "" {
		headers["Authorization"] = "Bearer " + c.apiToken
	} else {
		encoded := base64.StdEncoding.EncodeToString([]byte(c.username + ":" + c.password))
		headers["Authorization"] = "Basic " + encoded
	}

	return headers
}

// BareHeaders returns the headers sent on unauthenticated calls.
func BareHeaders() map[string]string {
	return map[string]string{
		"Content-Type": constants.ContentTypeJSON,
		"Accept":       constants.ContentTypeJSON,
	}
}

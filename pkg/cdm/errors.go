package cdm

import (
	"errors"
	"fmt"
	"strings"
	"syscall"

	"github.com/fivetwenty-io/cdm-client/internal/constants"
)

// ErrInvalidParameter is matched by every error caused by malformed or
// missing caller arguments. Such errors are never retried.
var ErrInvalidParameter = errors.New("invalid parameter")

// Invalid parameter errors. Each wraps ErrInvalidParameter.
var (
	ErrInvalidAPIVersion     = fmt.Errorf("%w: enter a valid API version", ErrInvalidParameter)
	ErrEndpointLeadingSlash  = fmt.Errorf("%w: the API endpoint should begin with '/' (ex: /cluster/me)", ErrInvalidParameter)
	ErrEndpointTrailingSlash = fmt.Errorf("%w: the API endpoint should not end with '/' unless preceded by '=' (ex: /cluster/me or /fileset/snapshot/<id>/browse?path=/)", ErrInvalidParameter)
	ErrNodeIPRequired        = fmt.Errorf("%w: the Rubrik CDM node IP has not been provided", ErrInvalidParameter)
	ErrCredentialsRequired   = fmt.Errorf("%w: the Rubrik CDM username and password or an API token has not been provided", ErrInvalidParameter)
	ErrUsernameRequired      = fmt.Errorf("%w: the Rubrik CDM username or an API token has not been provided", ErrInvalidParameter)
	ErrPasswordRequired      = fmt.Errorf("%w: the Rubrik CDM password or an API token has not been provided", ErrInvalidParameter)
	ErrNodeConfigRequired    = fmt.Errorf("%w: you must provide a valid node configuration", ErrInvalidParameter)
	ErrNameRequired          = fmt.Errorf("%w: a name is required", ErrInvalidParameter)
	ErrInvalidSyslogProtocol = fmt.Errorf("%w: the syslog protocol must be TCP or UDP", ErrInvalidParameter)
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired   = errors.New("config is required")
	ErrNotAuthenticated = errors.New("no credentials configured for an authenticated call")
	ErrObjectNotFound   = errors.New("object not found")
	ErrMultipleObjects  = errors.New("multiple objects match the name")
	ErrMissingRequestID = errors.New("bootstrap response did not include a request id")
)

// APICallError is returned when a call fails at the transport level or the
// cluster answers with a non-2xx status.
type APICallError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APICallError) Error() string {
	var b strings.Builder

	if e.Method != "" {
		b.WriteString(e.Method)
		b.WriteString(" ")
		b.WriteString(e.URL)
		b.WriteString(": ")
	}

	if e.StatusCode != 0 {
		fmt.Fprintf(&b, "status %d: ", e.StatusCode)
	}

	switch {
	case e.Message != "" && e.Err != nil:
		fmt.Fprintf(&b, "%s: %v", e.Message, e.Err)
	case e.Message != "":
		b.WriteString(e.Message)
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		b.WriteString("API call failed")
	}

	return b.String()
}

// Unwrap returns the underlying cause.
func (e *APICallError) Unwrap() error {
	return e.Err
}

// ClusterError is returned when the cluster reports that an operation failed,
// e.g. a bootstrap that ended in FAILURE.
type ClusterError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ClusterError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Operation == "" {
		return msg
	}

	return e.Operation + ": " + msg
}

// Unwrap returns the underlying cause.
func (e *ClusterError) Unwrap() error {
	return e.Err
}

// IsConnectionRefused reports whether err was caused by the node refusing the
// TCP connection, which is what a node still initialising looks like.
func IsConnectionRefused(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	// A status code means the node answered.
	apiErr := &APICallError{}
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		return false
	}

	return strings.Contains(strings.ToLower(err.Error()), constants.ConnectionRefusedMessage)
}

// IsAlreadyBootstrapped reports whether err is the cluster refusing a
// bootstrap because it already ran.
func IsAlreadyBootstrapped(err error) bool {
	if err == nil {
		return false
	}

	return strings.Contains(err.Error(), constants.AlreadyBootstrappedServerMessage)
}

// IsNotFound reports whether err is an HTTP 404 from the cluster.
func IsNotFound(err error) bool {
	apiErr := &APICallError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}

	return errors.Is(err, ErrObjectNotFound)
}

// IsUnauthorized reports whether err is an HTTP 401 from the cluster.
func IsUnauthorized(err error) bool {
	apiErr := &APICallError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401
	}

	return false
}

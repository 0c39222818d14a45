package constants

import "errors"

// CLI configuration errors.
var (
	ErrNoNodeConfigured    = errors.New("no node configured, use --node or 'cdm config set node <address>'")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
	ErrInvalidNodeMapping  = errors.New("invalid node mapping, expected name=ip")
	ErrUnsupportedOutput   = errors.New("unsupported output format")
	ErrPasswordPromptNoTTY = errors.New("admin password required and stdin is not a terminal")
)

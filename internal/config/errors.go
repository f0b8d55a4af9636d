package config

import "errors"

// Validation errors returned by [StructuredConfig.validate].
var (
	// ErrInvalidKeystoreConfigs indicates invalid keystore settings (for
	// example, a negative timeout or an unparsable endpoint).
	ErrInvalidKeystoreConfigs = errors.New("invalid keystore configuration")
	// ErrInvalidLogConfigs indicates an unknown log level.
	ErrInvalidLogConfigs = errors.New("invalid log configuration")
)

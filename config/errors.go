package config

import "errors"

var (
	// ErrConfigUnmarshal is returned when config unmarshalling fails
	ErrConfigUnmarshal = errors.New("failed to unmarshal configuration")
	// ErrConfigFile is returned when the config file exists but cannot be read or parsed
	ErrConfigFile = errors.New("failed to load configuration file")
	// ErrConfigEnv is returned when environment overrides cannot be loaded
	ErrConfigEnv = errors.New("failed to load environment configuration")
	// ErrInvalidStoreBackend is returned for an unknown store backend
	ErrInvalidStoreBackend = errors.New("invalid store backend")
	// ErrMissingPostgresURL is returned when the postgres backend is selected without a URL
	ErrMissingPostgresURL = errors.New("postgres store requires a connection url")
	// ErrInvalidAnalyzerSetting is returned for out of range analyzer settings
	ErrInvalidAnalyzerSetting = errors.New("invalid analyzer setting")
)

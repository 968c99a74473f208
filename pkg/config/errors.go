package config

import "errors"

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the config struct.
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrLoadingEnvFile is returned when a dotenv file exists but cannot be read.
	ErrLoadingEnvFile = errors.New("failed to load env file")
)

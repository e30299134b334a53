package database

import "errors"

// Sentinel errors for database operations.
var (
	// ErrUnsupportedDriver is returned for a driver name with no dialect.
	ErrUnsupportedDriver = errors.New("unsupported database driver")

	// ErrAcquireTimeout is returned when no pooled connection became
	// available within the configured acquire timeout.
	ErrAcquireTimeout = errors.New("timed out acquiring database connection")

	// ErrClosed is returned by Acquire after Close.
	ErrClosed = errors.New("database is closed")
)

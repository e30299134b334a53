// Package config handles loading and validating booking core configuration.
//
// This package manages:
//   - Loading configuration from an optional YAML file
//   - Loading a .env file for deployments that keep credentials there
//   - Overriding with environment variables (DB_HOST, DB_PORT, ...)
//   - Validation of required fields
//
// Security Considerations:
//   - Database and broker passwords should be set via environment variables
//   - The JWT secret has no default and must be at least 32 characters
//
// Usage:
//
//	cfg, err := config.Load(os.Getenv("BOOKING_CONFIG"))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Database.Host)
package config

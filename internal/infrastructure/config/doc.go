// Package config handles loading and validating POS bridge configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (POSBRIDGE_*)
//   - Validation of required fields, collecting every problem at once
//   - Default value handling
//
// Security Considerations:
//   - The shared secret should be set via POSBRIDGE_AUTH_TOKEN or stored
//     as an argon2id hash in auth.token_hash
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Addr())
package config

// Package config provides YAML-based configuration for the Callisto runtime.
//
// Configuration is loaded from a YAML file, filled in with defaults,
// overridden by CALLISTO_* environment variables, and validated, in that
// order:
//
//	cfg, err := config.Load("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Use Default for an in-process setup with no config file.
package config

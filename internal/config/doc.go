// Package config loads and validates the dashboard client configuration
// from a YAML file with ${VAR} environment expansion.
package config

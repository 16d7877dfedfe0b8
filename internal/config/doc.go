// Package config loads and validates ingestor configuration.
//
// Configuration comes from a YAML file with ${VAR} environment expansion.
// Loading is a three-step process: Load (parse), LoadWithDefaults (fill
// optional fields), LoadAndValidate (fail fast on bad required fields).
package config

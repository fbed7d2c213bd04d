// Package config provides configuration management for coforest.
//
// Configuration comes from two places: CLI flags (which populate the flat
// Config struct) and an optional YAML analysis file (.coforest.yaml) that
// describes exclusions and the model variants to fit. Flags win over file
// values for sampler controls.
//
// The package also exposes the XDG directory helpers used to locate the
// run archive database.
package config

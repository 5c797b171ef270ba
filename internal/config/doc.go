// Package config loads, validates, and normalizes phototime configuration.
//
// Configuration is TOML, found at a project-local phototime.toml first,
// then ~/.config/phototime/config.toml, with every value defaulted so the tool runs
// with no config file at all. Path fields are tilde-expanded and made
// absolute during normalization.
package config

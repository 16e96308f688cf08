// Package config handles parsing and validation of the .changes/config.json
// project configuration: package definitions, package manager defaults,
// per-workflow commands, bump types and changelog tags.
package config

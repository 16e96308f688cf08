// Package registry queries package registries over HTTP for the version
// that is already published. It backs the fetch:check built-in command.
package registry

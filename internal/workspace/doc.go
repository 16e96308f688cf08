// Package workspace ties a monorepo root to its release configuration. It
// locates the config and pre-mode files, discovers change files and loads
// package manifests.
package workspace

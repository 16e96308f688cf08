// Package ui renders plain terminal output for the CLI: aligned tables and
// numbered check lists.
package ui

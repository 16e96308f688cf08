// Package apply computes next versions for a release plan and writes them
// into package manifests, along with the dependency specifiers that point
// at other released packages.
package apply

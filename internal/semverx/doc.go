// Package semverx implements npm-style version increments and specifier
// rewriting on top of Masterminds/semver.
package semverx

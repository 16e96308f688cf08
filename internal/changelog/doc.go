// Package changelog renders release notes from change declarations and
// prepends them to each package's CHANGELOG.md.
package changelog

// Package pkgfile loads, edits and serializes package manifests. Each file
// dialect (package.json, Cargo.toml, pubspec.yaml, a bare version file) is
// one Manifest implementation; edits keep the original formatting of the
// untouched parts of the file.
package pkgfile

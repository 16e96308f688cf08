// Package change parses change files: markdown documents whose YAML front
// matter maps package names to bump types and whose body is the summary
// that ends up in changelogs.
package change

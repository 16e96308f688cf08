// Package git wraps the Git CLI calls vercast needs: repository detection,
// the current branch for change file names, and the commit history of
// individual change files for changelog links.
package git

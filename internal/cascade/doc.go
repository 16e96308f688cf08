// Package cascade propagates bumps from packages to the packages that depend
// on them. A dependent that has no bump of its own receives a patch (or
// prerelease) entry, and the process repeats until nothing changes.
package cascade

// Package pre handles the .changes/pre.json file that marks an ongoing
// prerelease train. The file records the prerelease tag and the change
// files already consumed by earlier prerelease versions.
package pre

// Package assemble merges parsed change declarations into a release plan:
// one bump type per package, the most severe one declared, together with
// the declarations that contributed it. It also implements the prerelease
// train diffing used while a pre.json file is present.
package assemble

package apply

import "fmt"

// DisallowedVersionError is returned when a computed version falls in a
// package's errorOnVersionRange.
type DisallowedVersionError struct {
	Package string
	Version string
	Range   string
}

func (e *DisallowedVersionError) Error() string {
	return fmt.Sprintf("%s will be bumped to %s. This satisfies the range %s which the configuration disallows. "+
		"Please adjust your bump to accommodate the range or otherwise adjust the allowed range in `errorOnVersionRange`.",
		e.Package, e.Version, e.Range)
}

// MissingVersionError is returned when a released dependency is referenced
// without a version, e.g. by path only.
type MissingVersionError struct {
	Package    string
	Dependency string
}

func (e *MissingVersionError) Error() string {
	return fmt.Sprintf("%s has a dependency on %s, and %s does not have a version number. "+
		"This cannot be published. Please pin it to a MAJOR.MINOR.PATCH reference.",
		e.Package, e.Dependency, e.Dependency)
}

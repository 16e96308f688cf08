package assemble

import (
	"fmt"
	"strings"
)

// MalformedChangeError reports a change declaration without any releases.
type MalformedChangeError struct {
	Source string
}

func (e *MalformedChangeError) Error() string {
	return fmt.Sprintf("change %s does not declare any package bumps", e.Source)
}

// InvalidBumpTypeError reports a declared bump value outside the allowed set.
type InvalidBumpTypeError struct {
	Package string
	Value   string
	Source  string
	Valid   []string
}

func (e *InvalidBumpTypeError) Error() string {
	return fmt.Sprintf("%s listed in %s has an invalid bump type of %q. Valid options are: %s.",
		e.Package, e.Source, e.Value, strings.Join(e.Valid, ", "))
}

// UnknownPackageError reports a planned package that is not configured.
type UnknownPackageError struct {
	Package string
	Sources []string
}

func (e *UnknownPackageError) Error() string {
	return fmt.Sprintf("package %s is not configured in the workspace but is referenced by: %s",
		e.Package, strings.Join(e.Sources, ", "))
}

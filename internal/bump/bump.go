package bump

import (
	"slices"
	"strings"
)

// Type is a bump severity label such as "minor" or "prerelease".
type Type string

const (
	Major      Type = "major"
	Minor      Type = "minor"
	Patch      Type = "patch"
	Prerelease Type = "prerelease"
	Noop       Type = "noop"

	Premajor Type = "premajor"
	Preminor Type = "preminor"
	Prepatch Type = "prepatch"
)

// Severity returns the rank of t. Unknown and additional types rank as noop.
func Severity(t Type) int {
	switch t {
	case Major, Premajor:
		return 1
	case Minor, Preminor:
		return 2
	case Patch, Prepatch:
		return 3
	case Prerelease:
		return 4
	default:
		return 5
	}
}

// Max returns the more severe of a and b. Ties between types of equal
// severity prefer built-in types, then the lexically smaller name.
func Max(a, b Type) Type {
	sa, sb := Severity(a), Severity(b)
	switch {
	case sa < sb:
		return a
	case sb < sa:
		return b
	case a == b:
		return a
	}
	ba, bb := IsBuiltin(a), IsBuiltin(b)
	if ba != bb {
		if ba {
			return a
		}
		return b
	}
	if a < b {
		return a
	}
	return b
}

// MoreSevere reports whether a is strictly more severe than b.
func MoreSevere(a, b Type) bool {
	return Severity(a) < Severity(b)
}

// IsBuiltin reports whether t is one of the built-in bump types.
func IsBuiltin(t Type) bool {
	switch t {
	case Major, Minor, Patch, Prerelease, Noop, Premajor, Preminor, Prepatch:
		return true
	}
	return false
}

// IsPre reports whether t produces a prerelease version.
func IsPre(t Type) bool {
	return t == Prerelease || (strings.HasPrefix(string(t), "pre") && IsBuiltin(t))
}

// Pre returns the prerelease form of a base bump ("minor" becomes "preminor").
// Types without a prerelease form are returned unchanged.
func Pre(t Type) Type {
	switch t {
	case Major:
		return Premajor
	case Minor:
		return Preminor
	case Patch:
		return Prepatch
	}
	return t
}

// Base strips the prerelease form ("preminor" becomes "minor").
func Base(t Type) Type {
	switch t {
	case Premajor:
		return Major
	case Preminor:
		return Minor
	case Prepatch:
		return Patch
	}
	return t
}

// Allowed returns every value a change file may declare.
func Allowed(additional []string) []string {
	out := []string{string(Major), string(Minor), string(Patch), string(Noop)}
	for _, a := range additional {
		if !slices.Contains(out, a) {
			out = append(out, a)
		}
	}
	return out
}

// Suggestions returns the values offered to users when a declared bump is invalid.
func Suggestions() []string {
	return []string{string(Major), string(Minor), string(Patch)}
}

// Valid reports whether value is a declarable bump given the additional types.
func Valid(value string, additional []string) bool {
	return slices.Contains(Allowed(additional), value)
}

package semverx

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Operator returns the leading range operator of spec ("^", "~" or "="), or
// the empty string.
func Operator(spec string) string {
	if spec != "" && strings.ContainsRune("^~=", rune(spec[0])) {
		return spec[:1]
	}
	return ""
}

// IsRange reports whether spec pins a dependency with a range operator.
func IsRange(spec string) bool {
	return Operator(spec) != ""
}

// Rewrite returns spec pointed at depVersion. The operator is kept and the
// new version is truncated to the component count of the original, so "0.8"
// with depVersion 0.9.0 gives "0.9".
func Rewrite(spec, depVersion string) string {
	op := Operator(spec)
	bare := strings.TrimPrefix(spec, op)
	if i := strings.IndexAny(bare, "-+"); i >= 0 {
		bare = bare[:i]
	}
	components := strings.Count(bare, ".") + 1
	if components >= 3 {
		return op + depVersion
	}

	v, err := semver.NewVersion(depVersion)
	if err != nil {
		return op + depVersion
	}
	if components == 2 {
		return op + strconv.FormatUint(v.Major(), 10) + "." + strconv.FormatUint(v.Minor(), 10)
	}
	return op + strconv.FormatUint(v.Major(), 10)
}

// RewritePreview appends a preview identifier to a plain, full version
// specifier after releasing any prerelease it carries. Ranges and partial
// versions are returned unchanged.
func RewritePreview(spec, preview string) string {
	v, err := semver.StrictNewVersion(spec)
	if err != nil {
		return spec
	}
	next, err := Preview(v.String(), preview)
	if err != nil {
		return spec
	}
	return next
}

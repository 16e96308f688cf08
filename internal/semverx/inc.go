package semverx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/fbkclanna/vercast/internal/bump"
)

// Inc returns current incremented by release. Prerelease-producing types use
// identifier as the first prerelease component when it is not empty.
//
// A prerelease version is released rather than bumped when its base already
// matches the requested release, so 1.3.0-beta.1 with minor gives 1.3.0.
func Inc(current string, release bump.Type, identifier string) (string, error) {
	v, err := semver.StrictNewVersion(current)
	if err != nil {
		return "", fmt.Errorf("invalid version %q: %w", current, err)
	}
	major, minor, patch := v.Major(), v.Minor(), v.Patch()
	var pre []string
	if v.Prerelease() != "" {
		pre = strings.Split(v.Prerelease(), ".")
	}

	switch release {
	case bump.Major:
		if minor != 0 || patch != 0 || len(pre) == 0 {
			major++
		}
		minor, patch, pre = 0, 0, nil
	case bump.Minor:
		if patch != 0 || len(pre) == 0 {
			minor++
		}
		patch, pre = 0, nil
	case bump.Patch:
		if len(pre) == 0 {
			patch++
		}
		pre = nil
	case bump.Premajor:
		major, minor, patch = major+1, 0, 0
		pre = incPre(nil, identifier)
	case bump.Preminor:
		minor, patch = minor+1, 0
		pre = incPre(nil, identifier)
	case bump.Prepatch:
		patch++
		pre = incPre(nil, identifier)
	case bump.Prerelease:
		if len(pre) == 0 {
			patch++
		}
		pre = incPre(pre, identifier)
	default:
		return "", fmt.Errorf("cannot increment %s by %q", current, release)
	}

	out := fmt.Sprintf("%d.%d.%d", major, minor, patch)
	if len(pre) > 0 {
		out += "-" + strings.Join(pre, ".")
	}
	return out, nil
}

// incPre increments the last numeric prerelease component, appending 0 when
// there is none. A different identifier restarts the counter.
func incPre(pre []string, identifier string) []string {
	if len(pre) == 0 {
		if identifier != "" {
			return []string{identifier, "0"}
		}
		return []string{"0"}
	}
	if identifier != "" && pre[0] != identifier {
		return []string{identifier, "0"}
	}
	out := append([]string(nil), pre...)
	for i := len(out) - 1; i >= 0; i-- {
		if n, err := strconv.ParseUint(out[i], 10, 64); err == nil {
			out[i] = strconv.FormatUint(n+1, 10)
			return out
		}
	}
	return append(out, "0")
}

// Preview returns current with its prerelease replaced by preview. A current
// prerelease is first released to its base version.
func Preview(current, preview string) (string, error) {
	v, err := semver.StrictNewVersion(current)
	if err != nil {
		return "", fmt.Errorf("invalid version %q: %w", current, err)
	}
	base := fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
	next := base + "-" + preview
	if _, err := semver.StrictNewVersion(next); err != nil {
		return "", fmt.Errorf("invalid preview version %q: %w", next, err)
	}
	return next, nil
}

// Satisfies reports whether version falls within the constraint rng.
func Satisfies(version, rng string) (bool, error) {
	c, err := semver.NewConstraint(rng)
	if err != nil {
		return false, fmt.Errorf("invalid version range %q: %w", rng, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, fmt.Errorf("invalid version %q: %w", version, err)
	}
	return c.Check(v), nil
}

// Parts splits a valid version into its numeric components and prerelease.
func Parts(version string) (major, minor, patch uint64, prerelease string, ok bool) {
	v, err := semver.StrictNewVersion(version)
	if err != nil {
		return 0, 0, 0, "", false
	}
	return v.Major(), v.Minor(), v.Patch(), v.Prerelease(), true
}

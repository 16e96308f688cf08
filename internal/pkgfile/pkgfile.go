package pkgfile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fbkclanna/vercast/internal/semverx"
)

// Specifier is one dependency entry in a manifest.
type Specifier struct {
	// Kind is the dependency table, e.g. "devDependencies".
	Kind    string
	Version string
	// HasVersion is false for entries that only reference a path or workspace.
	HasVersion bool
}

// Manifest is an editable, in-memory package manifest.
type Manifest interface {
	// Name is the configured package name, not necessarily the manifest's own.
	Name() string
	// DeclaredName is the name the manifest gives itself, or "".
	DeclaredName() string
	Path() string
	Version() string
	SetVersion(version string) error
	// Dependency returns every entry for dep across dependency tables.
	Dependency(dep string) []Specifier
	SetDependency(kind, dep, version string) error
	Serialize() ([]byte, error)
	Clone() Manifest
}

// Info is the template-friendly view of a manifest.
type Info struct {
	Name       string
	Version    string
	Major      uint64
	Minor      uint64
	Patch      uint64
	Prerelease string
}

// InfoOf summarizes m. A nil manifest yields nil.
func InfoOf(m Manifest) *Info {
	if m == nil {
		return nil
	}
	info := &Info{Name: m.Name(), Version: m.Version()}
	if major, minor, patch, pre, ok := semverx.Parts(info.Version); ok {
		info.Major, info.Minor, info.Patch, info.Prerelease = major, minor, patch, pre
	}
	return info
}

// FileName returns the default manifest file name for a package manager.
func FileName(manager string) string {
	switch {
	case strings.Contains(manager, "rust"):
		return "Cargo.toml"
	case strings.Contains(manager, "dart"), strings.Contains(manager, "flutter"):
		return "pubspec.yaml"
	default:
		return "package.json"
	}
}

// Load reads the manifest at path for the package name.
func Load(name, path string) (Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from workspace config
	if err != nil {
		return nil, fmt.Errorf("reading manifest for %s: %w", name, err)
	}
	return Parse(name, path, data)
}

// Parse picks the dialect from the file extension and parses data.
func Parse(name, path string, data []byte) (Manifest, error) {
	var (
		m   Manifest
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		m, err = parseJSON(name, path, data)
	case ".toml":
		m, err = parseTOML(name, path, data)
	case ".yaml", ".yml":
		m, err = parseYAML(name, path, data)
	default:
		m, err = parsePlain(name, path, data)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s for %s: %w", path, name, err)
	}
	return m, nil
}

// Save serializes m and writes it back to its path.
func Save(m Manifest) error {
	data, err := m.Serialize()
	if err != nil {
		return fmt.Errorf("serializing manifest for %s: %w", m.Name(), err)
	}
	if err := os.WriteFile(m.Path(), data, 0644); err != nil { //nolint:gosec // manifest needs to be readable
		return fmt.Errorf("writing manifest for %s: %w", m.Name(), err)
	}
	return nil
}

var pathSpecial = regexp.MustCompile(`[^A-Za-z0-9_\-/]`)

// EscapeKey escapes a single gjson/sjson path component.
func EscapeKey(key string) string {
	return pathSpecial.ReplaceAllStringFunc(key, func(s string) string { return `\` + s })
}

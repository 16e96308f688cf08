package pkgfile

import (
	"fmt"
	"strings"
)

// plainManifest is a file that holds nothing but a version string.
type plainManifest struct {
	name    string
	path    string
	version string
}

func parsePlain(name, path string, data []byte) (*plainManifest, error) {
	version := strings.TrimSpace(string(data))
	if strings.ContainsAny(version, " \n\t") {
		return nil, fmt.Errorf("version file must contain a single version")
	}
	return &plainManifest{name: name, path: path, version: version}, nil
}

func (m *plainManifest) Name() string                  { return m.name }
func (m *plainManifest) Path() string                  { return m.path }
func (m *plainManifest) DeclaredName() string          { return "" }
func (m *plainManifest) Version() string               { return m.version }
func (m *plainManifest) Dependency(string) []Specifier { return nil }
func (m *plainManifest) Serialize() ([]byte, error)    { return []byte(m.version + "\n"), nil }

func (m *plainManifest) Clone() Manifest {
	c := *m
	return &c
}

func (m *plainManifest) SetVersion(version string) error {
	m.version = version
	return nil
}

func (m *plainManifest) SetDependency(kind, dep, _ string) error {
	return fmt.Errorf("%s has no %s.%s: version files carry no dependencies", m.name, kind, dep)
}

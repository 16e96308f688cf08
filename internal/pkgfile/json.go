package pkgfile

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var jsonKinds = []string{"dependencies", "devDependencies"}

type jsonManifest struct {
	name string
	path string
	raw  []byte
}

func parseJSON(name, path string, data []byte) (*jsonManifest, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	if !gjson.ParseBytes(data).IsObject() {
		return nil, fmt.Errorf("manifest must be a JSON object")
	}
	return &jsonManifest{name: name, path: path, raw: append([]byte(nil), data...)}, nil
}

func (m *jsonManifest) Name() string { return m.name }
func (m *jsonManifest) Path() string { return m.path }

func (m *jsonManifest) DeclaredName() string {
	return gjson.GetBytes(m.raw, "name").String()
}

func (m *jsonManifest) Version() string {
	return gjson.GetBytes(m.raw, "version").String()
}

func (m *jsonManifest) SetVersion(version string) error {
	raw, err := sjson.SetBytes(m.raw, "version", version)
	if err != nil {
		return fmt.Errorf("setting version: %w", err)
	}
	m.raw = raw
	return nil
}

func (m *jsonManifest) Dependency(dep string) []Specifier {
	var specs []Specifier
	for _, kind := range jsonKinds {
		r := gjson.GetBytes(m.raw, kind+"."+EscapeKey(dep))
		if !r.Exists() {
			continue
		}
		s := Specifier{Kind: kind}
		if r.IsObject() {
			if v := r.Get("version"); v.Exists() {
				s.Version, s.HasVersion = v.String(), true
			}
		} else {
			s.Version, s.HasVersion = r.String(), r.String() != ""
		}
		specs = append(specs, s)
	}
	return specs
}

func (m *jsonManifest) SetDependency(kind, dep, version string) error {
	path := kind + "." + EscapeKey(dep)
	if gjson.GetBytes(m.raw, path).IsObject() {
		path += ".version"
	}
	raw, err := sjson.SetBytes(m.raw, path, version)
	if err != nil {
		return fmt.Errorf("setting %s %s: %w", kind, dep, err)
	}
	m.raw = raw
	return nil
}

func (m *jsonManifest) Serialize() ([]byte, error) {
	if !gjson.ValidBytes(m.raw) {
		return nil, fmt.Errorf("manifest for %s is no longer valid JSON", m.name)
	}
	return append([]byte(nil), m.raw...), nil
}

func (m *jsonManifest) Clone() Manifest {
	return &jsonManifest{name: m.name, path: m.path, raw: append([]byte(nil), m.raw...)}
}

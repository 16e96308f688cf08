package pkgfile

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

var yamlKinds = []string{"dependencies", "dev_dependencies"}

type yamlManifest struct {
	name string
	path string
	doc  *yaml.Node
}

func parseYAML(name, path string, data []byte) (*yamlManifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("manifest must be a YAML mapping")
	}
	return &yamlManifest{name: name, path: path, doc: &doc}, nil
}

func (m *yamlManifest) Name() string { return m.name }
func (m *yamlManifest) Path() string { return m.path }

func (m *yamlManifest) DeclaredName() string {
	if v := lookup(m.root(), "name"); v != nil {
		return v.Value
	}
	return ""
}

func (m *yamlManifest) root() *yaml.Node {
	return m.doc.Content[0]
}

// lookup returns the value node for key in a mapping node.
func lookup(mapping *yaml.Node, key string) *yaml.Node {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func (m *yamlManifest) Version() string {
	if v := lookup(m.root(), "version"); v != nil {
		return v.Value
	}
	return ""
}

func (m *yamlManifest) SetVersion(version string) error {
	v := lookup(m.root(), "version")
	if v == nil {
		return fmt.Errorf("manifest for %s has no version", m.name)
	}
	v.Value = version
	v.Tag = "!!str"
	return nil
}

func (m *yamlManifest) Dependency(dep string) []Specifier {
	var specs []Specifier
	for _, kind := range yamlKinds {
		value := lookup(lookup(m.root(), kind), dep)
		if value == nil {
			continue
		}
		s := Specifier{Kind: kind}
		switch value.Kind {
		case yaml.ScalarNode:
			s.Version, s.HasVersion = value.Value, value.Value != ""
		case yaml.MappingNode:
			if v := lookup(value, "version"); v != nil {
				s.Version, s.HasVersion = v.Value, true
			}
		}
		specs = append(specs, s)
	}
	return specs
}

func (m *yamlManifest) SetDependency(kind, dep, version string) error {
	value := lookup(lookup(m.root(), kind), dep)
	if value == nil {
		return fmt.Errorf("%s.%s not found in %s", kind, dep, m.name)
	}
	if value.Kind == yaml.MappingNode {
		value = lookup(value, "version")
		if value == nil {
			return fmt.Errorf("%s.%s in %s has no version", kind, dep, m.name)
		}
	}
	value.Value = version
	value.Tag = "!!str"
	return nil
}

func (m *yamlManifest) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m.doc); err != nil {
		return nil, fmt.Errorf("encoding manifest for %s: %w", m.name, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding manifest for %s: %w", m.name, err)
	}
	return buf.Bytes(), nil
}

func (m *yamlManifest) Clone() Manifest {
	return &yamlManifest{name: m.name, path: m.path, doc: cloneNode(m.doc)}
}

func cloneNode(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Content = make([]*yaml.Node, len(n.Content))
	for i, child := range n.Content {
		c.Content[i] = cloneNode(child)
	}
	c.Alias = cloneNode(n.Alias)
	return &c
}

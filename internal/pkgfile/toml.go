package pkgfile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

var tomlKinds = []string{"dependencies", "dev-dependencies", "build-dependencies"}

// tomlManifest edits Cargo.toml text line by line so comments and layout
// survive; go-toml parses the result to read values and validate edits.
type tomlManifest struct {
	name string
	path string
	text string
	doc  map[string]any
}

func parseTOML(name, path string, data []byte) (*tomlManifest, error) {
	m := &tomlManifest{name: name, path: path, text: string(data)}
	if err := m.reparse(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *tomlManifest) reparse() error {
	doc := map[string]any{}
	if err := toml.Unmarshal([]byte(m.text), &doc); err != nil {
		return fmt.Errorf("invalid TOML: %w", err)
	}
	m.doc = doc
	return nil
}

func (m *tomlManifest) Name() string { return m.name }
func (m *tomlManifest) Path() string { return m.path }

func (m *tomlManifest) DeclaredName() string {
	pkg, _ := m.doc["package"].(map[string]any)
	v, _ := pkg["name"].(string)
	return v
}

func (m *tomlManifest) Version() string {
	pkg, _ := m.doc["package"].(map[string]any)
	v, _ := pkg["version"].(string)
	return v
}

func (m *tomlManifest) SetVersion(version string) error {
	lines := strings.Split(m.text, "\n")
	start, end, ok := section(lines, "package")
	if !ok {
		return fmt.Errorf("manifest for %s has no [package] table", m.name)
	}
	if !replaceKeyString(lines[start:end], "version", version) {
		return fmt.Errorf("manifest for %s has no package version", m.name)
	}
	return m.apply(lines)
}

func (m *tomlManifest) Dependency(dep string) []Specifier {
	var specs []Specifier
	for _, kind := range tomlKinds {
		table, _ := m.doc[kind].(map[string]any)
		value, ok := table[dep]
		if !ok {
			continue
		}
		s := Specifier{Kind: kind}
		switch v := value.(type) {
		case string:
			s.Version, s.HasVersion = v, v != ""
		case map[string]any:
			if version, ok := v["version"].(string); ok {
				s.Version, s.HasVersion = version, true
			}
		}
		specs = append(specs, s)
	}
	return specs
}

func (m *tomlManifest) SetDependency(kind, dep, version string) error {
	lines := strings.Split(m.text, "\n")

	if start, end, ok := section(lines, kind); ok {
		key := regexp.MustCompile(`^\s*"?` + regexp.QuoteMeta(dep) + `"?\s*=\s*(.*)$`)
		for i := start; i < end; i++ {
			match := key.FindStringSubmatch(lines[i])
			if match == nil {
				continue
			}
			value := strings.TrimSpace(match[1])
			switch {
			case strings.HasPrefix(value, `"`), strings.HasPrefix(value, `'`):
				lines[i] = replaceFirstString(lines[i], strings.Index(lines[i], "="), version)
			case strings.HasPrefix(value, "{"):
				if !replaceKeyString(lines[i:i+1], "version", version) {
					return fmt.Errorf("%s.%s in %s has no version", kind, dep, m.name)
				}
			default:
				return fmt.Errorf("unsupported value for %s.%s in %s", kind, dep, m.name)
			}
			return m.apply(lines)
		}
	}

	if start, end, ok := section(lines, kind+"."+dep); ok {
		if replaceKeyString(lines[start:end], "version", version) {
			return m.apply(lines)
		}
	}
	return fmt.Errorf("%s.%s not found in %s", kind, dep, m.name)
}

func (m *tomlManifest) apply(lines []string) error {
	prev := m.text
	m.text = strings.Join(lines, "\n")
	if err := m.reparse(); err != nil {
		m.text = prev
		return err
	}
	return nil
}

func (m *tomlManifest) Serialize() ([]byte, error) {
	if err := toml.Unmarshal([]byte(m.text), &map[string]any{}); err != nil {
		return nil, fmt.Errorf("manifest for %s is no longer valid TOML: %w", m.name, err)
	}
	return []byte(m.text), nil
}

func (m *tomlManifest) Clone() Manifest {
	c, err := parseTOML(m.name, m.path, []byte(m.text))
	if err != nil {
		return &tomlManifest{name: m.name, path: m.path, text: m.text, doc: m.doc}
	}
	return c
}

var headerRe = regexp.MustCompile(`^\s*\[([^\[\]]+)\]\s*(#.*)?$`)

// section returns the line range holding the body of table name.
func section(lines []string, name string) (start, end int, ok bool) {
	start = -1
	for i, line := range lines {
		match := headerRe.FindStringSubmatch(line)
		if match == nil {
			if strings.HasPrefix(strings.TrimSpace(line), "[[") && start >= 0 {
				return start, i, true
			}
			continue
		}
		if start >= 0 {
			return start, i, true
		}
		if normalizeHeader(match[1]) == name {
			start = i + 1
		}
	}
	if start < 0 {
		return 0, 0, false
	}
	return start, len(lines), true
}

func normalizeHeader(h string) string {
	parts := strings.Split(h, ".")
	for i, p := range parts {
		parts[i] = strings.Trim(strings.TrimSpace(p), `"'`)
	}
	return strings.Join(parts, ".")
}

// replaceKeyString rewrites the quoted value of key within lines, either as
// "key = value" or inside an inline table.
func replaceKeyString(lines []string, key, value string) bool {
	re := regexp.MustCompile(`(^|[\s{,])` + regexp.QuoteMeta(key) + `\s*=`)
	for i, line := range lines {
		loc := re.FindStringIndex(line)
		if loc == nil {
			continue
		}
		lines[i] = replaceFirstString(line, loc[1]-1, value)
		return true
	}
	return false
}

// replaceFirstString replaces the first quoted string after offset.
func replaceFirstString(line string, offset int, value string) string {
	rest := line[offset:]
	open := strings.IndexAny(rest, `"'`)
	if open < 0 {
		return line
	}
	quote := rest[open]
	closing := strings.IndexByte(rest[open+1:], quote)
	if closing < 0 {
		return line
	}
	return line[:offset] + rest[:open+1] + value + rest[open+1+closing:]
}

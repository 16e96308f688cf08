package change

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fbkclanna/vercast/internal/git"
	"gopkg.in/yaml.v3"
)

// Declaration is one parsed change file.
type Declaration struct {
	// Packages lists declared package names in front matter order.
	Packages []string
	// Releases maps a package name to its declared bump value.
	Releases map[string]string
	// Tags maps a package name to its change tag, when one was given.
	Tags    map[string]string
	Summary string
	Meta    Meta
}

// Meta records where a declaration came from.
type Meta struct {
	Path    string
	Commits []git.Commit
	// Dependencies names the packages whose bump caused this copy of the
	// declaration to be attached to a dependent package.
	Dependencies []string
}

// Source describes the declaration for error messages.
func (d *Declaration) Source() string {
	if d.Meta.Path != "" {
		return d.Meta.Path
	}
	return strings.TrimSpace(d.Summary)
}

// Clone returns a deep copy of d.
func (d *Declaration) Clone() *Declaration {
	c := &Declaration{
		Packages: append([]string(nil), d.Packages...),
		Releases: make(map[string]string, len(d.Releases)),
		Tags:     make(map[string]string, len(d.Tags)),
		Summary:  d.Summary,
		Meta: Meta{
			Path:         d.Meta.Path,
			Commits:      append([]git.Commit(nil), d.Meta.Commits...),
			Dependencies: append([]string(nil), d.Meta.Dependencies...),
		},
	}
	for k, v := range d.Releases {
		c.Releases[k] = v
	}
	for k, v := range d.Tags {
		c.Tags[k] = v
	}
	return c
}

// Parse parses change file content. path is recorded in Meta and used in
// errors. An empty front matter is not an error here; the assembler rejects
// declarations without releases.
func Parse(path string, data []byte) (*Declaration, error) {
	front, body, err := splitFrontMatter(data)
	if err != nil {
		return nil, fmt.Errorf("change %s: %w", path, err)
	}

	d := &Declaration{
		Releases: map[string]string{},
		Tags:     map[string]string{},
		Summary:  strings.TrimSpace(string(body)),
		Meta:     Meta{Path: path},
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(front, &doc); err != nil {
		return nil, fmt.Errorf("change %s: parsing front matter: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return d, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("change %s: front matter must map package names to bump types", path)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		value := strings.TrimSpace(root.Content[i+1].Value)
		bump, tag, _ := strings.Cut(value, ":")
		if _, seen := d.Releases[name]; !seen {
			d.Packages = append(d.Packages, name)
		}
		d.Releases[name] = strings.TrimSpace(bump)
		if tag = strings.TrimSpace(tag); tag != "" {
			d.Tags[name] = tag
		}
	}
	return d, nil
}

var fence = []byte("---")

// splitFrontMatter separates the leading "---" fenced block from the body.
func splitFrontMatter(data []byte) (front, body []byte, err error) {
	data = bytes.TrimLeft(bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n")), "\n ")
	if !bytes.HasPrefix(data, fence) {
		return nil, nil, fmt.Errorf("missing front matter")
	}
	rest := data[len(fence):]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 {
		return nil, nil, fmt.Errorf("unterminated front matter")
	}
	rest = rest[nl+1:]
	if bytes.HasPrefix(rest, fence) {
		return nil, rest[len(fence):], nil
	}
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return nil, nil, fmt.Errorf("unterminated front matter")
	}
	front = rest[:end+1]
	body = rest[end+len("\n---"):]
	if nl := bytes.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = nil
	}
	return front, body, nil
}

// Render formats a change file from bumps and a summary. Keys are quoted so
// scoped package names survive.
func Render(packages []string, bumps map[string]string, summary string) []byte {
	var b strings.Builder
	b.WriteString("---\n")
	for _, name := range packages {
		fmt.Fprintf(&b, "%q: %s\n", name, bumps[name])
	}
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimSpace(summary))
	b.WriteString("\n")
	return []byte(b.String())
}

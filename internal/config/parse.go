package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fbkclanna/vercast/internal/bump"
	"github.com/fbkclanna/vercast/internal/cascade"
	"github.com/fbkclanna/vercast/internal/command"
	"gopkg.in/yaml.v3"
)

// rawConfig mirrors the file layout. Ordered sections stay as nodes.
type rawConfig struct {
	ChangeFolder        string               `yaml:"changeFolder"`
	GitSiteURL          string               `yaml:"gitSiteUrl"`
	AdditionalBumpTypes []string             `yaml:"additionalBumpTypes"`
	DefaultChangeTag    string               `yaml:"defaultChangeTag"`
	ChangeTags          yaml.Node            `yaml:"changeTags"`
	PkgManagers         map[string]*Settings `yaml:"pkgManagers"`
	Packages            yaml.Node            `yaml:"packages"`
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is the workspace config path
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates config content. JSON and YAML are both accepted.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg := &Config{
		ChangeFolder:        raw.ChangeFolder,
		GitSiteURL:          raw.GitSiteURL,
		AdditionalBumpTypes: raw.AdditionalBumpTypes,
		DefaultChangeTag:    raw.DefaultChangeTag,
		PkgManagers:         raw.PkgManagers,
		Packages:            map[string]*Settings{},
	}
	if cfg.ChangeFolder == "" {
		cfg.ChangeFolder = DefaultChangeFolder
	}
	if cfg.PkgManagers == nil {
		cfg.PkgManagers = map[string]*Settings{}
	}

	if err := eachPair(&raw.ChangeTags, "changeTags", func(key string, value *yaml.Node) error {
		var title string
		if err := value.Decode(&title); err != nil {
			return err
		}
		cfg.ChangeTags = append(cfg.ChangeTags, Tag{Key: key, Title: title})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := eachPair(&raw.Packages, "packages", func(key string, value *yaml.Node) error {
		var s Settings
		if err := value.Decode(&s); err != nil {
			return err
		}
		if _, dup := cfg.Packages[key]; dup {
			return fmt.Errorf("duplicate package")
		}
		cfg.PackageNames = append(cfg.PackageNames, key)
		cfg.Packages[key] = &s
		return nil
	}); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// eachPair walks a mapping node in order. A zero node is skipped.
func eachPair(n *yaml.Node, label string, fn func(key string, value *yaml.Node) error) error {
	if n.Kind == 0 {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("config: %s must be an object", label)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if err := fn(key, n.Content[i+1]); err != nil {
			return fmt.Errorf("config: %s.%s: %w", label, key, err)
		}
	}
	return nil
}

// Validate checks the config for errors.
func Validate(cfg *Config) error { return validate(cfg) }

func validate(cfg *Config) error {
	for _, t := range cfg.AdditionalBumpTypes {
		if bump.IsBuiltin(bump.Type(t)) {
			return fmt.Errorf("config: additionalBumpTypes cannot redefine built-in type %q", t)
		}
	}
	for _, name := range cfg.PackageNames {
		p := cfg.Packages[name]
		if p.Path != "" {
			if err := validatePath(p.Path, fmt.Sprintf("packages.%s.path", name)); err != nil {
				return err
			}
		}
		for _, dep := range p.Dependencies {
			if _, ok := cfg.Packages[dep]; !ok {
				return fmt.Errorf("config: packages.%s.dependencies references unknown package %q", name, dep)
			}
		}
	}
	return checkCycles(cfg)
}

// validatePath ensures a path is relative and does not escape the workspace.
func validatePath(p, label string) error {
	if filepath.IsAbs(p) {
		return fmt.Errorf("config: %s: absolute path is not allowed: %s", label, p)
	}
	cleaned := filepath.Clean(p)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return fmt.Errorf("config: %s: path must not escape workspace (contains ..): %s", label, p)
	}
	return nil
}

// checkCycles rejects dependency cycles among configured packages.
func checkCycles(cfg *Config) error {
	state := map[string]int{}
	var stack []string
	var visit func(string) error
	visit = func(name string) error {
		switch state[name] {
		case 1:
			start := slices.Index(stack, name)
			return &cascade.CyclicDependencyError{Cycle: append(append([]string(nil), stack[start:]...), name)}
		case 2:
			return nil
		}
		state[name] = 1
		stack = append(stack, name)
		for _, dep := range cfg.Packages[name].Dependencies {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = 2
		return nil
	}
	for _, name := range cfg.PackageNames {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

// Package returns the effective settings for name with manager settings
// applied underneath the package's own.
func (c *Config) Package(name string) (*Package, bool) {
	s, ok := c.Packages[name]
	if !ok {
		return nil, false
	}
	p := &Package{
		Name:         name,
		Manager:      s.Manager,
		Path:         s.Path,
		Dependencies: s.Dependencies,
		Commands:     map[string]command.Commands{},
	}
	if m := c.PkgManagers[s.Manager]; m != nil && s.Manager != "" {
		p.PackageFileName = m.PackageFileName
		p.ErrorOnVersionRange = m.ErrorOnVersionRange
		p.ReleaseTag = m.ReleaseTag
		p.Assets = m.Assets
		for k, v := range m.Commands {
			p.Commands[k] = v
		}
	}
	if s.PackageFileName != "" {
		p.PackageFileName = s.PackageFileName
	}
	if s.ErrorOnVersionRange != "" {
		p.ErrorOnVersionRange = s.ErrorOnVersionRange
	}
	if s.ReleaseTag.Set {
		p.ReleaseTag = s.ReleaseTag
	}
	if s.Assets != nil {
		p.Assets = s.Assets
	}
	for k, v := range s.Commands {
		p.Commands[k] = v
	}
	return p, true
}

// Graph returns the dependency graph of configured packages.
func (c *Config) Graph() cascade.Graph {
	g := cascade.Graph{
		Order:        append([]string(nil), c.PackageNames...),
		Dependencies: make(map[string][]string, len(c.PackageNames)),
	}
	for _, name := range c.PackageNames {
		g.Dependencies[name] = c.Packages[name].Dependencies
	}
	return g
}

// FilterPackages returns names matching --only / --skip flags.
func FilterPackages(names, only, skip []string) []string {
	if len(only) == 0 && len(skip) == 0 {
		return names
	}
	var result []string
	for _, n := range names {
		if len(only) > 0 && !slices.Contains(only, n) {
			continue
		}
		if slices.Contains(skip, n) {
			continue
		}
		result = append(result, n)
	}
	return result
}

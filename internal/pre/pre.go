package pre

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the pre-mode file inside the change folder.
const FileName = "pre.json"

// File represents pre.json.
type File struct {
	Tag     string   `json:"tag" yaml:"tag"`
	Changes []string `json:"changes" yaml:"changes"`
}

// Load reads a pre.json file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is the workspace pre file path
	if err != nil {
		return nil, fmt.Errorf("reading pre file: %w", err)
	}
	return Parse(data)
}

// Parse parses pre.json content.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing pre file: %w", err)
	}
	if f.Tag == "" {
		return nil, fmt.Errorf("pre file: tag is required")
	}
	return &f, nil
}

// Save writes the pre file to disk.
func Save(path string, f *File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling pre file: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil { //nolint:gosec // pre file needs to be readable
		return fmt.Errorf("writing pre file: %w", err)
	}
	return nil
}

// Seen reports whether the change file at path was consumed already.
func (f *File) Seen(path string) bool {
	return slices.Contains(f.Changes, path)
}

// WithChanges returns a copy of f whose change list is paths, sorted and
// deduplicated.
func (f *File) WithChanges(paths []string) *File {
	changes := append([]string(nil), paths...)
	slices.Sort(changes)
	return &File{Tag: f.Tag, Changes: slices.Compact(changes)}
}

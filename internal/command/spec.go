package command

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"
)

// BuiltinFetchCheck queries a registry for the latest published version.
const BuiltinFetchCheck = "fetch:check"

// Func is a command implemented in Go. It receives the package context,
// including stdout piped by earlier commands of the same stage.
type Func func(ctx context.Context, pc *Context) error

// DryRun is the dryRunCommand setting of a Spec.
type DryRun struct {
	// Force runs the command even during a dry run.
	Force bool
	// Command replaces the command during a dry run.
	Command string
}

// UnmarshalYAML accepts a bool or a replacement command string.
func (d *DryRun) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: dryRunCommand must be a bool or a string", n.Line)
	}
	if n.Tag == "!!bool" {
		var b bool
		if err := n.Decode(&b); err != nil {
			return err
		}
		*d = DryRun{Force: b}
		return nil
	}
	*d = DryRun{Command: n.Value}
	return nil
}

// Options configures a built-in operation.
type Options struct {
	URL string `yaml:"url"`
	// VersionPath is the gjson path of the version in the response body.
	VersionPath string `yaml:"versionPath"`
}

// Spec is one sub-command of a stage. Exactly one of Command, Func and Use
// is set.
type Spec struct {
	Command     string  `yaml:"command"`
	Func        Func    `yaml:"-"`
	Use         string  `yaml:"use"`
	Options     Options `yaml:"options"`
	DryRun      DryRun  `yaml:"dryRunCommand"`
	RunFromRoot bool    `yaml:"runFromRoot"`
	// Retries lists the delays in milliseconds before each retry.
	Retries []int `yaml:"retries"`
	Pipe    bool  `yaml:"pipe"`
}

// Describe returns the form of the command used in log lines.
func (s Spec) Describe() string {
	switch {
	case s.Func != nil:
		return "function"
	case s.Use != "":
		return s.Use + " " + s.Options.URL
	default:
		return s.Command
	}
}

// UnmarshalYAML accepts a command string or a command object.
func (s *Spec) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*s = Spec{Command: n.Value}
		return nil
	case yaml.MappingNode:
		type plain Spec
		var p plain
		if err := n.Decode(&p); err != nil {
			return err
		}
		if p.Command == "" && p.Use == "" {
			return fmt.Errorf("line %d: command object needs command or use", n.Line)
		}
		if p.Use != "" && p.Use != BuiltinFetchCheck {
			return fmt.Errorf("line %d: unknown built-in %q", n.Line, p.Use)
		}
		*s = Spec(p)
		return nil
	}
	return fmt.Errorf("line %d: command must be a string or an object", n.Line)
}

// Commands is an ordered list of sub-commands. A nil list means the stage
// is not configured; an empty non-nil list means the package takes part in
// the workflow without running anything.
type Commands []Spec

// UnmarshalYAML accepts true, false, a single command or a list.
func (c *Commands) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!bool" {
			var b bool
			if err := n.Decode(&b); err != nil {
				return err
			}
			if b {
				*c = Commands{}
			} else {
				*c = nil
			}
			return nil
		}
		*c = Commands{{Command: n.Value}}
		return nil
	case yaml.MappingNode:
		var s Spec
		if err := n.Decode(&s); err != nil {
			return err
		}
		*c = Commands{s}
		return nil
	case yaml.SequenceNode:
		out := make(Commands, 0, len(n.Content))
		for _, item := range n.Content {
			var s Spec
			if err := item.Decode(&s); err != nil {
				return err
			}
			out = append(out, s)
		}
		*c = out
		return nil
	}
	return fmt.Errorf("line %d: unsupported command value", n.Line)
}

// Configured reports whether the stage is set at all.
func (c Commands) Configured() bool {
	return c != nil
}

// Strings returns each sub-command as it would appear in a log line.
func (c Commands) Strings() []string {
	out := make([]string, len(c))
	for i, s := range c {
		out[i] = s.Describe()
	}
	return out
}

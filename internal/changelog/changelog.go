package changelog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fbkclanna/vercast/internal/change"
	"github.com/fbkclanna/vercast/internal/config"
)

// FileName is the changelog file written into each package directory.
const FileName = "CHANGELOG.md"

const depsTag = "deps"

// Release is one package's applied release.
type Release struct {
	Name    string
	Dir     string
	Version string
	Changes []*change.Declaration
}

// Options shape the rendered section.
type Options struct {
	GitSiteURL string
	ChangeTags []config.Tag
	DefaultTag string
	// Versions maps released package names to their new versions.
	Versions map[string]string
}

var prRe = regexp.MustCompile(`#[0-9]+`)

// Render returns the changelog section for r.
func Render(r Release, opts Options) string {
	site := "/"
	if opts.GitSiteURL != "" {
		site = strings.TrimSuffix(opts.GitSiteURL, "/") + "/"
	}

	tags := append([]config.Tag(nil), opts.ChangeTags...)
	if !hasTag(tags, depsTag) {
		tags = append(tags, config.Tag{Key: depsTag, Title: "Dependencies"})
	}
	grouped := map[string][]string{}

	var untagged []string
	var deps []string
	own := 0
	for _, c := range r.Changes {
		if len(c.Meta.Dependencies) > 0 {
			for _, dep := range c.Meta.Dependencies {
				if !slices.Contains(deps, dep) {
					deps = append(deps, dep)
				}
			}
			continue
		}
		own++
		line := entry(c, site)
		key := c.Tags[r.Name]
		if key == "" {
			key = opts.DefaultTag
		}
		if key == "" {
			untagged = append(untagged, line)
			continue
		}
		if !hasTag(tags, key) {
			tags = append(tags, config.Tag{Key: key, Title: cases.Title(language.English).String(key)})
		}
		grouped[key] = append(grouped[key], line)
	}
	for _, dep := range deps {
		if v, ok := opts.Versions[dep]; ok {
			grouped[depsTag] = append(grouped[depsTag], fmt.Sprintf("- Upgraded to `%s@%s`", dep, v))
		} else {
			grouped[depsTag] = append(grouped[depsTag], fmt.Sprintf("- Upgraded to latest `%s`", dep))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## [%s]\n", r.Version)
	if own == 0 {
		b.WriteString("\n- Bumped due to dependency.\n")
	}
	if len(untagged) > 0 {
		b.WriteString("\n" + strings.Join(untagged, "\n") + "\n")
	}
	for _, t := range tags {
		lines := grouped[t.Key]
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n### %s\n\n%s\n", t.Title, strings.Join(lines, "\n"))
	}
	return b.String()
}

// entry renders one change as a list item, linking its first commit and
// the last pull request number in the commit subject.
func entry(c *change.Declaration, site string) string {
	summary := strings.ReplaceAll(strings.TrimSpace(c.Summary), "\n", "\n  ")
	if len(c.Meta.Commits) == 0 {
		return "- " + summary
	}
	commit := c.Meta.Commits[0]
	link := fmt.Sprintf("[`%s`](%scommit/%s)", commit.HashShort, site, commit.HashLong)
	if prs := prRe.FindAllString(commit.Subject, -1); len(prs) > 0 {
		pr := prs[len(prs)-1]
		link += fmt.Sprintf("([%s](%spull/%s))", pr, site, pr[1:])
	}
	return "- " + link + " " + summary
}

// Write prepends section to the changelog in dir, below its title. A
// missing changelog is created.
func Write(dir, section string) (string, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path) //nolint:gosec // path is inside a configured package
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("reading changelog: %w", err)
	}
	content := Insert(string(data), section)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil { //nolint:gosec // changelog needs to be readable
		return "", fmt.Errorf("writing changelog: %w", err)
	}
	return path, nil
}

// Insert places section after the leading "# " title of existing, adding
// the title when there is none.
func Insert(existing, section string) string {
	section = strings.TrimRight(section, "\n") + "\n"
	existing = strings.ReplaceAll(existing, "\r\n", "\n")
	if strings.TrimSpace(existing) == "" {
		return "# Changelog\n\n" + section
	}
	title, rest := "", existing
	if strings.HasPrefix(existing, "# ") {
		if i := strings.IndexByte(existing, '\n'); i >= 0 {
			title, rest = existing[:i+1], existing[i+1:]
		} else {
			title, rest = existing+"\n", ""
		}
	} else {
		title = "# Changelog\n"
	}
	rest = strings.TrimLeft(rest, "\n")
	out := title + "\n" + section
	if rest != "" {
		out += "\n" + rest
	}
	return out
}

// Section returns the section of version from the changelog in dir without
// its heading. It returns "" when the changelog or the section is missing.
func Section(dir, version string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName)) //nolint:gosec // path is inside a configured package
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading changelog: %w", err)
	}
	heading := "## [" + version + "]"
	var out []string
	in := false
	for _, line := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n") {
		if strings.HasPrefix(line, "## ") {
			if in {
				break
			}
			in = strings.TrimSpace(line) == heading
			continue
		}
		if in {
			out = append(out, line)
		}
	}
	return strings.TrimSpace(strings.Join(out, "\n")), nil
}

func hasTag(tags []config.Tag, key string) bool {
	return slices.ContainsFunc(tags, func(t config.Tag) bool { return t.Key == key })
}

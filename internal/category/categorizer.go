// Package category maps item names to shopping categories by keyword.
//
// The taxonomy is an ordered list of rules. A name belongs to the first rule
// that has any keyword as a substring of the lowercased name, so "applesauce"
// lands in Fruits even though "sauce" is a Pantry keyword. Names that match
// nothing fall back to a catch-all category.
package category

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var defaultTaxonomy []byte

// Match is the outcome of categorizing one name.
type Match struct {
	Category string `json:"category"`
	Icon     string `json:"icon,omitempty"`
}

// Rule is one category of the taxonomy.
type Rule struct {
	Name     string   `yaml:"name"`
	Icon     string   `yaml:"icon"`
	Keywords []string `yaml:"keywords"`
}

// Taxonomy is the on-disk form of the keyword table.
type Taxonomy struct {
	Version    int    `yaml:"version"`
	Fallback   Rule   `yaml:"fallback"`
	Categories []Rule `yaml:"categories"`
}

// Categorizer is safe for concurrent use; it never changes after construction.
type Categorizer struct {
	rules    []Rule
	fallback Match
}

// ErrEmptyTaxonomy is returned when a taxonomy file declares no categories.
var ErrEmptyTaxonomy = errors.New("taxonomy has no categories")

// Default returns the categorizer for the embedded taxonomy.
func Default() *Categorizer {
	c, err := Parse(defaultTaxonomy)
	if err != nil {
		panic(fmt.Sprintf("embedded taxonomy: %v", err))
	}
	return c
}

// Load reads a taxonomy file. An empty path yields the default taxonomy.
func Load(path string) (*Categorizer, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse builds a categorizer from YAML.
func Parse(b []byte) (*Categorizer, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return New(t)
}

// New validates t and normalizes its keywords to lower case.
func New(t Taxonomy) (*Categorizer, error) {
	if len(t.Categories) == 0 {
		return nil, ErrEmptyTaxonomy
	}
	c := &Categorizer{
		fallback: Match{Category: t.Fallback.Name, Icon: t.Fallback.Icon},
	}
	if c.fallback.Category == "" {
		c.fallback = Match{Category: "Other", Icon: "📦"}
	}
	seen := make(map[string]bool, len(t.Categories))
	for i, r := range t.Categories {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return nil, fmt.Errorf("category %d: empty name", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("category %q declared twice", name)
		}
		seen[name] = true

		kws := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k != "" {
				kws = append(kws, k)
			}
		}
		c.rules = append(c.rules, Rule{Name: name, Icon: r.Icon, Keywords: kws})
	}
	return c, nil
}

// Categorize always returns a category.
func (c *Categorizer) Categorize(name string) Match {
	lower := strings.ToLower(name)
	for _, r := range c.rules {
		for _, k := range r.Keywords {
			if strings.Contains(lower, k) {
				return Match{Category: r.Name, Icon: r.Icon}
			}
		}
	}
	return c.fallback
}

// Names lists the categories in declaration order, fallback last.
func (c *Categorizer) Names() []string {
	out := make([]string, 0, len(c.rules)+1)
	for _, r := range c.rules {
		out = append(out, r.Name)
	}
	return append(out, c.fallback.Category)
}

// Icon returns the icon for a known category name, or the fallback icon.
func (c *Categorizer) Icon(category string) string {
	for _, r := range c.rules {
		if r.Name == category {
			return r.Icon
		}
	}
	return c.fallback.Icon
}

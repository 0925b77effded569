package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

type Page struct {
	Slug        string `yaml:"slug" json:"slug"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Protected   bool   `yaml:"protected" json:"protected"`
	Form        string `yaml:"form,omitempty" json:"form,omitempty"`
	Channel     string `yaml:"channel,omitempty" json:"channel_url,omitempty"`
}

type Catalog struct {
	Pages   []Page              `yaml:"pages" json:"pages"`
	Options map[string][]Option `yaml:"options" json:"options"`

	bySlug map[string]Page
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(defaultCatalog)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	c.bySlug = make(map[string]Page, len(c.Pages))
	for _, p := range c.Pages {
		if p.Slug == "" {
			return nil, fmt.Errorf("catalog page %q has no slug", p.Title)
		}
		if _, dup := c.bySlug[p.Slug]; dup {
			return nil, fmt.Errorf("duplicate catalog page %q", p.Slug)
		}
		c.bySlug[p.Slug] = p
	}
	return &c, nil
}

func (c *Catalog) Page(slug string) (Page, bool) {
	p, ok := c.bySlug[slug]
	return p, ok
}

// Allowed reports whether value is one of the options in the named list.
// Unknown lists allow everything.
func (c *Catalog) Allowed(list, value string) bool {
	opts, ok := c.Options[list]
	if !ok {
		return true
	}
	for _, o := range opts {
		if o.Value == value {
			return true
		}
	}
	return false
}

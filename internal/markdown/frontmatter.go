package markdown

import (
	"strings"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the optional YAML block at the top of a document
type FrontMatter struct {
	Title   string         `yaml:"title"`
	Updated string         `yaml:"updated"`
	Custom  map[string]any `yaml:",inline"`
}

func (m FrontMatter) empty() bool {
	return m.Title == "" && m.Updated == "" && len(m.Custom) == 0
}

// SplitFrontMatter separates a leading front matter block from the markdown
// body. A block only counts as front matter when it decodes to at least one
// YAML field; otherwise the leading "---" is a thematic break and the
// document comes back unchanged with an empty FrontMatter.
func SplitFrontMatter(document string) (FrontMatter, string) {
	var meta FrontMatter
	body, err := frontmatter.Parse(strings.NewReader(document), &meta)
	if err != nil || meta.empty() {
		return FrontMatter{}, document
	}
	return meta, string(body)
}

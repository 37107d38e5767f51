package markdown

import "regexp"

// linkPattern matches [display](target) where neither part contains its own delimiters
var linkPattern = regexp.MustCompile(`\[([^\[\]]*)\]\(([^()]*)\)`)

// StripLinks replaces every markdown link with its display text.
// Matches are found left to right and do not overlap; the display text
// is kept as is. A single pass is idempotent on ordinary cells; a link
// nested in another link's target only loses its innermost layer, so
// "[a]([b](c))" becomes "[a](b)".
func StripLinks(text string) string {
	return linkPattern.ReplaceAllString(text, "$1")
}

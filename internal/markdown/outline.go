package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Headline is one heading found in a markdown document
type Headline struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	// Line is 1-based, 0 when the heading has no content
	Line int `json:"line"`
	// Table is set when a pipe table directly follows the heading
	Table bool `json:"table"`
}

// Prefix returns the ATX form of the headline, usable as an ExtractSection headline
func (h Headline) Prefix() string {
	return strings.Repeat("#", h.Level) + " " + h.Text
}

// Headlines lists the document's headings in order, flagging those whose
// section starts with a table. The document is parsed with goldmark's GFM
// table extension; the parser is stateless so a fresh one per call is fine.
func Headlines(document string) []Headline {
	src := []byte(document)
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	root := md.Parser().Parse(text.NewReader(src))

	var out []Headline
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if node, ok := n.(*ast.Heading); ok {
			h := Headline{Level: node.Level, Text: headingText(node, src)}
			if node.Lines().Len() > 0 {
				h.Line = bytes.Count(src[:node.Lines().At(0).Start], []byte("\n")) + 1
			}
			out = append(out, h)
			continue
		}
		if n.Kind() == extast.KindTable && len(out) > 0 {
			if _, ok := n.PreviousSibling().(*ast.Heading); ok {
				out[len(out)-1].Table = true
			}
		}
	}
	return out
}

// headingText joins the text segments under a heading, dropping inline markup
func headingText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

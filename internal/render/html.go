package render

import (
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/leengari/mdtable/internal/domain/schema"
)

// HTML writes t as a <table> element. Each data cell carries its column type
// in a data-type attribute; null cells are empty.
func HTML(w io.Writer, t *schema.Table) error {
	table := element(atom.Table)

	head := element(atom.Thead)
	tr := element(atom.Tr)
	tr.AppendChild(cell(atom.Th, t.IndexColumn(), ""))
	for _, c := range t.Schema() {
		tr.AppendChild(cell(atom.Th, c.Name, string(c.Type)))
	}
	head.AppendChild(tr)
	table.AppendChild(head)

	body := element(atom.Tbody)
	schemaCols := t.Schema()
	for _, key := range t.Keys() {
		tr := element(atom.Tr)
		tr.AppendChild(cell(atom.Th, key, ""))
		for _, c := range schemaCols {
			tr.AppendChild(cell(atom.Td, t.Value(key, c.Name).String(), string(c.Type)))
		}
		body.AppendChild(tr)
	}
	table.AppendChild(body)

	if err := html.Render(w, table); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func cell(a atom.Atom, text, typ string) *html.Node {
	n := element(a)
	if typ != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "data-type", Val: typ})
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	return n
}

package service

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// allowedInsightTags are the only elements an insight may render.
var allowedInsightTags = map[atom.Atom]bool{
	atom.P:  true,
	atom.Ul: true,
	atom.Li: true,
}

// droppedInsightTags lose their content along with the tag.
var droppedInsightTags = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Iframe:   true,
	atom.Noscript: true,
	atom.Template: true,
}

// SanitizeInsight reduces generated markup to attribute-free p, ul and li
// elements. Other elements are unwrapped to their text. Markdown code fences
// around the markup are removed first.
func SanitizeInsight(fragment string) string {
	fragment = stripCodeFence(fragment)

	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return html.EscapeString(fragment)
	}

	var b strings.Builder
	for _, n := range nodes {
		writeSanitized(&b, n)
	}
	return strings.TrimSpace(b.String())
}

func writeSanitized(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(html.EscapeString(n.Data))
		return
	case html.ElementNode:
		if droppedInsightTags[n.DataAtom] {
			return
		}
	default:
		return
	}

	keep := allowedInsightTags[n.DataAtom]
	if keep {
		b.WriteString("<" + n.Data + ">")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeSanitized(b, c)
	}
	if keep {
		b.WriteString("</" + n.Data + ">")
	}
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

package trivia

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Decode turns HTML-escaped trivia text into plain text. Entities are resolved and any markup
// is dropped, keeping only the text content.
func Decode(text string) string {
	if !strings.ContainsAny(text, "&<") {
		return text
	}
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(text), body)
	if err != nil {
		return html.UnescapeString(text)
	}
	var b strings.Builder
	for _, n := range nodes {
		collectText(&b, n)
	}
	return b.String()
}

func collectText(b *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
}

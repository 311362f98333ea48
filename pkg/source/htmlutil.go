package source

import (
	"strings"

	"golang.org/x/net/html"
)

// Shared node-walking helpers for the site providers. The sites offer
// no APIs, so each provider works off parsed listing markup.

// FindAll returns every element named tag whose class attribute
// contains classPart (any class when classPart is empty), in document
// order.
func FindAll(n *html.Node, tag, classPart string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			if classPart == "" || strings.Contains(Attr(node, "class"), classPart) {
				out = append(out, node)
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// First returns the first match of FindAll, or nil.
func First(n *html.Node, tag, classPart string) *html.Node {
	matches := FindAll(n, tag, classPart)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

// Attr returns the value of the named attribute, or "".
func Attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// Text collects and whitespace-normalizes the text content under n.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteString(" ")
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

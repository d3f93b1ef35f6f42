// Package extract produces raw extraction records from product pages.
// The LLM call is extraction only: verbatim text at temperature zero,
// no judgment. Policy evaluation happens downstream.
package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// Section is one labeled chunk of product page text
type Section struct {
	Kind string // title, bullet, paragraph
	Text string
}

// Sections harvests the marketing-relevant text blocks from a product
// page: the title, list items (feature bullets), and paragraph text.
// Scripts, styles and embedded frames are skipped.
func Sections(htmlContent string) ([]Section, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	var sections []Section
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			case "title", "h1":
				if text := nodeText(n); text != "" {
					sections = append(sections, Section{Kind: "title", Text: text})
				}
				return
			case "li":
				if text := nodeText(n); text != "" {
					sections = append(sections, Section{Kind: "bullet", Text: text})
				}
				return
			case "p":
				if text := nodeText(n); text != "" {
					sections = append(sections, Section{Kind: "paragraph", Text: text})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return sections, nil
}

// nodeText collects the trimmed text below a node
func nodeText(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if buf.Len() > 0 {
					buf.WriteString(" ")
				}
				buf.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

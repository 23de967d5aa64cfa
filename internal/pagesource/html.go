package pagesource

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/specsift/specsift/internal/specdoc"
)

// HTMLSource handles HTML exports of spec documents. Page boundaries are
// <hr> elements or elements carrying a page-break style/class, which is what
// the common PDF-to-HTML converters emit. A document with no break markers
// becomes a single page.
type HTMLSource struct{}

func (s *HTMLSource) Load(r io.Reader, filename string) (*specdoc.Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := strings.TrimSuffix(strings.TrimSuffix(filename, ".html"), ".htm")
	if t := findTitle(doc); t != "" {
		title = t
	}

	var pages []string
	var current strings.Builder

	flush := func() {
		pages = append(pages, current.String())
		current.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "script" || n.Data == "style":
				return
			case n.Data == "hr" || hasPageBreak(n):
				flush()
			}
		}
		if n.Type == html.TextNode {
			current.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && isBlock(n.Data) {
			current.WriteString("\n")
		}
	}

	body := findBody(doc)
	if body == nil {
		body = doc
	}
	walk(body)
	flush()

	return newDocument(title, pages), nil
}

func hasPageBreak(n *html.Node) bool {
	for _, attr := range n.Attr {
		switch attr.Key {
		case "style":
			if strings.Contains(attr.Val, "page-break") || strings.Contains(attr.Val, "break-before") {
				return true
			}
		case "class":
			for _, c := range strings.Fields(attr.Val) {
				if c == "page" || c == "pagebreak" || c == "page-break" {
					return true
				}
			}
		}
	}
	return false
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "li", "tr", "table", "br",
		"h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

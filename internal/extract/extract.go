// Package extract pulls readable text out of an HTML page so it can be fed
// to the summarization pipeline.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoText is returned when a page contains no readable text.
var ErrNoText = errors.New("extract: no readable text in document")

// dropSelectors lists elements that never carry article text.
const dropSelectors = "script, style, noscript, template, svg, iframe, nav, header, footer, aside, form, button"

// blockSelectors lists elements whose text forms its own paragraph.
const blockSelectors = "p, li, h1, h2, h3, h4, h5, h6, blockquote, pre, td, th, dd, dt, figcaption"

// inlineTags are elements whose text continues the surrounding paragraph.
var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true, "cite": true,
	"code": true, "data": true, "dfn": true, "em": true, "i": true, "kbd": true,
	"mark": true, "q": true, "s": true, "samp": true, "small": true, "span": true,
	"strong": true, "sub": true, "sup": true, "time": true, "u": true, "var": true,
}

// Page is the result of Text.
type Page struct {
	Title string
	Text  string
}

// Text parses html and returns its title and readable text. Content inside
// <article> or <main> is preferred over the whole body. Paragraph-level
// elements are separated so sentence boundaries survive, and text sitting
// directly in a container is kept as its own paragraph.
func Text(html string) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Page{}, fmt.Errorf("extract: parse html: %w", err)
	}

	page := Page{Title: title(doc)}

	doc.Find(dropSelectors).Remove()
	doc.Find("br").ReplaceWithHtml("\n")

	root := doc.Find("article").First()
	if root.Length() == 0 {
		root = doc.Find("main").First()
	}
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	var c collector
	c.walk(root)
	c.flush()
	parts := c.parts
	if len(parts) == 0 {
		return page, ErrNoText
	}

	page.Text = strings.Join(parts, "\n\n")
	return page, nil
}

// collector gathers paragraphs in document order. Loose text and inline
// elements accumulate until the next paragraph boundary.
type collector struct {
	parts  []string
	inline strings.Builder
}

func (c *collector) walk(sel *goquery.Selection) {
	sel.Contents().Each(func(_ int, n *goquery.Selection) {
		name := goquery.NodeName(n)
		switch {
		case name == "#text":
			c.inline.WriteString(n.Text())
		case strings.HasPrefix(name, "#"):
			// comments and doctypes
		case n.Find(blockSelectors).Length() > 0:
			c.flush()
			c.walk(n)
			c.flush()
		case inlineTags[name]:
			c.inline.WriteString(n.Text())
		default:
			c.flush()
			c.add(n.Text())
		}
	})
}

func (c *collector) flush() {
	c.add(c.inline.String())
	c.inline.Reset()
}

func (c *collector) add(text string) {
	if t := strings.Join(strings.Fields(text), " "); t != "" {
		c.parts = append(c.parts, t)
	}
}

func title(doc *goquery.Document) string {
	if content, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
		if t := strings.TrimSpace(content); t != "" {
			return t
		}
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

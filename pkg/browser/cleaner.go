package browser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// PageCapture is a cleaned page snapshot. The HTML keeps semantic structure
// and the attributes needed to target form controls; everything else is
// dropped.
type PageCapture struct {
	URL       string
	Title     string
	HTML      string
	Truncated bool
}

// DefaultCaptureLength bounds capture size so snapshots stay loggable.
const DefaultCaptureLength = 50000

// cleanPage parses raw HTML and rebuilds it without scripts, styles, or
// presentation noise, truncating at maxLength characters.
func cleanPage(rawHTML string, maxLength int) (*PageCapture, error) {
	if maxLength <= 0 {
		maxLength = DefaultCaptureLength
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	capture := &PageCapture{Title: findTitle(doc)}

	var b strings.Builder
	written := 0
	capture.Truncated = writeNode(doc, &b, &written, maxLength)
	capture.HTML = b.String()
	return capture, nil
}

// writeNode walks the tree and emits kept elements and text. Returns true
// once the length budget is exhausted.
func writeNode(n *html.Node, b *strings.Builder, written *int, maxLength int) bool {
	if *written >= maxLength {
		return true
	}

	switch n.Type {
	case html.CommentNode:
		return false

	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text == "" {
			return false
		}
		if *written+len(text) > maxLength {
			b.WriteString(text[:maxLength-*written])
			*written = maxLength
			return true
		}
		b.WriteString(text)
		*written += len(text)
		return false

	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if droppedTags[tag] {
			return false
		}

		b.WriteString("<")
		b.WriteString(tag)
		for _, attr := range n.Attr {
			if keepAttribute(tag, strings.ToLower(attr.Key)) {
				fmt.Fprintf(b, ` %s="%s"`, attr.Key, html.EscapeString(attr.Val))
			}
		}
		b.WriteString(">")
		*written += len(tag) + 2

		truncated := writeChildren(n, b, written, maxLength)

		if !voidTags[tag] {
			b.WriteString("</")
			b.WriteString(tag)
			b.WriteString(">")
			*written += len(tag) + 3
		}
		if blockTags[tag] {
			b.WriteString("\n")
		}
		return truncated
	}

	return writeChildren(n, b, written, maxLength)
}

func writeChildren(n *html.Node, b *strings.Builder, written *int, maxLength int) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if writeNode(c, b, written, maxLength) {
			return true
		}
	}
	return false
}

// droppedTags are removed entirely, subtree included. Iframes are dropped
// from captures; live detection reaches into them through Playwright frame
// handles instead.
var droppedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"embed":    true,
	"object":   true,
	"svg":      true,
	"link":     true,
	"meta":     true,
}

var voidTags = map[string]bool{
	"br": true, "hr": true, "img": true, "input": true,
	"area": true, "base": true, "col": true, "source": true,
	"track": true, "wbr": true,
}

var blockTags = map[string]bool{
	"div": true, "p": true, "section": true, "form": true,
	"fieldset": true, "label": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// keepAttribute decides which attributes survive cleaning. The kept set is
// exactly what selector synthesis and label inference read.
func keepAttribute(tag, attr string) bool {
	switch attr {
	case "id", "class", "role", "aria-label", "aria-labelledby",
		"aria-describedby", "aria-required", "aria-haspopup",
		"aria-expanded", "aria-autocomplete":
		return true
	}
	if strings.HasPrefix(attr, "data-") {
		return true
	}

	switch tag {
	case "input", "textarea", "select":
		switch attr {
		case "name", "type", "placeholder", "value", "autocomplete", "required", "checked", "accept":
			return true
		}
	case "option":
		return attr == "value" || attr == "selected"
	case "label":
		return attr == "for"
	case "a":
		return attr == "href"
	case "button":
		return attr == "type" || attr == "name"
	case "form":
		return attr == "action" || attr == "method"
	}
	return false
}

func findTitle(doc *html.Node) string {
	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title
}

package detect

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DetectFromHTML runs the detection pipeline over static HTML. It feeds
// the same pure pipeline as live detection, with visibility approximated
// from inline styles since no computed styles exist. Used for recon over
// captured pages and for exercising the pipeline without a browser.
func DetectFromHTML(rawHTML, frameURL string) ([]*FormField, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("detect: failed to parse HTML: %w", err)
	}

	var raws []RawElement
	doc.Find("input, select, textarea").Each(func(_ int, sel *goquery.Selection) {
		if len(sel.Nodes) == 0 {
			return
		}
		raws = append(raws, staticRaw(doc, sel.Nodes[0]))
	})

	return BuildFields(raws, frameURL), nil
}

// staticRaw builds a RawElement from a parsed node, mirroring what the
// in-page harvest script collects.
func staticRaw(doc *goquery.Document, n *html.Node) RawElement {
	raw := RawElement{
		Tag:          n.Data,
		Type:         nodeAttr(n, "type"),
		Name:         nodeAttr(n, "name"),
		ID:           nodeAttr(n, "id"),
		Placeholder:  nodeAttr(n, "placeholder"),
		AriaLabel:    nodeAttr(n, "aria-label"),
		Autocomplete: nodeAttr(n, "autocomplete"),
		Role:         nodeAttr(n, "role"),
		Class:        nodeAttr(n, "class"),
		Required:     hasAttr(n, "required"),
		DataAttrs:    map[string]string{},
	}

	for _, attr := range n.Attr {
		if strings.HasPrefix(attr.Key, "data-") && attr.Val != "" {
			raw.DataAttrs[attr.Key] = attr.Val
		}
	}

	raw.Hidden = staticHidden(n)
	raw.CookieAncestor = staticCookieAncestor(n)

	if raw.ID != "" {
		label := doc.Find(fmt.Sprintf(`label[for="%s"]`, escapeQuotes(raw.ID)))
		if label.Length() > 0 {
			raw.LabelText = strings.TrimSpace(label.First().Text())
		}
	}

	raw.StructuralPath = staticPath(n)
	return raw
}

// staticHidden approximates the liveness filter from inline styles.
func staticHidden(n *html.Node) bool {
	if nodeAttr(n, "type") == "hidden" {
		return true
	}
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		style := strings.ReplaceAll(strings.ToLower(nodeAttr(cur, "style")), " ", "")
		if strings.Contains(style, "display:none") {
			return true
		}
		if cur == n && strings.Contains(style, "visibility:hidden") {
			return true
		}
	}
	return false
}

func staticCookieAncestor(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		haystack := strings.ToLower(nodeAttr(cur, "id") + " " + nodeAttr(cur, "class"))
		for _, kw := range []string{"cookie", "consent", "gdpr", "onetrust", "cookiebot", "cc-banner"} {
			if strings.Contains(haystack, kw) {
				return true
			}
		}
	}
	return false
}

// staticPath mirrors the structural-path walk of the harvest script:
// ancestors upward, nth-of-type where siblings collide, stopping at the
// nearest form/main boundary or the first ancestor with an id.
func staticPath(n *html.Node) string {
	var parts []string
	cur := n
	for cur != nil && cur.Type == html.ElementNode {
		if id := nodeAttr(cur, "id"); id != "" {
			prefix := "#" + id
			if len(parts) == 0 {
				return prefix
			}
			return prefix + " > " + strings.Join(parts, " > ")
		}

		seg := cur.Data
		if parent := cur.Parent; parent != nil {
			same, index := siblingPosition(parent, cur)
			if same > 1 {
				seg += fmt.Sprintf(":nth-of-type(%d)", index)
			}
		}
		parts = append([]string{seg}, parts...)

		cur = cur.Parent
		if cur != nil && cur.Type == html.ElementNode && (cur.Data == "form" || cur.Data == "main") {
			boundary := cur.Data
			if id := nodeAttr(cur, "id"); id != "" {
				boundary += "#" + id
			}
			parts = append([]string{boundary}, parts...)
			break
		}
	}
	return strings.Join(parts, " > ")
}

// siblingPosition returns how many element children of parent share the
// node's tag, and the node's 1-based position among them.
func siblingPosition(parent, n *html.Node) (same, index int) {
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != n.Data {
			continue
		}
		same++
		if c == n {
			index = same
		}
	}
	return same, index
}

func nodeAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}

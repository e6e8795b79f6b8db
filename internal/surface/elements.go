// File: internal/surface/elements.go
package surface

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/xkilldash9x/aviator-cli/api/schemas"
)

// interactiveTags are the element types surfaced to the oracle.
var interactiveTags = map[string]bool{
	"a": true, "button": true, "input": true, "select": true,
	"textarea": true, "summary": true, "label": true, "option": true,
}

// maxElementText caps the visible text carried per element.
const maxElementText = 80

// maxElements caps the enumeration so a link farm cannot flood the
// oracle prompt.
const maxElements = 120

// parseElements walks serialized HTML and extracts interactive elements
// with their visible text and a best-effort selector.
func parseElements(rawHTML string) ([]schemas.Element, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}

	var out []schemas.Element
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(out) >= maxElements {
			return
		}
		if n.Type == html.ElementNode && interactiveTags[n.Data] {
			el := schemas.Element{
				Tag:      n.Data,
				Text:     clampText(nodeText(n)),
				Selector: nodeSelector(n),
			}
			if el.Text != "" || el.Selector != "" {
				out = append(out, el)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out, nil
}

// nodeText collects the concatenated text content of a node.
func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	// Inputs carry their label in attributes, not children.
	if n.Type == html.ElementNode && n.Data == "input" {
		for _, attr := range n.Attr {
			if attr.Key == "value" || attr.Key == "placeholder" || attr.Key == "aria-label" {
				if v := strings.TrimSpace(attr.Val); v != "" {
					return v
				}
			}
		}
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// nodeSelector builds a cheap selector: id when present, otherwise the
// tag with its name or type attribute.
func nodeSelector(n *html.Node) string {
	var name, typ string
	for _, attr := range n.Attr {
		switch attr.Key {
		case "id":
			if attr.Val != "" {
				return "#" + attr.Val
			}
		case "name":
			name = attr.Val
		case "type":
			typ = attr.Val
		}
	}
	if name != "" {
		return n.Data + `[name="` + name + `"]`
	}
	if typ != "" {
		return n.Data + `[type="` + typ + `"]`
	}
	return ""
}

func clampText(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxElementText {
		return s[:maxElementText]
	}
	return s
}

package panels

import (
	"bytes"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// extractValues walks a rendered panel page and returns id → trimmed text for
// every element carrying an id attribute. The walk is generic; mapping ids
// onto telemetry fields is the per-panel (and deliberately thin) part.
func extractValues(page []byte) map[string]string {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil
	}

	values := make(map[string]string)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Key == "id" && a.Val != "" {
					values[a.Val] = strings.TrimSpace(elementText(n))
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return values
}

func elementText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return sb.String()
}

// parseNumber pulls the leading numeric value out of a rendered cell, which
// usually carries a unit suffix ("78.5 °F", "3200 ppm").
func parseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' || (end == 0 && c == '-') {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return nil
	}

	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return nil
	}

	return &v
}

// parseOnOff interprets a rendered equipment-state cell.
func parseOnOff(s string) *bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "running", "1", "true", "enabled":
		b := true
		return &b
	case "off", "stopped", "0", "false", "disabled":
		b := false
		return &b
	default:
		return nil
	}
}

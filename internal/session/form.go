package session

import (
	"bytes"
	"strings"

	"codeberg.org/mutker/poolwatch/internal/errors"
	"golang.org/x/net/html"
)

// loginForm is the result of discovering a login form at runtime. The hidden
// anti-forgery fields and the actual input names vary between firmware
// versions, so none of them are assumed stable.
type loginForm struct {
	action        string
	hidden        map[string]string
	usernameField string
	passwordField string
}

// discoverLoginForm walks the page and returns the first form that carries a
// password input, together with its hidden fields and discovered input names.
func discoverLoginForm(page []byte) (*loginForm, error) {
	errFactory := errors.New()

	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, errFactory.Wrap(ErrAuthenticationFailed, err)
	}

	var found *loginForm
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "form" {
			if form := parseForm(n); form.passwordField != "" {
				found = form
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if found == nil {
		return nil, errFactory.WithMessage(ErrAuthenticationFailed, "login page has no password form")
	}

	return found, nil
}

func parseForm(form *html.Node) *loginForm {
	result := &loginForm{
		action: attr(form, "action"),
		hidden: make(map[string]string),
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "input" {
			name := attr(n, "name")
			if name != "" {
				switch strings.ToLower(attr(n, "type")) {
				case "hidden":
					result.hidden[name] = attr(n, "value")
				case "password":
					if result.passwordField == "" {
						result.passwordField = name
					}
				case "text", "email", "":
					if result.usernameField == "" {
						result.usernameField = name
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(form)

	return result
}

// hasPasswordField reports whether the page still contains a password input,
// which after a login submission means the form was re-rendered and the
// credentials were rejected.
func hasPasswordField(page []byte) bool {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return false
	}

	var found bool
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode && n.Data == "input" &&
			strings.EqualFold(attr(n, "type"), "password") {
			found = true
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return found
}

// errorIndicator returns the text of the first element whose id or class
// mentions "error", or "" when the page carries none.
func errorIndicator(page []byte) string {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return ""
	}

	var found string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != "" {
			return
		}
		if n.Type == html.ElementNode {
			marker := strings.ToLower(attr(n, "id") + " " + attr(n, "class"))
			if strings.Contains(marker, "error") {
				if text := strings.TrimSpace(nodeText(n)); text != "" {
					found = text
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return found
}

func nodeText(n *html.Node) string {
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

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

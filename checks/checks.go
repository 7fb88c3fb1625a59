// Package checks provides helpers for checking rendered viewfield output.
//
// Example usage with an HTML check:
//
//	body := `<article data-entity="node/1"><h2>First</h2></article>`
//	if msg := checks.HTML("article>h2 == First", body); msg != "" {
//		log.Fatal(msg)
//	}
package checks

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ericchiang/css"
	"golang.org/x/net/html"

	"blake.io/viewfield"
)

// HTML checks the inner HTML of elements matching a CSS selector in body.
//
// It uses [Text] for comparison, supporting operators
// like ==, !=, ~, !~, contains, and !contains.
//
// An additional "count" operator compares the number of matched elements
// against the expected value.
//
// The check should contain: selector op want.
// For example:
//
//	.view__title == Related to 2
//	article>h2 contains First
//	.field__item count 2
//
// # Selectors
//
// Selectors must not contain spaces. CSS provides several combinators
// that can be used without spaces:
//
//   - "parent>child" selects direct children (e.g., "ul>li")
//   - "a~b" selects siblings of a that are b (general sibling)
//   - "a+b" selects the immediate sibling b after a (adjacent sibling)
//   - "a,b" selects elements matching either a or b
//
// # Attributes
//
// A selector ending in @name compares the value of the attribute name of
// the first match instead of its inner HTML:
//
//	article@data-entity == node/1
//
// A missing attribute compares as the empty string.
//
// # No Match Behavior
//
// If no elements match the selector, it returns an error saying
// "no elements match selector {selector}" (except for count operator,
// which returns 0 and only errors if the expected count is non-zero).
//
// Returns empty string on success, error message on failure.
func HTML(check, body string) string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return fmt.Sprintf("error parsing HTML: %v", err)
	}
	return Node(check, doc)
}

// Node is like [HTML] but checks an already parsed or rendered node.
func Node(check string, n *html.Node) string {
	selector, op, want := viewfield.ParseFields3(check)
	msg, ok := Text(selector, op, "_", want)
	if !ok && op != "count" {
		return msg
	}

	query, attr, hasAttr := cutAttr(selector)
	sel, err := css.Parse(query)
	if err != nil {
		return fmt.Sprintf("error parsing selector %q: %v", query, err)
	}

	matches := sel.Select(n)

	if op == "count" {
		if want == "" {
			return "count operator requires non-empty want value"
		}
		got := strconv.Itoa(len(matches))
		msg, _ := Text(selector, "==", got, want)
		return msg
	}

	if len(matches) == 0 {
		return fmt.Sprintf("no elements match selector %q", query)
	}

	var got string
	if hasAttr {
		got = attrValue(matches[0], attr)
	} else {
		got = innerHTML(matches[0])
	}
	msg, _ = Text(selector, op, got, want)
	return msg
}

// cutAttr splits a trailing @name from selector. An @ inside an attribute
// selector such as [href$="@x"] is left alone.
func cutAttr(selector string) (query, attr string, ok bool) {
	i := strings.LastIndexByte(selector, '@')
	if i <= 0 || strings.ContainsAny(selector[i+1:], `]"'`) {
		return selector, "", false
	}
	return selector[:i], selector[i+1:], true
}

func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val
		}
	}
	return ""
}

// innerHTML returns the inner HTML of a node as a string.
func innerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		html.Render(&buf, c)
	}
	return buf.String()
}

// Text compares got against want using the specified operator op
// and returns a failure message when the comparison does not hold.
// An empty string means the check passed.
//
// Supported operators:
//   - "==": equality
//   - "!=": inequality
//   - "~": regex match
//   - "!~": regex non-match
//   - "contains": substring presence
//   - "!contains": substring absence
//
// If valid is false, the message indicates an error in the check itself.
// If valid is true, the message indicates a failed check.
func Text(what, op, got, want string) (msg string, valid bool) {
	var re *regexp.Regexp
	switch op {
	case "~", "!~":
		var err error
		re, err = regexp.Compile(want)
		if err != nil {
			return fmt.Sprintf("error compiling regex %#q: %v", want, err), false
		}
	default:
		if want == "" {
			return "non-regex comparison requires non-empty want value", false
		}
	}

	switch op {
	case "==":
		if got != want {
			return fmt.Sprintf("%s = %#q, want %#q", what, got, want), true
		}
	case "!=":
		if got == want {
			return fmt.Sprintf("%s == %#q (but should not)", what, want), true
		}
	case "~":
		if !re.MatchString(got) {
			return fmt.Sprintf("%s does not match %#q (but should)\t%s", what, want, indentText(got)), true
		}
	case "!~":
		if re.MatchString(got) {
			return fmt.Sprintf("%s matches %#q (but should not)\t%s", what, want, indentText(got)), true
		}
	case "contains":
		if !strings.Contains(got, want) {
			return fmt.Sprintf("%s does not contain %#q (but should)\t%s", what, want, indentText(got)), true
		}
	case "!contains":
		if strings.Contains(got, want) {
			return fmt.Sprintf("%s contains %#q (but should not)\t%s", what, want, indentText(got)), true
		}
	default:
		return fmt.Sprintf("unknown operator %q", op), false
	}

	return "", true
}

// indentText formats text for inclusion in error messages.
func indentText(text string) string {
	if text == "" {
		return "(empty)"
	}
	if text == "\n" {
		return "(blank line)"
	}
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return "(blank lines)"
	}
	text = strings.ReplaceAll(text, "\n", "\n\t")
	return text
}

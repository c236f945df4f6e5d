package parser

import (
	"bytes"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// xpathDoc parses an HTML body for XPath evaluation, independent of the
// goquery document so both selector engines can run over the same response.
func xpathDoc(body []byte) (*html.Node, error) {
	return html.Parse(bytes.NewReader(body))
}

// xpathText evaluates an XPath expression and returns the first match's
// trimmed inner text, "" when nothing matches or the expression is invalid.
func xpathText(doc *html.Node, expr string) string {
	node, err := htmlquery.Query(doc, expr)
	if err != nil || node == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.InnerText(node))
}

package scrub

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yosssi/gohtml"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// generateOutput produces the final output in the configured format.
func (c *Cleaner) generateOutput(doc *goquery.Document) (string, error) {
	switch c.config.Output {
	case OutputHTML:
		return renderDocument(doc)
	case OutputText:
		return textOutput(doc), nil
	default:
		return prettyOutput(doc)
	}
}

// renderDocument serializes the whole document, doctype included.
func renderDocument(doc *goquery.Document) (string, error) {
	return goquery.OuterHtml(doc.Selection)
}

// prettyOutput renders the document and re-indents it one node per line.
// Whitespace-only text between tags is dropped, so the output is stable
// when fed back through the cleaner.
func prettyOutput(doc *goquery.Document) (string, error) {
	raw, err := renderDocument(doc)
	if err != nil {
		return "", err
	}
	return gohtml.Format(raw), nil
}

// textOutput returns the body text with whitespace collapsed.
func textOutput(doc *goquery.Document) string {
	text := doc.Find("body").Text()
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
}

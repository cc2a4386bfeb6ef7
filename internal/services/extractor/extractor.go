// Package extractor turns raw page HTML into the clean text and markdown
// views the question answering pipeline consumes.
package extractor

import (
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
)

// Elements whose content carries no prose and is removed before extraction.
var strippedSelectors = []string{
	"script", "style", "noscript", "code", "pre", "svg", "canvas",
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Extractor produces plain-text and markdown views of page HTML.
type Extractor struct {
	converter *md.Converter
	logger    arbor.ILogger
}

func New(logger arbor.ILogger) *Extractor {
	return &Extractor{
		converter: md.NewConverter("", true, nil),
		logger:    logger,
	}
}

// Text extracts the visible prose of a page: non-content elements are
// removed, the remaining text concatenated and whitespace collapsed to
// single spaces.
func (e *Extractor) Text(pageHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse page HTML: %w", err)
	}

	for _, sel := range strippedSelectors {
		doc.Find(sel).Remove()
	}

	text := doc.Text()
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text), nil
}

// Title returns the document title, or the first h1 when no title element
// exists.
func (e *Extractor) Title(pageHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return ""
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	return title
}

// Markdown converts page HTML to markdown for the stored page snapshot.
func (e *Extractor) Markdown(pageHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse page HTML: %w", err)
	}

	for _, sel := range []string{"script", "style", "noscript", "svg", "canvas"} {
		doc.Find(sel).Remove()
	}

	rendered, err := goquery.OuterHtml(doc.Selection)
	if err != nil {
		return "", fmt.Errorf("failed to render page HTML: %w", err)
	}

	markdown, err := e.converter.ConvertString(rendered)
	if err != nil {
		return "", fmt.Errorf("failed to convert to markdown: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}

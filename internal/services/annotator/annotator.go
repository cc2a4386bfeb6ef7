// Package annotator rewrites HTML so that difficult words become explainable
// click targets. Each qualifying token is wrapped in a marker element carrying
// the word and the URL-encoded trimmed text-node sentence:
//
//	<span class="df-word" data-word="..." data-sent="...">word</span>
//
// The pass is idempotent: text already inside a marker is never re-wrapped,
// and Strip restores the original text content byte-for-byte.
package annotator

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/ternarybob/arbor"
	"golang.org/x/net/html"

	"github.com/ternarybob/lexia/internal/models"
	"github.com/ternarybob/lexia/internal/services/classifier"
)

// MarkerClass is the class of a difficult-word marker element.
const MarkerClass = "df-word"

// Subtrees rooted at these elements never receive markers. Script-like
// elements hold no prose; annotating inside interactive elements would corrupt
// their semantics or intercept clicks.
var skipTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"a":        true,
	"button":   true,
	"input":    true,
	"select":   true,
	"label":    true,
	"summary":  true,
	"option":   true,
}

// Annotator performs the difficult-word annotation pass.
type Annotator struct {
	classifier *classifier.Classifier
	wordRegex  *regexp.Regexp
	logger     arbor.ILogger
}

// New creates an annotator using the given classifier. The tokenizer matches
// runs of Unicode letters of at least the classifier's minimum length.
func New(c *classifier.Classifier, logger arbor.ILogger) *Annotator {
	pattern := fmt.Sprintf(`\p{L}{%d,}`, c.MinWordLength())
	return &Annotator{
		classifier: c,
		wordRegex:  regexp.MustCompile(pattern),
		logger:     logger,
	}
}

// AnnotateHTML annotates an HTML fragment and returns the rewritten markup
// together with the number of markers created.
func (a *Annotator) AnnotateHTML(fragment string) (string, int, error) {
	nodes, err := ParseFragment(fragment)
	if err != nil {
		return "", 0, fmt.Errorf("failed to parse fragment: %w", err)
	}

	count := 0
	for _, n := range nodes {
		count += a.Annotate(n)
	}

	out, err := RenderFragment(nodes)
	if err != nil {
		return "", 0, fmt.Errorf("failed to render fragment: %w", err)
	}
	return out, count, nil
}

// Annotate walks the subtree rooted at n depth-first and wraps difficult
// tokens in marker elements. Returns the number of markers created.
func (a *Annotator) Annotate(n *html.Node) int {
	if n.Type == html.ElementNode && skipSubtree(n) {
		return 0
	}

	count := 0

	// Children are collected first: annotation replaces text nodes in
	// place, which would break sibling iteration mid-walk.
	var children []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}

	for _, c := range children {
		switch c.Type {
		case html.TextNode:
			count += a.annotateTextNode(n, c)
		case html.ElementNode:
			count += a.Annotate(c)
		}
	}

	return count
}

// AnnotateText produces the span-list view over a plain text buffer: one span
// per difficult token with byte offsets into the unmodified input. The
// sentence carried by every span is the trimmed buffer, the same text-node
// level context the HTML markers use.
func (a *Annotator) AnnotateText(text string) []models.Span {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	sentence := strings.TrimSpace(text)
	var spans []models.Span
	for _, loc := range a.wordRegex.FindAllStringIndex(text, -1) {
		word := text[loc[0]:loc[1]]
		if !a.classifier.IsDifficult(word) {
			continue
		}
		spans = append(spans, models.Span{
			Word:     word,
			Start:    loc[0],
			End:      loc[1],
			Sentence: sentence,
		})
	}
	return spans
}

// StripHTML removes all markers from an HTML fragment, restoring the plain
// text they wrapped.
func (a *Annotator) StripHTML(fragment string) (string, error) {
	nodes, err := ParseFragment(fragment)
	if err != nil {
		return "", fmt.Errorf("failed to parse fragment: %w", err)
	}

	for _, n := range nodes {
		Strip(n)
	}

	out, err := RenderFragment(nodes)
	if err != nil {
		return "", fmt.Errorf("failed to render fragment: %w", err)
	}
	return out, nil
}

// Strip replaces every marker element in the subtree with its text content.
// Marker state (word, sentence) was derived from the text itself, so the
// original content is fully recovered.
func Strip(n *html.Node) {
	var markers []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "span" && hasClass(node, MarkerClass) {
			markers = append(markers, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	for _, marker := range markers {
		parent := marker.Parent
		if parent == nil {
			continue
		}
		text := &html.Node{Type: html.TextNode, Data: TextContent(marker)}
		parent.InsertBefore(text, marker)
		parent.RemoveChild(marker)
	}
}

// annotateTextNode tokenizes one text node and replaces it with a sequence of
// plain text nodes and marker elements. Returns the number of markers created.
func (a *Annotator) annotateTextNode(parent, textNode *html.Node) int {
	text := textNode.Data
	if strings.TrimSpace(text) == "" {
		return 0
	}

	matches := a.wordRegex.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return 0
	}

	sentence := url.QueryEscape(strings.TrimSpace(text))

	var replacement []*html.Node
	count := 0
	last := 0

	for _, loc := range matches {
		word := text[loc[0]:loc[1]]
		if !a.classifier.IsDifficult(word) {
			continue
		}

		if loc[0] > last {
			replacement = append(replacement, &html.Node{
				Type: html.TextNode,
				Data: text[last:loc[0]],
			})
		}

		replacement = append(replacement, newMarker(word, sentence))
		count++
		last = loc[1]
	}

	if count == 0 {
		return 0
	}

	if last < len(text) {
		replacement = append(replacement, &html.Node{
			Type: html.TextNode,
			Data: text[last:],
		})
	}

	for _, node := range replacement {
		parent.InsertBefore(node, textNode)
	}
	parent.RemoveChild(textNode)

	return count
}

// newMarker builds a marker element for one difficult word.
func newMarker(word, encodedSentence string) *html.Node {
	marker := &html.Node{
		Type: html.ElementNode,
		Data: "span",
		Attr: []html.Attribute{
			{Key: "class", Val: MarkerClass},
			{Key: "data-word", Val: word},
			{Key: "data-sent", Val: encodedSentence},
		},
	}
	marker.AppendChild(&html.Node{Type: html.TextNode, Data: word})
	return marker
}

// skipSubtree reports whether annotation must not descend into an element:
// non-content tags, interactive elements, and existing markers or bionic
// wrappers (splitting a bolded word across two text nodes would otherwise
// produce partial re-annotation).
func skipSubtree(n *html.Node) bool {
	if skipTags[strings.ToLower(n.Data)] {
		return true
	}
	if hasAttr(n, "onclick") || hasAttr(n, "tabindex") {
		return true
	}
	if role, ok := getAttr(n, "role"); ok && strings.EqualFold(role, "button") {
		return true
	}
	if hasClass(n, MarkerClass) || hasClass(n, "br-word") {
		return true
	}
	return false
}

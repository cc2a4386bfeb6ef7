// Package bionic implements the bold-prefix typographic transform: the first
// few letters of every word are bolded to give the eye a fixation anchor.
// Words become
//
//	<span class="br-word"><b>pre</b>fix</span>
//
// and processed blocks are flagged so repeated passes over the same content
// are no-ops.
package bionic

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/ternarybob/lexia/internal/services/annotator"
)

// WrapperClass is the class of a bionic word wrapper element.
const WrapperClass = "br-word"

// ProcessedAttr flags a block element whose text has already been converted.
const ProcessedAttr = "data-br-done"

// Tags whose text is never converted.
var skipTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"textarea": true,
}

// SplitPoint returns how many leading runes of a word are bolded. Short words
// get one, medium two or three, and long words a fraction of their length.
func SplitPoint(word string) int {
	n := 0
	for range word {
		n++
	}
	switch {
	case n <= 1:
		return 1
	case n <= 3:
		return 1
	case n <= 6:
		return 2
	case n <= 9:
		return 3
	default:
		return int(math.Ceil(float64(n) * 0.4))
	}
}

// Split divides a word into its bolded prefix and the remainder, counted in
// runes so multi-byte scripts split at a letter boundary.
func Split(word string) (bold, rest string) {
	k := SplitPoint(word)
	i := 0
	for idx := range word {
		if i == k {
			return word[:idx], word[idx:]
		}
		i++
	}
	return word, ""
}

// ApplyHTML converts an HTML fragment and returns the rewritten markup
// together with the number of words wrapped.
func ApplyHTML(fragment string) (string, int, error) {
	nodes, err := annotator.ParseFragment(fragment)
	if err != nil {
		return "", 0, fmt.Errorf("failed to parse fragment: %w", err)
	}

	count := 0
	for _, n := range nodes {
		count += Apply(n)
	}

	out, err := annotator.RenderFragment(nodes)
	if err != nil {
		return "", 0, fmt.Errorf("failed to render fragment: %w", err)
	}
	return out, count, nil
}

// Apply converts every eligible text node in the subtree and marks processed
// block elements. Text already inside a wrapper, and blocks flagged with
// ProcessedAttr, are left alone, so the pass is idempotent. Annotation
// markers are descended into: the wrapper nests inside the marker, keeping a
// single click target for both features.
func Apply(n *html.Node) int {
	if n.Type == html.ElementNode {
		if skipTags[strings.ToLower(n.Data)] {
			return 0
		}
		if hasAttrValue(n, "class", WrapperClass) || hasAttrBool(n, ProcessedAttr) {
			return 0
		}
	}

	count := 0

	var children []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}

	for _, c := range children {
		switch c.Type {
		case html.TextNode:
			count += convertTextNode(n, c)
		case html.ElementNode:
			count += Apply(c)
		}
	}

	if count > 0 && n.Type == html.ElementNode && isBlockTag(n.Data) {
		n.Attr = append(n.Attr, html.Attribute{Key: ProcessedAttr, Val: "y"})
	}

	return count
}

// convertTextNode splits a text node into word and separator runs, wrapping
// each word run. Pictographic runs and whitespace pass through untouched.
func convertTextNode(parent, textNode *html.Node) int {
	text := textNode.Data
	if strings.TrimSpace(text) == "" {
		return 0
	}

	var replacement []*html.Node
	count := 0

	for _, run := range splitRuns(text) {
		if !run.word || containsPictographic(run.text) {
			replacement = append(replacement, &html.Node{Type: html.TextNode, Data: run.text})
			continue
		}
		replacement = append(replacement, newWrapper(run.text))
		count++
	}

	if count == 0 {
		return 0
	}

	for _, node := range replacement {
		parent.InsertBefore(node, textNode)
	}
	parent.RemoveChild(textNode)

	return count
}

// newWrapper builds <span class="br-word"><b>bold</b>rest</span>.
func newWrapper(word string) *html.Node {
	bold, rest := Split(word)

	wrapper := &html.Node{
		Type: html.ElementNode,
		Data: "span",
		Attr: []html.Attribute{{Key: "class", Val: WrapperClass}},
	}

	b := &html.Node{Type: html.ElementNode, Data: "b"}
	b.AppendChild(&html.Node{Type: html.TextNode, Data: bold})
	wrapper.AppendChild(b)

	if rest != "" {
		wrapper.AppendChild(&html.Node{Type: html.TextNode, Data: rest})
	}

	return wrapper
}

type run struct {
	text string
	word bool
}

// splitRuns partitions text into maximal letter runs and everything-else runs.
func splitRuns(text string) []run {
	var runs []run
	var current strings.Builder
	currentWord := false
	started := false

	flush := func() {
		if current.Len() > 0 {
			runs = append(runs, run{text: current.String(), word: currentWord})
			current.Reset()
		}
	}

	for _, r := range text {
		isWord := unicode.IsLetter(r) || unicode.Is(unicode.Mn, r)
		if started && isWord != currentWord {
			flush()
		}
		current.WriteRune(r)
		currentWord = isWord
		started = true
	}
	flush()

	return runs
}

// containsPictographic reports whether the run holds emoji or other symbol
// code points that must not be bolded.
func containsPictographic(s string) bool {
	for _, r := range s {
		if r >= 0x1F000 && r <= 0x1FAFF {
			return true
		}
		if r >= 0x2600 && r <= 0x27BF {
			return true
		}
		if unicode.Is(unicode.So, r) {
			return true
		}
	}
	return false
}

func isBlockTag(tag string) bool {
	switch strings.ToLower(tag) {
	case "p", "li", "h1", "h2", "h3", "h4", "h5", "h6", "td", "th", "blockquote", "div", "article", "section":
		return true
	}
	return false
}

func hasAttrValue(n *html.Node, key, want string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			for _, field := range strings.Fields(a.Val) {
				if field == want {
					return true
				}
			}
		}
	}
	return false
}

func hasAttrBool(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

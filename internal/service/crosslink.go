package service

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/loreforge/loreforge/internal/domain"
)

// Fuzzy name-match thresholds carried over from earlier link-merge tuning.
// Matching is currently exact whole-word; these bound any future scorer and
// are kept configurable rather than re-derived.
const (
	NameMatchMinScore    = 0.6
	NameMatchStrongScore = 0.85
)

// WikiLinkClass marks anchors inserted by the crosslink pass.
const WikiLinkClass = "wiki-link"

// LinkCandidate is one page a content field may link to.
type LinkCandidate struct {
	PageID    int64
	WorldID   int64
	ConceptID int64
	Name      string
}

// PageHref builds the canonical anchor target for a page.
func PageHref(worldID, conceptID, pageID int64) string {
	return fmt.Sprintf("/worlds/%d/concept/%d/page/%d", worldID, conceptID, pageID)
}

// BuildCandidates turns the pages visible to self into an ordered candidate
// list: self and pages flagged to stay out of links are excluded, and on a
// case-insensitive name collision the first-seen page wins.
func BuildCandidates(pages []domain.Page, self *domain.Page) []LinkCandidate {
	seen := make(map[string]bool, len(pages))
	candidates := make([]LinkCandidate, 0, len(pages))
	for _, p := range pages {
		if p.ID == self.ID || p.IgnoreCrosslink {
			continue
		}
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		candidates = append(candidates, LinkCandidate{
			PageID:    p.ID,
			WorldID:   p.WorldID,
			ConceptID: p.ConceptID,
			Name:      name,
		})
	}
	return candidates
}

// CrosslinkHTML wraps the first unlinked whole-word mention of each candidate
// name in an anchor targeting that candidate. It is a pure transform: parse,
// compute edits, render. The returned flag reports whether anything changed.
func CrosslinkHTML(fragment string, candidates []LinkCandidate) (string, bool, error) {
	if strings.TrimSpace(fragment) == "" || len(candidates) == 0 {
		return fragment, false, nil
	}

	nodes, err := parseFragment(fragment)
	if err != nil {
		return fragment, false, fmt.Errorf("failed to parse content: %w", err)
	}
	root := wrapNodes(nodes)

	changed := false
	for _, cand := range candidates {
		if hasExistingLink(root, cand) {
			continue
		}
		if linkFirstMention(root, cand) {
			changed = true
		}
	}

	if !changed {
		return fragment, false, nil
	}
	out, err := renderChildren(root)
	if err != nil {
		return fragment, false, fmt.Errorf("failed to render content: %w", err)
	}
	return out, true, nil
}

// UnlinkHTML strips every anchor whose href targets pageID, replacing the
// anchor with its visible text. Surrounding content is untouched.
func UnlinkHTML(fragment string, pageID int64) (string, bool, error) {
	if strings.TrimSpace(fragment) == "" {
		return fragment, false, nil
	}

	nodes, err := parseFragment(fragment)
	if err != nil {
		return fragment, false, fmt.Errorf("failed to parse content: %w", err)
	}
	root := wrapNodes(nodes)

	suffix := fmt.Sprintf("/page/%d", pageID)
	changed := false
	for {
		anchor := findAnchor(root, func(n *html.Node) bool {
			return strings.HasSuffix(attrValue(n, "href"), suffix)
		})
		if anchor == nil {
			break
		}
		text := &html.Node{Type: html.TextNode, Data: textContent(anchor)}
		anchor.Parent.InsertBefore(text, anchor)
		anchor.Parent.RemoveChild(anchor)
		changed = true
	}

	if !changed {
		return fragment, false, nil
	}
	out, err := renderChildren(root)
	if err != nil {
		return fragment, false, fmt.Errorf("failed to render content: %w", err)
	}
	return out, true, nil
}

func parseFragment(fragment string) ([]*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	return html.ParseFragment(strings.NewReader(fragment), ctx)
}

func wrapNodes(nodes []*html.Node) *html.Node {
	root := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root
}

func renderChildren(root *html.Node) (string, error) {
	var b strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// hasExistingLink reports whether the candidate is already represented: an
// anchor with the matching href triple, or any anchor whose visible text
// case-insensitively equals the candidate name.
func hasExistingLink(root *html.Node, cand LinkCandidate) bool {
	href := PageHref(cand.WorldID, cand.ConceptID, cand.PageID)
	return findAnchor(root, func(n *html.Node) bool {
		if attrValue(n, "href") == href {
			return true
		}
		return strings.EqualFold(strings.TrimSpace(textContent(n)), cand.Name)
	}) != nil
}

// linkFirstMention wraps the first whole-word, case-insensitive mention of
// the candidate name found in a text node outside any anchor. Matched text
// keeps its original casing.
func linkFirstMention(root *html.Node, cand LinkCandidate) bool {
	re, err := wholeWordPattern(cand.Name)
	if err != nil {
		return false
	}

	node := findTextNode(root, func(n *html.Node) bool {
		return re.MatchString(n.Data)
	})
	if node == nil {
		return false
	}

	loc := re.FindStringIndex(node.Data)
	before, matched, after := node.Data[:loc[0]], node.Data[loc[0]:loc[1]], node.Data[loc[1]:]

	anchor := &html.Node{
		Type:     html.ElementNode,
		Data:     "a",
		DataAtom: atom.A,
		Attr: []html.Attribute{
			{Key: "href", Val: PageHref(cand.WorldID, cand.ConceptID, cand.PageID)},
			{Key: "class", Val: WikiLinkClass},
			{Key: "title", Val: cand.Name},
		},
	}
	anchor.AppendChild(&html.Node{Type: html.TextNode, Data: matched})

	parent := node.Parent
	if before != "" {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: before}, node)
	}
	parent.InsertBefore(anchor, node)
	if after != "" {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: after}, node)
	}
	parent.RemoveChild(node)
	return true
}

func wholeWordPattern(name string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
}

// findAnchor returns the first anchor element satisfying match, in document
// order, or nil.
func findAnchor(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.A {
		if match(n) {
			return n
		}
		// Anchors do not nest; no need to descend.
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findAnchor(c, match); found != nil {
			return found
		}
	}
	return nil
}

// findTextNode returns the first text node outside any anchor satisfying
// match, in document order, or nil.
func findTextNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.A {
		return nil
	}
	if n.Type == html.TextNode {
		if match(n) {
			return n
		}
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findTextNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

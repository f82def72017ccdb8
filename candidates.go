// Copyright 2025 The article-scraper Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package articlescraper

import (
	"strings"

	"golang.org/x/net/html"
)

// classAndID is the combined class/id signature used for heuristic
// matching.
func classAndID(n *html.Node) string {
	class, _ := getAttr(n, "class")
	id, _ := getAttr(n, "id")
	return class + " " + id
}

// getClassWeight scores an element by its class and id names: ±25 for
// each positive/negative keyword match.
func getClassWeight(n *html.Node) int {
	weight := 0
	if class, ok := getAttr(n, "class"); ok {
		if reNegative.MatchString(class) {
			weight -= 25
		}
		if rePositive.MatchString(class) {
			weight += 25
		}
	}
	if id, ok := getAttr(n, "id"); ok {
		if reNegative.MatchString(id) {
			weight -= 25
		}
		if rePositive.MatchString(id) {
			weight += 25
		}
	}
	return weight
}

// linkDensity is the share of a node's text living inside links, 0..1.
// In-page hash links count reduced.
func linkDensity(n *html.Node) float64 {
	textLength := len(innerText(n, true))
	if textLength == 0 {
		return 0
	}
	linkLength := 0.0
	for _, link := range elementsByTag(n, "a") {
		coefficient := 1.0
		if href, ok := getAttr(link, "href"); ok && reHashURL.MatchString(href) {
			coefficient = 0.3
		}
		linkLength += float64(len(innerText(link, true))) * coefficient
	}
	return linkLength / float64(textLength)
}

// textDensity is the share of a node's text living inside the given
// descendant tags.
func textDensity(n *html.Node, tags ...string) float64 {
	textLength := len(innerText(n, false))
	if textLength == 0 {
		return 0
	}
	childrenLength := 0
	for _, child := range elementsByTag(n, tags...) {
		childrenLength += len(innerText(child, false))
	}
	return float64(childrenLength) / float64(textLength)
}

func charCount(n *html.Node, sep string) int {
	return strings.Count(innerText(n, false), sep)
}

// hasChildBlockElement reports whether the node contains block-level
// children anywhere beneath it.
func hasChildBlockElement(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if divToPElems[tagName(c)] || hasChildBlockElement(c) {
			return true
		}
	}
	return false
}

func isPhrasingContent(n *html.Node) bool {
	if n.Type == html.TextNode {
		return true
	}
	tag := tagName(n)
	if phrasingElems[tag] {
		return true
	}
	if tag == "A" || tag == "DEL" || tag == "INS" {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !isPhrasingContent(c) {
				return false
			}
		}
		return true
	}
	return false
}

func isProbablyVisible(n *html.Node) bool {
	_, hidden := getAttr(n, "hidden")
	ariaHidden, _ := getAttr(n, "aria-hidden")
	class, _ := getAttr(n, "class")
	hasFallbackImage := strings.Contains(class, "fallback-image")
	return (!hidden && ariaHidden != "true") || hasFallbackImage
}

// nodeAncestors returns the parent chain, innermost first, up to
// maxDepth. A maxDepth of 0 means unbounded.
func nodeAncestors(n *html.Node, maxDepth int) []*html.Node {
	var ancestors []*html.Node
	depth := 0
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			break
		}
		ancestors = append(ancestors, p)
		depth++
		if maxDepth > 0 && depth >= maxDepth {
			break
		}
	}
	return ancestors
}

// hasAncestorTag walks up through at most maxDepth+1 ancestors (the parent
// is depth 0) looking for the tag; maxDepth < 0 means unbounded. An optional filter must also accept the
// ancestor.
func hasAncestorTag(n *html.Node, tag string, maxDepth int, filter func(*html.Node) bool) bool {
	tag = strings.ToUpper(tag)
	depth := 0
	for p := n.Parent; p != nil; p = p.Parent {
		if maxDepth >= 0 && depth > maxDepth {
			return false
		}
		if tagName(p) == tag && (filter == nil || filter(p)) {
			return true
		}
		depth++
	}
	return false
}

// isSingleImage reports whether the node is an image or wraps exactly
// one image and nothing else.
func isSingleImage(n *html.Node) bool {
	if tagName(n) == "IMG" {
		return true
	}
	elems := childElements(n)
	if len(elems) != 1 || innerText(n, false) != "" {
		return false
	}
	return isSingleImage(elems[0])
}

// textSimilarity measures how much of b is covered by a's tokens, 0..1.
func textSimilarity(a, b string) float64 {
	tokensA := tokenize(a)
	tokensB := tokenize(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	inA := make(map[string]bool, len(tokensA))
	for _, t := range tokensA {
		inA[t] = true
	}

	totalB := len(strings.Join(tokensB, " "))
	var uniqB []string
	for _, t := range tokensB {
		if !inA[t] {
			uniqB = append(uniqB, t)
		}
	}
	distance := float64(len(strings.Join(uniqB, " "))) / float64(totalB)
	return 1 - distance
}

func tokenize(s string) []string {
	var tokens []string
	for _, t := range reTokenize.Split(strings.ToLower(s), -1) {
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// headerDuplicatesTitle checks whether an h1/h2 mostly repeats the
// already-extracted article title.
func headerDuplicatesTitle(n *html.Node, title string) bool {
	tag := tagName(n)
	if tag != "H1" && tag != "H2" {
		return false
	}
	if title == "" {
		return false
	}
	return textSimilarity(title, innerText(n, false)) > 0.75
}

// initialScore is the tag-based starting score of a candidate container.
func initialScore(n *html.Node) float64 {
	switch tagName(n) {
	case "DIV":
		return 5
	case "PRE", "TD", "BLOCKQUOTE":
		return 3
	case "ADDRESS", "OL", "UL", "DL", "DD", "DT", "LI", "FORM":
		return -3
	case "H1", "H2", "H3", "H4", "H5", "H6", "TH":
		return -5
	}
	return 0
}

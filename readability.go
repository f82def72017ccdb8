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
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// retryCharThreshold is the minimum amount of extracted text; below it
// the engine retries with progressively relaxed flags.
const retryCharThreshold = 500

// readabilityFlags controls which aggressive passes run. Retries drop
// them one by one, in order.
type readabilityFlags struct {
	stripUnlikely      bool
	weightClasses      bool
	cleanConditionally bool
}

// readability is the per-extraction state of the heuristic engine.
// Candidate scores live in a side map keyed by node identity so they
// never leak into the output document.
type readability struct {
	title      string
	flags      readabilityFlags
	scores     map[*html.Node]float64
	dataTables map[*html.Node]bool
}

// extractBodyReadability identifies the article body of doc by scoring
// and appends it to root. Used when no site rules matched anything.
func extractBodyReadability(doc *html.Node, root *html.Node, title string) error {
	flags := readabilityFlags{stripUnlikely: true, weightClasses: true, cleanConditionally: true}

	var bestContent *html.Node
	bestLength := 0

	for attempt := 0; attempt < 4; attempt++ {
		r := &readability{
			title:      title,
			flags:      flags,
			scores:     map[*html.Node]float64{},
			dataTables: map[*html.Node]bool{},
		}
		workDoc := cloneNode(doc)

		unwrapNoscriptImages(workDoc)
		replaceBrs(workDoc)
		r.prepDocument(workDoc)

		content := r.grabArticle(workDoc)
		if content != nil {
			r.prepArticle(content)
			length := len(innerText(content, true))
			if length >= retryCharThreshold {
				bestContent = content
				break
			}
			if length > bestLength {
				bestContent, bestLength = content, length
			}
		}

		// relax one flag and try again
		switch {
		case flags.stripUnlikely:
			flags.stripUnlikely = false
		case flags.weightClasses:
			flags.weightClasses = false
		case flags.cleanConditionally:
			flags.cleanConditionally = false
		default:
			attempt = 4
		}
	}

	if bestContent == nil {
		return fmt.Errorf("readability found no candidate: %w", ErrScrape)
	}

	for {
		child := bestContent.FirstChild
		if child == nil {
			break
		}
		bestContent.RemoveChild(child)
		root.AppendChild(child)
	}
	return nil
}

// prepDocument drops invisible and unlikely nodes and normalizes legacy
// markup before scoring.
func (r *readability) prepDocument(doc *html.Node) {
	for _, n := range elementsByTag(doc, "*") {
		if n.Parent == nil {
			continue
		}

		if !isProbablyVisible(n) {
			removeNode(n)
			continue
		}

		if r.flags.stripUnlikely {
			match := classAndID(n)
			tag := tagName(n)
			if reUnlikelyCandidates.MatchString(match) &&
				!reMaybeCandidate.MatchString(match) &&
				tag != "BODY" && tag != "A" &&
				!hasAncestorTag(n, "table", 3, nil) &&
				!hasAncestorTag(n, "code", 3, nil) {
				removeNode(n)
				continue
			}
		}

		if tagName(n) == "FONT" {
			n.Data = "span"
			n.DataAtom = atom.Span
		}
	}
}

// grabArticle scores candidate containers and returns a detached element
// holding the top candidate and its related siblings.
func (r *readability) grabArticle(doc *html.Node) *html.Node {
	var elementsToScore []*html.Node
	for _, n := range elementsByTag(doc, "p", "pre", "td", "blockquote") {
		elementsToScore = append(elementsToScore, n)
	}
	// paragraph-like divs participate too
	for _, n := range elementsByTag(doc, "div") {
		if !hasChildBlockElement(n) {
			elementsToScore = append(elementsToScore, n)
		}
	}

	var candidates []*html.Node
	for _, elem := range elementsToScore {
		if elem.Parent == nil {
			continue
		}
		text := innerText(elem, true)
		if len(text) < minContentLength {
			continue
		}

		ancestors := nodeAncestors(elem, 5)
		if len(ancestors) == 0 {
			continue
		}

		score := 1.0
		score += float64(strings.Count(text, ","))
		score += math.Min(math.Floor(float64(len(text))/100), 3)

		for level, ancestor := range ancestors {
			if _, initialized := r.scores[ancestor]; !initialized {
				r.scores[ancestor] = r.initializeNode(ancestor)
				candidates = append(candidates, ancestor)
			}
			divider := 1.0
			switch level {
			case 0:
				divider = 1
			case 1:
				divider = 2
			default:
				divider = float64(level) * 3
			}
			r.scores[ancestor] += score / divider
		}
	}

	var topCandidate *html.Node
	topScore := 0.0
	for _, candidate := range candidates {
		// scale by link density so navigation-heavy containers lose
		scaled := r.scores[candidate] * (1 - linkDensity(candidate))
		r.scores[candidate] = scaled
		if topCandidate == nil || scaled > topScore {
			topCandidate, topScore = candidate, scaled
		}
	}
	if topCandidate == nil {
		logrus.Debug("readability found no top candidate")
		return nil
	}

	return r.gatherSiblings(topCandidate, topScore)
}

// gatherSiblings pulls the top candidate plus siblings that score close
// enough or look like article continuation into a fresh container.
func (r *readability) gatherSiblings(topCandidate *html.Node, topScore float64) *html.Node {
	content := newElement("div")

	// a body or html winner cannot be transplanted itself
	if tag := tagName(topCandidate); tag == "BODY" || tag == "HTML" {
		for {
			child := topCandidate.FirstChild
			if child == nil {
				break
			}
			topCandidate.RemoveChild(child)
			content.AppendChild(child)
		}
		return content
	}

	parent := topCandidate.Parent
	if parent == nil {
		removeNode(topCandidate)
		content.AppendChild(topCandidate)
		return content
	}

	siblingThreshold := math.Max(10, topScore*0.2)
	topClass, _ := getAttr(topCandidate, "class")

	siblings := append([]*html.Node(nil), childElements(parent)...)
	for _, sibling := range siblings {
		keep := false

		if sibling == topCandidate {
			keep = true
		} else {
			bonus := 0.0
			if class, _ := getAttr(sibling, "class"); class != "" && class == topClass {
				bonus = topScore * 0.2
			}
			if score, scored := r.scores[sibling]; scored && score+bonus >= siblingThreshold {
				keep = true
			} else if tagName(sibling) == "P" {
				density := linkDensity(sibling)
				text := innerText(sibling, true)
				if len(text) > 80 && density < 0.25 {
					keep = true
				} else if len(text) > 0 && len(text) < 80 && density == 0 && strings.Contains(text, ". ") {
					keep = true
				}
			} else if isSingleImage(sibling) {
				keep = true
			}
		}

		if keep {
			removeNode(sibling)
			content.AppendChild(sibling)
		}
	}

	return content
}

// prepArticle cleans the grabbed content: conditional cleaning of fishy
// containers, outright removal of non-content tags, header cleanup, and
// class stripping.
func (r *readability) prepArticle(content *html.Node) {
	removeAttributes(content, "", "style")
	r.markDataTables(content)

	r.cleanConditionally(content, "form")
	r.cleanConditionally(content, "fieldset")
	clean(content, "object")
	clean(content, "embed")
	clean(content, "footer")
	clean(content, "link")
	clean(content, "aside")

	r.cleanHeaders(content)

	r.cleanConditionally(content, "table")
	r.cleanConditionally(content, "ul")
	r.cleanConditionally(content, "div")

	removeShortParagraphs(content)
	cleanClasses(content)
}

// cleanHeaders removes junk headings: low class weight or a repeat of
// the article title.
func (r *readability) cleanHeaders(content *html.Node) {
	headers := elementsByTag(content, "h1", "h2")
	for i := len(headers) - 1; i >= 0; i-- {
		n := headers[i]
		if n.Parent == nil {
			continue
		}
		if r.weight(n) < 0 {
			logrus.WithField("class", classAndID(n)).Debug("removing header with low class weight")
			removeNode(n)
			continue
		}
		if headerDuplicatesTitle(n, r.title) {
			removeNode(n)
		}
	}
}

func (r *readability) initializeNode(n *html.Node) float64 {
	return initialScore(n) + float64(r.weight(n))
}

func (r *readability) weight(n *html.Node) int {
	if !r.flags.weightClasses {
		return 0
	}
	return getClassWeight(n)
}

// removeShortParagraphs drops stub paragraphs: nearly no text and either
// zero or a pile of images.
func removeShortParagraphs(content *html.Node) {
	paragraphs := elementsByTag(content, "p")
	for i := len(paragraphs) - 1; i >= 0; i-- {
		p := paragraphs[i]
		imgCount := len(elementsByTag(p, "img"))
		embedCount := len(elementsByTag(p, "embed", "object", "iframe"))
		if embedCount > 0 {
			continue
		}
		if len(innerText(p, true)) < minContentLength && (imgCount == 0 || imgCount > 2) {
			removeNode(p)
		}
	}
}

// cleanClasses strips class attributes except a small preserved set, so
// scoring artifacts never leak into the output.
func cleanClasses(content *html.Node) {
	nodes := elementsByTag(content, "*")
	nodes = append(nodes, content)
	for _, n := range nodes {
		class, ok := getAttr(n, "class")
		if !ok {
			continue
		}
		var kept []string
		for _, c := range strings.Fields(class) {
			if preservedClasses[c] {
				kept = append(kept, c)
			}
		}
		if len(kept) > 0 {
			setAttr(n, "class", strings.Join(kept, " "))
		} else {
			removeAttr(n, "class")
		}
	}
}

// unwrapNoscriptImages replaces a lazy-loading placeholder image with the
// real one hidden inside the adjacent <noscript>.
func unwrapNoscriptImages(doc *html.Node) {
	for _, noscript := range elementsByTag(doc, "noscript") {
		img := singleImageFromNoscript(noscript)
		if img == nil {
			continue
		}

		prev := previousElementSibling(noscript)
		if prev == nil || !isSingleImage(prev) {
			continue
		}
		prevImg := prev
		if tagName(prevImg) != "IMG" {
			prevImg = firstElementByTag(prev, "img")
		}
		if prevImg == nil {
			continue
		}

		// keep attributes of the placeholder the real image lacks
		for _, attr := range prevImg.Attr {
			if _, exists := getAttr(img, attr.Key); !exists {
				setAttr(img, attr.Key, attr.Val)
			}
		}

		parent := noscript.Parent
		parent.InsertBefore(img, prev)
		removeNode(prev)
		removeNode(noscript)
	}
}

// singleImageFromNoscript parses the noscript's raw content and returns
// its lone image, or nil.
func singleImageFromNoscript(noscript *html.Node) *html.Node {
	var raw strings.Builder
	for c := noscript.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			raw.WriteString(c.Data)
		} else {
			// noscript was parsed as markup already
			raw.WriteString(serializeNode(c))
		}
	}
	if !strings.Contains(raw.String(), "<img") {
		return nil
	}
	parsed, err := parseHTML(raw.String())
	if err != nil {
		return nil
	}
	body := firstElementByTag(parsed, "body")
	if body == nil || !isSingleImage(body) {
		return nil
	}
	img := firstElementByTag(body, "img")
	if img == nil {
		return nil
	}
	removeNode(img)
	return img
}

func previousElementSibling(n *html.Node) *html.Node {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// replaceBrs collapses runs of two or more <br> into a paragraph break,
// pulling the following phrasing content into a new <p>.
func replaceBrs(doc *html.Node) {
	for _, br := range elementsByTag(doc, "br") {
		if br.Parent == nil {
			continue
		}

		next := br.NextSibling
		replaced := false

		// remove the rest of the <br> chain, keeping only this one
		for next != nil {
			isTextWhitespace := next.Type == html.TextNode && strings.TrimSpace(next.Data) == ""
			isBr := tagName(next) == "BR"
			nextIsBr := next.NextSibling != nil && tagName(next.NextSibling) == "BR"

			if !isTextWhitespace && !isBr {
				break
			}

			sibling := next.NextSibling
			if isBr || (isTextWhitespace && nextIsBr) {
				replaced = true
				removeNode(next)
			}
			next = sibling
		}
		if !replaced {
			continue
		}

		parent := br.Parent
		p := newElement("p")
		parent.InsertBefore(p, br)
		removeNode(br)

		next = p.NextSibling
		for next != nil {
			// another <br><br> ends this paragraph
			if tagName(next) == "BR" {
				if elem := nextElementSibling(next); elem != nil && tagName(elem) == "BR" {
					break
				}
			}
			if !isPhrasingContent(next) {
				break
			}

			sibling := next.NextSibling
			removeNode(next)
			p.AppendChild(next)
			next = sibling
		}

		if len(childElements(p)) == 0 && innerText(p, false) == "" {
			removeNode(p)
			continue
		}

		for last := p.LastChild; last != nil; last = p.LastChild {
			if last.Type == html.TextNode && strings.TrimSpace(last.Data) == "" {
				p.RemoveChild(last)
			} else {
				break
			}
		}

		if tagName(p.Parent) == "P" {
			p.Parent.Data = "div"
			p.Parent.DataAtom = atom.Div
		}
	}
}

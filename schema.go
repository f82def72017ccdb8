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
	"unicode/utf8"

	"golang.org/x/net/html"
)

// replaceSchemaOrgObjects rewrites schema.org VideoObject and ImageObject
// containers into plain <video>/<img> elements carrying just the content
// URL, dropping the metadata scaffolding around them.
func replaceSchemaOrgObjects(root *html.Node) {
	divs := elementsByTag(root, "div")
	for i := len(divs) - 1; i >= 0; i-- {
		n := divs[i]
		if n.Parent == nil {
			continue
		}
		itemType, _ := getAttr(n, "itemtype")
		switch {
		case strings.HasSuffix(itemType, "/VideoObject"):
			if contentURL := itemPropContent(n, "contentUrl", "embedUrl"); contentURL != "" {
				video := newElement("video")
				setAttr(video, "src", contentURL)
				setAttr(video, "controls", "")
				n.Parent.InsertBefore(video, n)
				removeNode(n)
			}
		case strings.HasSuffix(itemType, "/ImageObject"):
			if contentURL := itemPropContent(n, "contentUrl", "url"); contentURL != "" {
				img := newElement("img")
				setAttr(img, "src", contentURL)
				n.Parent.InsertBefore(img, n)
				removeNode(n)
			}
		}
	}
}

// itemPropContent finds the first itemprop of any given name and returns
// its URL-ish payload.
func itemPropContent(n *html.Node, names ...string) string {
	for _, elem := range elementsByTag(n, "*") {
		prop, ok := getAttr(elem, "itemprop")
		if !ok {
			continue
		}
		for _, name := range names {
			if prop != name {
				continue
			}
			for _, attr := range []string{"content", "href", "src"} {
				if val, ok := getAttr(elem, attr); ok && val != "" {
					return val
				}
			}
		}
	}
	return ""
}

// replaceEmojiImages unwraps emoji shims: an <img> whose alt is a single
// emoji becomes that emoji as plain text.
func replaceEmojiImages(root *html.Node) {
	for _, img := range elementsByTag(root, "img") {
		alt, ok := getAttr(img, "alt")
		if !ok || !isEmoji(alt) {
			continue
		}
		if img.Parent == nil {
			continue
		}
		text := newTextNode(alt)
		img.Parent.InsertBefore(text, img)
		removeNode(img)
	}
}

// isEmoji reports whether the string is exactly one emoji scalar.
func isEmoji(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return false
	}
	return isEmojiRune(r)
}

func isEmojiRune(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF: // pictographs, emoticons, symbols
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols and dingbats
		return true
	case r >= 0x2190 && r <= 0x21FF: // arrows
		return true
	case r == 0x2122 || r == 0x2139: // ™ and ℹ
		return true
	case r >= 0x2B00 && r <= 0x2BFF:
		return true
	}
	return false
}

// findLeadImage scores the images of the assembled article and returns
// the most thumbnail-worthy URL, or empty.
func findLeadImage(root *html.Node) string {
	images := elementsByTag(root, "img")
	bestScore := 0
	bestURL := ""
	for index, img := range images {
		src, ok := getAttr(img, "src")
		if !ok || src == "" || strings.HasPrefix(src, "data:") {
			continue
		}
		score := scoreImageURL(src) +
			scoreImgAttr(img) +
			scoreByParents(img) +
			scoreBySibling(img) +
			scoreByDimensions(img) +
			scoreByPosition(len(images), index) +
			scoreByAlt(img)
		if bestURL == "" || score > bestScore {
			bestScore, bestURL = score, src
		}
	}
	return bestURL
}

func scoreImageURL(url string) int {
	url = strings.TrimSpace(url)
	score := 0
	if rePositiveImageURL.MatchString(url) {
		score += 20
	}
	if reNegativeImageURL.MatchString(url) {
		score -= 20
	}
	if reGifURL.MatchString(url) {
		score -= 10
	}
	if reJpgURL.MatchString(url) {
		score += 10
	}
	return score
}

// an alt attribute usually means a non-presentational image
func scoreImgAttr(img *html.Node) int {
	if _, ok := getAttr(img, "alt"); ok {
		return 5
	}
	return 0
}

func scoreByParents(img *html.Node) int {
	score := 0
	parent := img.Parent
	var grandParent *html.Node
	if parent != nil {
		grandParent = parent.Parent
	}
	if (parent != nil && tagName(parent) == "FIGURE") ||
		(grandParent != nil && tagName(grandParent) == "FIGURE") {
		score += 25
	}
	if parent != nil && rePhotoHints.MatchString(classAndID(parent)) {
		score += 15
	}
	if grandParent != nil && grandParent.Type == html.ElementNode && rePhotoHints.MatchString(classAndID(grandParent)) {
		score += 15
	}
	return score
}

func scoreBySibling(img *html.Node) int {
	score := 0
	if sibling := nextElementSibling(img); sibling != nil {
		if tagName(sibling) == "FIGCAPTION" {
			score += 25
		}
		if rePhotoHints.MatchString(classAndID(sibling)) {
			score += 15
		}
	}
	return score
}

func scoreByDimensions(img *html.Node) int {
	score := 0
	width := imgDimension(img, "width")
	height := imgDimension(img, "height")
	src, _ := getAttr(img, "src")

	if width > 0 && width <= 50 {
		score -= 50
	}
	if height > 0 && height <= 50 {
		score -= 50
	}

	if width > 0 && height > 0 && !strings.Contains(src, "sprite") {
		area := width * height
		if area < 5000 {
			score -= 100
		} else {
			score += area / 1000
		}
	}
	return score
}

func imgDimension(img *html.Node, attr string) int {
	val, ok := getAttr(img, attr)
	if !ok {
		return 0
	}
	dim := 0
	for _, c := range val {
		if c < '0' || c > '9' {
			break
		}
		dim = dim*10 + int(c-'0')
	}
	return dim
}

func scoreByPosition(count, index int) int {
	return count/2 - index
}

func scoreByAlt(img *html.Node) int {
	if alt, ok := getAttr(img, "alt"); ok && isEmoji(alt) {
		return -100
	}
	return 0
}

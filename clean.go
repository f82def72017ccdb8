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
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// clean removes every element of the given tag outright, sparing
// whitelisted video embeds.
func clean(root *html.Node, tag string) {
	isEmbed := embedTagNames[strings.ToUpper(tag)]
	nodes := elementsByTag(root, tag)
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if isEmbed && hasVideoAttribute(n) {
			continue
		}
		removeNode(n)
	}
}

// cleanConditionally removes elements of the given tag when they look
// fishy: weighted signals over commas, paragraphs, images, links, embeds,
// headings, and list shape.
func (r *readability) cleanConditionally(root *html.Node, tag string) {
	if !r.flags.cleanConditionally {
		return
	}
	// traverse backwards so removal does not disturb the walk
	nodes := elementsByTag(root, tag)
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n.Parent == nil {
			continue
		}
		if r.shouldRemove(n, tag) {
			removeNode(n)
		}
	}
}

func (r *readability) shouldRemove(n *html.Node, tag string) bool {
	isList := tag == "ul" || tag == "ol"
	if !isList {
		listLength := 0
		for _, list := range elementsByTag(n, "ul", "ol") {
			listLength += len(innerText(list, false))
		}
		if total := len(innerText(n, false)); total > 0 {
			isList = float64(listLength)/float64(total) > 0.9
		}
	}

	if tag == "table" && r.dataTables[n] {
		return false
	}
	if hasAncestorTag(n, "table", -1, func(ancestor *html.Node) bool { return r.dataTables[ancestor] }) {
		return false
	}
	if hasAncestorTag(n, "code", 3, nil) {
		return false
	}

	weight := r.weight(n)
	if weight < 0 {
		return true
	}

	if charCount(n, ",") >= 10 {
		return false
	}

	p := len(elementsByTag(n, "p"))
	img := len(elementsByTag(n, "img"))
	li := len(elementsByTag(n, "li")) - 100
	input := len(elementsByTag(n, "input"))
	headingDensity := textDensity(n, "h1", "h2", "h3", "h4", "h5", "h6")

	embedCount := 0
	for _, embed := range elementsByTag(n, "object", "embed", "iframe") {
		if hasVideoAttribute(embed) {
			return false
		}
		embedCount++
	}

	if len(elementsByTag(n, "imageobject")) > 0 ||
		len(elementsByTag(n, "videoobject")) > 0 ||
		len(elementsByTag(n, "video")) > 0 {
		return false
	}

	density := linkDensity(n)
	contentLength := len(innerText(n, true))
	hasFigureAncestor := hasAncestorTag(n, "figure", 3, nil)

	haveToRemove := (img > 1 && float64(p)/float64(img) < 0.5 && !hasFigureAncestor) ||
		(!isList && li > p) ||
		(float64(input) > math.Floor(float64(p)/3)) ||
		(!isList && headingDensity < 0.9 && contentLength < minContentLength && (img == 0 || img > 2) && !hasFigureAncestor) ||
		(!isList && weight < 25 && density > 0.2) ||
		(weight >= 25 && density > 0.5) ||
		((embedCount == 1 && contentLength < 75) || embedCount > 1)

	// simple lists of images may stay
	if isList && haveToRemove {
		for _, child := range childElements(n) {
			if len(childElements(child)) > 1 {
				return haveToRemove
			}
		}
		if img == len(elementsByTag(n, "li")) {
			return false
		}
	}

	return haveToRemove
}

// markDataTables records which tables carry data-table signals, so
// conditional cleaning can spare real tables. The verdicts live in the
// per-extraction score state, never on the nodes themselves. Only the
// readability path marks tables; rule-driven extraction trusts its
// selectors and never cleans conditionally.
func (r *readability) markDataTables(root *html.Node) {
	for _, table := range elementsByTag(root, "table") {
		r.dataTables[table] = isDataTable(table)
	}
}

func isDataTable(table *html.Node) bool {
	if role, _ := getAttr(table, "role"); role == "presentation" {
		return false
	}
	if dt, _ := getAttr(table, "datatable"); dt == "0" {
		return false
	}
	if _, ok := getAttr(table, "summary"); ok {
		return true
	}

	if caption := firstElementByTag(table, "caption"); caption != nil && caption.FirstChild != nil {
		return true
	}

	if hasDataTableDescendant(table) {
		return true
	}

	// nested tables indicate layout
	if firstElementByTag(table, "table") != nil {
		return false
	}

	rows, columns := rowAndColumnCount(table)
	if rows >= 10 || columns > 4 {
		return true
	}

	return rows*columns > 10
}

func hasDataTableDescendant(table *html.Node) bool {
	for _, tag := range []string{"col", "colgroup", "tfoot", "thead", "th"} {
		if firstElementByTag(table, tag) != nil {
			return true
		}
	}
	return false
}

func rowAndColumnCount(table *html.Node) (int, int) {
	if tagName(table) != "TABLE" {
		return 0, 0
	}
	rows, columns := 0, 0
	for _, tr := range elementsByTag(table, "tr") {
		rowSpan := 1
		if span, ok := getAttr(tr, "rowspan"); ok {
			if parsed, err := strconv.Atoi(span); err == nil {
				rowSpan = parsed
			}
		}
		rows += rowSpan

		columnsInRow := 0
		for _, cell := range elementsByTag(tr, "td") {
			colSpan := 1
			if span, ok := getAttr(cell, "colspan"); ok {
				if parsed, err := strconv.Atoi(span); err == nil {
					colSpan = parsed
				}
			}
			columnsInRow += colSpan
		}
		if columnsInRow > columns {
			columns = columnsInRow
		}
	}
	return rows, columns
}

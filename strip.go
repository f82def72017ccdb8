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
	"net/url"
	"strings"

	whatwgURL "github.com/nlnwa/whatwg-url/url"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

var urlParser = whatwgURL.NewParser(whatwgURL.WithPercentEncodeSinglePercentSign())

// stripJunk runs the ordered cleanup passes over a freshly parsed page
// before body extraction. Substep failures are advisory: they are logged
// and swallowed so one bad selector cannot poison the whole page.
func stripJunk(doc *html.Node, rs, global *Ruleset, articleURL *url.URL) {
	if rs != nil {
		for _, expr := range rs.StripXPath {
			stripNodes(doc, expr)
		}
	}
	for _, expr := range global.StripXPath {
		stripNodes(doc, expr)
	}

	if rs != nil {
		for _, idOrClass := range rs.StripIDOrClass {
			stripIDOrClass(doc, idOrClass)
		}
	}
	for _, idOrClass := range global.StripIDOrClass {
		stripIDOrClass(doc, idOrClass)
	}

	if rs != nil {
		for _, srcPart := range rs.StripImageSrc {
			stripNodes(doc, fmt.Sprintf("//img[contains(@src,'%s')]", srcPart))
		}
	}
	for _, srcPart := range global.StripImageSrc {
		stripNodes(doc, fmt.Sprintf("//img[contains(@src,'%s')]", srcPart))
	}

	fixLazyImages(doc, "lazyload", "data-src")
	fixIframeSize(doc, "youtube.com")
	removeAttributes(doc, "", "style")
	removeAttributes(doc, "", "onclick")
	removeAttributes(doc, "img", "srcset")
	removeAttributes(doc, "img", "sizes")
	addAttributes(doc, "a", "target", "_blank")

	repairURLs(doc, "//img", "src", articleURL)
	repairURLs(doc, "//a", "src", articleURL)
	repairURLs(doc, "//a", "href", articleURL)
	repairURLs(doc, "//object", "data", articleURL)
	repairURLs(doc, "//iframe", "src", articleURL)

	// Readability.com and Instapaper.com ignore class names
	// See http://blog.instapaper.com/post/730281947
	stripNodes(doc, "//*[contains(@class,' entry-unrelated ') or contains(@class,' instapaper_ignore ')]")

	stripHiddenByStyle(doc)
	stripComments(doc)
	stripNodes(doc, "//a[not(node())]")
	stripNodes(doc, "//*[@type='text/css']")
}

// stripNodes removes every match of the expression, except whitelisted
// video embeds and nodes whose ancestor is part of the same result set
// (removing the ancestor removes them anyway).
func stripNodes(ctx *html.Node, expr string) {
	nodes, err := evaluateXPath(ctx, expr)
	if err != nil {
		return
	}

	resultSet := make(map[*html.Node]bool, len(nodes))
	for _, n := range nodes {
		resultSet[n] = true
	}

	for _, n := range nodes {
		if embedTagNames[tagName(n)] && hasVideoAttribute(n) {
			continue
		}
		if ancestorInSet(n, resultSet) {
			continue
		}
		removeNode(n)
	}
}

func hasVideoAttribute(n *html.Node) bool {
	for _, a := range n.Attr {
		if reVideos.MatchString(a.Val) {
			return true
		}
	}
	return false
}

func ancestorInSet(n *html.Node, set map[*html.Node]bool) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if set[p] {
			return true
		}
	}
	return false
}

// stripIDOrClass removes elements whose id or class contains the
// substring, excluding nodes an ancestor match would already remove.
func stripIDOrClass(ctx *html.Node, idOrClass string) {
	matches := func(n *html.Node) bool {
		class, _ := getAttr(n, "class")
		id, _ := getAttr(n, "id")
		return strings.Contains(class, idOrClass) || strings.Contains(id, idOrClass)
	}

	for _, n := range elementsByTag(ctx, "*") {
		if !matches(n) {
			continue
		}
		ancestorMatches := false
		for p := n.Parent; p != nil; p = p.Parent {
			if p.Type == html.ElementNode && matches(p) {
				ancestorMatches = true
				break
			}
		}
		if !ancestorMatches {
			removeNode(n)
		}
	}
}

// fixLazyImages copies the real image URL out of a lazy-loading
// attribute into src.
func fixLazyImages(ctx *html.Node, class, propertyURL string) {
	nodes, err := evaluateXPath(ctx, fmt.Sprintf("//img[contains(@class, '%s')]", class))
	if err != nil {
		return
	}
	for _, n := range nodes {
		if correctURL, ok := getAttr(n, propertyURL); ok {
			setAttr(n, "src", correctURL)
		}
	}
}

// fixIframeSize wraps matching embed iframes in a responsive container.
func fixIframeSize(ctx *html.Node, siteName string) {
	nodes, err := evaluateXPath(ctx, fmt.Sprintf("//iframe[contains(@src, '%s')]", siteName))
	if err != nil {
		return
	}
	for _, n := range nodes {
		parent := n.Parent
		if parent == nil {
			logrus.Debug("iframe has no parent to wrap")
			continue
		}
		wrapper := newElement("div")
		setAttr(wrapper, "class", "videoWrapper")
		setAttr(n, "width", "100%")
		setAttr(n, "height", "100%")
		parent.InsertBefore(wrapper, n)
		removeNode(n)
		wrapper.AppendChild(n)
	}
}

// removeAttributes drops the attribute from every element with the given
// tag, or from all elements when tag is empty.
func removeAttributes(ctx *html.Node, tag, attribute string) {
	if tag == "" {
		tag = "*"
	}
	for _, n := range elementsByTag(ctx, tag) {
		removeAttr(n, attribute)
	}
}

func addAttributes(ctx *html.Node, tag, attribute, value string) {
	for _, n := range elementsByTag(ctx, tag) {
		setAttr(n, attribute, value)
	}
}

// repairURLs rewrites relative attribute values into absolute URLs based
// on the article URL. Values that already parse as absolute (including
// mailto: and friends) are left alone.
func repairURLs(ctx *html.Node, expr, attribute string, articleURL *url.URL) {
	nodes, err := evaluateXPath(ctx, expr)
	if err != nil {
		return
	}
	for _, n := range nodes {
		val, ok := getAttr(n, attribute)
		if !ok {
			continue
		}
		if _, err := urlParser.Parse(val); err == nil {
			continue
		}
		fixed, err := completeURL(articleURL, val)
		if err != nil {
			logrus.WithFields(logrus.Fields{"url": val, "attr": attribute}).Debugf("url repair failed: %v", err)
			continue
		}
		setAttr(n, attribute, fixed.String())
	}
}

// completeURL builds an absolute URL from a relative attribute value.
// Protocol-relative values keep their own host and only gain the article
// URL's scheme.
func completeURL(articleURL *url.URL, incompleteURL string) (*url.URL, error) {
	var completed strings.Builder
	completed.WriteString(articleURL.Scheme)
	completed.WriteString(":")

	if !strings.HasPrefix(incompleteURL, "//") {
		host := articleURL.Hostname()
		if host == "" {
			return nil, fmt.Errorf("article url %s has no host: %w", articleURL, ErrScrape)
		}
		completed.WriteString("//")
		completed.WriteString(host)
	}

	if !strings.HasSuffix(completed.String(), "/") && !strings.HasPrefix(incompleteURL, "/") {
		completed.WriteString("/")
	}
	completed.WriteString(incompleteURL)

	fixed, err := url.Parse(completed.String())
	if err != nil {
		return nil, fmt.Errorf("repaired url %q does not parse: %w", completed.String(), ErrURL)
	}
	return fixed, nil
}

func stripHiddenByStyle(ctx *html.Node) {
	for _, n := range elementsByTag(ctx, "*") {
		if style, ok := getAttr(n, "style"); ok && reDisplayNone.MatchString(style) {
			removeNode(n)
		}
	}
}

func stripComments(ctx *html.Node) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		c := n.FirstChild
		for c != nil {
			next := c.NextSibling
			if c.Type == html.CommentNode {
				n.RemoveChild(c)
			} else {
				walk(c)
			}
			c = next
		}
	}
	walk(ctx)
}

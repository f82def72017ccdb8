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
	stdhtml "html"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// meta tag fallback chains, tried in order when no XPath selector matched
var (
	titleMetaNames  = []string{"dc:title", "dcterm:title", "og:title", "weibo:article:title", "weibo:webpage:title", "title", "twitter:title"}
	authorMetaNames = []string{"dc:creator", "dcterm:creator", "author"}
)

// dateLayouts are the accepted timestamp shapes, RFC 3339 first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.RFC1123Z,
}

// extractMetadata fills in title, author, date and thumbnail from the
// current page. Site selectors win over global ones, which win over
// generic <meta> hints. Fields already set by an earlier page are kept.
func extractMetadata(doc *html.Node, rs, global *Ruleset, article *Article) {
	if article.Title == "" {
		if title := extractTitle(doc, rs, global); title != "" {
			article.Title = stdhtml.UnescapeString(title)
		}
	}
	if article.Author == "" {
		if author := extractAuthor(doc, rs, global); author != "" {
			article.Author = stdhtml.UnescapeString(author)
		}
	}
	if article.Date.IsZero() {
		article.Date = extractDate(doc, rs, global)
	}
	if article.ThumbnailURL == "" {
		article.ThumbnailURL = getMeta(doc, "og:image")
	}
}

func extractTitle(doc *html.Node, rs, global *Ruleset) string {
	if rs != nil {
		for _, expr := range rs.TitleXPath {
			if title := extractValueMerge(doc, expr); title != "" {
				logrus.WithField("title", title).Debug("article title")
				return title
			}
		}
	}
	for _, expr := range global.TitleXPath {
		if title := extractValueMerge(doc, expr); title != "" {
			logrus.WithField("title", title).Debug("article title")
			return title
		}
	}

	for _, name := range titleMetaNames {
		if title := getMeta(doc, name); title != "" {
			return title
		}
	}
	return ""
}

func extractAuthor(doc *html.Node, rs, global *Ruleset) string {
	if rs != nil {
		for _, expr := range rs.AuthorXPath {
			if author := extractValue(doc, expr); author != "" {
				logrus.WithField("author", author).Debug("article author")
				return author
			}
		}
	}
	for _, expr := range global.AuthorXPath {
		if author := extractValue(doc, expr); author != "" {
			logrus.WithField("author", author).Debug("article author")
			return author
		}
	}

	for _, name := range authorMetaNames {
		if author := getMeta(doc, name); author != "" {
			return author
		}
	}
	return ""
}

func extractDate(doc *html.Node, rs, global *Ruleset) time.Time {
	selectors := []string{}
	if rs != nil {
		selectors = append(selectors, rs.DateXPath...)
	}
	selectors = append(selectors, global.DateXPath...)

	for _, expr := range selectors {
		dateString := extractValue(doc, expr)
		if dateString == "" {
			continue
		}
		if date, ok := parseDate(dateString); ok {
			return date
		}
		logrus.WithField("date", dateString).Warn("parsing the date string failed")
	}
	return time.Time{}
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, value); err == nil {
			return date, true
		}
	}
	return time.Time{}, false
}

// extractValue returns the text content of the first match.
func extractValue(ctx *html.Node, expr string) string {
	nodes, err := evaluateXPath(ctx, expr)
	if err != nil || len(nodes) == 0 {
		return ""
	}
	return innerText(nodes[0], false)
}

// extractValueMerge joins the text of every match on single spaces.
func extractValueMerge(ctx *html.Node, expr string) string {
	nodes, err := evaluateXPath(ctx, expr)
	if err != nil || len(nodes) == 0 {
		return ""
	}
	var parts []string
	for _, n := range nodes {
		parts = append(parts, strings.Fields(innerText(n, false))...)
	}
	return strings.Join(parts, " ")
}

func getMeta(ctx *html.Node, name string) string {
	expr := fmt.Sprintf("//meta[contains(@name, '%s') or contains(@property, '%s')]", name, name)
	nodes, err := evaluateXPath(ctx, expr)
	if err != nil {
		return ""
	}
	for _, n := range nodes {
		if content, ok := getAttr(n, "content"); ok && content != "" {
			return content
		}
	}
	return ""
}

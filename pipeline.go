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
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// parsePages drives extraction over one or more pages: page 1 plus any
// next_page_link chain, or a single_page_link redirect when the ruleset
// defines one.
func (s *Scraper) parsePages(ctx context.Context, f *fetcher, article *Article, pageURL *url.URL, ad *articleDocument, rs, global *Ruleset) error {
	headers := buildHeaders(pageURL.Hostname(), rs, global, s.headerRules)
	content, err := f.get(ctx, pageURL, headers)
	if err != nil {
		return err
	}

	// an uninformative host may still carry a known fingerprint
	if rs == nil {
		if canonical := detectFingerprint(content); canonical != nil {
			rs = s.registry.Get(canonical.Hostname())
			if rs != nil {
				logrus.WithField("host", canonical.Hostname()).Debug("ruleset found via fingerprint")
			}
		}
	}

	doc, err := parseReplacedHTML(content, rs, global)
	if err != nil {
		return err
	}

	if singlePageRule := selectRule(singlePageLink(rs), global.SinglePageLink); singlePageRule != "" {
		logrus.WithField("xpath", singlePageRule).Debug("single page link xpath specified in config")
		if singlePageURL := findPageURL(doc, singlePageRule, pageURL); singlePageURL != nil {
			logrus.WithField("url", singlePageURL.String()).Debug("single page link found")
			return s.parseSinglePage(ctx, f, article, singlePageURL, ad, rs, global)
		}
	}

	extractMetadata(doc, rs, global, article)
	stripJunk(doc, rs, global, pageURL)
	if err := s.extractBodyWithFallback(doc, ad, article, rs, global); err != nil {
		return err
	}

	for {
		nextURL := checkForNextPage(doc, rs, global)
		if nextURL == nil {
			break
		}
		headers := buildHeaders(nextURL.Hostname(), rs, global, s.headerRules)
		content, err := f.get(ctx, nextURL, headers)
		if err != nil {
			logrus.WithField("url", nextURL.String()).Warnf("fetching next page failed, returning pages so far: %v", err)
			break
		}
		doc, err = parseReplacedHTML(content, rs, global)
		if err != nil {
			logrus.WithField("url", nextURL.String()).Warnf("parsing next page failed, returning pages so far: %v", err)
			break
		}
		stripJunk(doc, rs, global, nextURL)
		if err := extractBody(doc, ad.root, rs, global); err != nil {
			logrus.WithField("url", nextURL.String()).Warnf("extracting next page failed, returning pages so far: %v", err)
			break
		}
	}

	return nil
}

// parseSinglePage redirects the whole extraction to the single-page
// variant of the article.
func (s *Scraper) parseSinglePage(ctx context.Context, f *fetcher, article *Article, pageURL *url.URL, ad *articleDocument, rs, global *Ruleset) error {
	headers := buildHeaders(pageURL.Hostname(), rs, global, s.headerRules)
	content, err := f.get(ctx, pageURL, headers)
	if err != nil {
		return err
	}
	doc, err := parseReplacedHTML(content, rs, global)
	if err != nil {
		return err
	}
	extractMetadata(doc, rs, global, article)
	stripJunk(doc, rs, global, pageURL)
	return s.extractBodyWithFallback(doc, ad, article, rs, global)
}

// extractBodyWithFallback tries rule-driven extraction first and falls
// back to the readability engine when no selector matched anything.
func (s *Scraper) extractBodyWithFallback(doc *html.Node, ad *articleDocument, article *Article, rs, global *Ruleset) error {
	err := extractBody(doc, ad.root, rs, global)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrScrape) {
		return err
	}

	logrus.Debug("no rule-driven body found, trying readability")
	if rerr := extractBodyReadability(doc, ad.root, article.Title); rerr != nil {
		return err
	}
	return nil
}

// parseReplacedHTML applies the raw-HTML string replacements (site rules
// first, then global) and parses the result.
func parseReplacedHTML(content string, rs, global *Ruleset) (*html.Node, error) {
	if rs != nil {
		for _, r := range rs.Replacements {
			content = strings.Replace(content, r.Find, r.ReplaceWith, -1)
		}
	}
	for _, r := range global.Replacements {
		content = strings.Replace(content, r.Find, r.ReplaceWith, -1)
	}
	return parseHTML(content)
}

// extractBody detaches every node the body selectors match and appends
// them to the article root, site selectors first, global only when the
// site ones produced nothing.
func extractBody(doc *html.Node, root *html.Node, rs, global *Ruleset) error {
	foundSomething := false

	if rs != nil {
		for _, expr := range rs.BodyXPath {
			if extractBodySingle(doc, root, expr) {
				foundSomething = true
			}
		}
	}
	if !foundSomething {
		for _, expr := range global.BodyXPath {
			if extractBodySingle(doc, root, expr) {
				foundSomething = true
			}
		}
	}
	if !foundSomething {
		return fmt.Errorf("body selectors matched nothing: %w", ErrScrape)
	}
	return nil
}

func extractBodySingle(doc *html.Node, root *html.Node, expr string) bool {
	nodes, err := evaluateXPath(doc, expr)
	if err != nil {
		return false
	}
	found := false
	for _, n := range nodes {
		removeAttr(n, "style")
		removeNode(n)
		root.AppendChild(n)
		found = true
	}
	return found
}

// checkForNextPage resolves the next page of a paginated article. The
// site ruleset's selector is authoritative when present; the global one
// is consulted only for sites without their own rules.
func checkForNextPage(doc *html.Node, rs, global *Ruleset) *url.URL {
	expr := ""
	if rs != nil && rs.NextPageLink != "" {
		expr = rs.NextPageLink
	} else if rs == nil && global.NextPageLink != "" {
		expr = global.NextPageLink
	}
	if expr == "" {
		return nil
	}

	href := getAttribute(doc, expr, "href")
	if href == "" {
		return nil
	}
	nextURL, err := url.Parse(href)
	if err != nil || !nextURL.IsAbs() {
		return nil
	}
	return nextURL
}

// findPageURL resolves a pagination selector to an absolute URL, fixing
// relative targets against the current page.
func findPageURL(doc *html.Node, expr string, pageURL *url.URL) *url.URL {
	href := getAttribute(doc, expr, "href")
	if href == "" {
		return nil
	}
	if u, err := url.Parse(href); err == nil && u.IsAbs() {
		return u
	}
	if fixed, err := completeURL(pageURL, href); err == nil {
		return fixed
	}
	return nil
}

// getAttribute returns the attribute value of the first match that
// carries it.
func getAttribute(ctx *html.Node, expr, attribute string) string {
	nodes, err := evaluateXPath(ctx, expr)
	if err != nil {
		return ""
	}
	for _, n := range nodes {
		if val, ok := getAttr(n, attribute); ok {
			return val
		}
	}
	return ""
}

func selectRule(siteRule, globalRule string) string {
	if siteRule != "" {
		return siteRule
	}
	return globalRule
}

func singlePageLink(rs *Ruleset) string {
	if rs == nil {
		return ""
	}
	return rs.SinglePageLink
}

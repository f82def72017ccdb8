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

// Package articlescraper extracts the primary readable content of an HTML
// page — body, title, author, date — and emits a cleaned, self-contained
// HTML fragment suitable for offline reading.
//
// Extraction is driven by per-host rule files (XPath selectors, string
// replacements, pagination hints) with a readability-style heuristic
// engine as fallback when no rules match.
package articlescraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
)

// DefaultMaxImageSize caps embedded image dimensions when image
// downloading is enabled.
var DefaultMaxImageSize = [2]int{2000, 2000}

// Scraper extracts articles from web pages. It is safe for concurrent use
// by multiple goroutines; the rule registry is read-only after New.
type Scraper struct {
	registry    *Registry
	headerRules []*HeaderRule
}

// New creates a Scraper, loading site rule files from configDir. An empty
// configDir yields a scraper with no rules; Parse will then fail with
// ErrConfig because the mandatory global ruleset is missing.
func New(configDir string) (*Scraper, error) {
	registry, err := LoadRegistry(configDir)
	if err != nil {
		return nil, err
	}
	return &Scraper{registry: registry}, nil
}

// NewWithRegistry creates a Scraper around an already-loaded registry.
func NewWithRegistry(registry *Registry) *Scraper {
	return &Scraper{registry: registry}
}

// AddHeaderRule registers extra per-host request headers, matched against
// the target host by domain glob.
func (s *Scraper) AddHeaderRule(rule *HeaderRule) error {
	if err := rule.Init(); err != nil {
		return err
	}
	s.headerRules = append(s.headerRules, rule)
	return nil
}

// Parse fetches the page at rawURL and extracts the article. When
// downloadImages is set, every image in the result is embedded as a data
// URI. The client is used for all network traffic and must follow
// redirects for GET requests; pass nil for http.DefaultClient.
func (s *Scraper) Parse(ctx context.Context, rawURL string, downloadImages bool, client *http.Client) (*Article, error) {
	logrus.WithField("url", rawURL).Info("scraping article")

	global := s.registry.Global()
	if global == nil {
		return nil, fmt.Errorf("no global ruleset loaded: %w", ErrConfig)
	}

	// embedded video pages have no article body worth scraping
	if m := reYouTubeWatch.FindStringSubmatch(rawURL); m != nil {
		return youtubeArticle(rawURL, m[1])
	}

	pageURL, err := url.Parse(rawURL)
	if err != nil || pageURL.Hostname() == "" {
		return nil, fmt.Errorf("url %q has no host: %w", rawURL, ErrConfig)
	}

	rs := s.registry.Get(pageURL.Hostname())
	if rs == nil {
		logrus.WithField("host", pageURL.Hostname()).Debug("no ruleset for host")
	}

	f := newFetcher(client)
	headers := buildHeaders(pageURL.Hostname(), rs, global, s.headerRules)

	finalURL, err := f.head(ctx, pageURL, headers)
	if err != nil {
		return nil, err
	}

	article := &Article{URL: finalURL}
	ad := newArticleDocument()

	if err := s.parsePages(ctx, f, article, finalURL, ad, rs, global); err != nil {
		return nil, err
	}

	replaceEmojiImages(ad.root)
	replaceSchemaOrgObjects(ad.root)
	if article.ThumbnailURL == "" {
		article.ThumbnailURL = findLeadImage(ad.root)
	}

	if downloadImages {
		downloader := NewImageDownloader(DefaultMaxImageSize[0], DefaultMaxImageSize[1], client)
		downloader.downloadImages(ctx, ad.doc)
		removeDuplicateDataImages(ad.doc)
	}

	ad.preventSelfClosingTags()

	content, err := ad.serialize()
	if err != nil {
		return nil, err
	}

	article.html = content
	return article, nil
}

func youtubeArticle(rawURL, videoID string) (*Article, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing video url %q: %w", rawURL, ErrURL)
	}
	return &Article{
		URL: u,
		html: fmt.Sprintf(
			`<iframe width="650" height="350" frameborder="0" src="https://www.youtube-nocookie.com/embed/%s" allowfullscreen></iframe>`,
			videoID),
	}, nil
}

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
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/kennygrant/sanitize"
)

// Article is the result of a parse: the cleaned content fragment plus the
// metadata that could be extracted. Fields are filled in monotonically
// during extraction and never overwritten once set.
type Article struct {
	// URL is the final article URL after redirects
	URL *url.URL
	// Title is the extracted article title, if any
	Title string
	// Author is the extracted author name, if any
	Author string
	// Date is the extracted publication date, if any
	Date time.Time
	// ThumbnailURL is the lead image URL from page metadata, if any
	ThumbnailURL string

	html string
}

// GetContent returns the serialized article document:
// <html><head><meta charset="utf-8"/></head><article>...</article></html>.
// For a YouTube watch URL it is the bare embed <iframe> instead.
func (a *Article) GetContent() string {
	return a.html
}

// GetText returns the article as plain text with tags stripped and
// whitespace normalized, e.g. for indexing or previews.
func (a *Article) GetText() string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(a.html))
	if err != nil {
		return ""
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// SaveHTML writes the article content to <dir>/<title>.html, creating the
// directory if needed. The file name is the title as a lowercase,
// dash-separated slug.
func (a *Article) SaveHTML(dir string) error {
	if a.html == "" {
		return fmt.Errorf("article has no content: %w", ErrUnknown)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", dir, ErrIO)
	}

	title := a.Title
	if title == "" {
		title = "Unknown Title"
	}
	path := filepath.Join(dir, strings.ToLower(sanitize.BaseName(title))+".html")
	if err := os.WriteFile(path, []byte(a.html), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, ErrIO)
	}
	return nil
}

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
	"net/url"
	"strings"
)

// fingerprint maps a textual marker inside a page body to the canonical
// host whose ruleset should handle the page. Consulted only when the
// article URL's own host has no ruleset.
type fingerprint struct {
	marker    string
	canonical string
}

// fingerprints is an ordered table; the first marker found in the page
// wins.
var fingerprints = []fingerprint{
	{marker: `<meta content="blogger" name="generator"`, canonical: "https://www.blogger.com"},
	{marker: `<meta name="generator" content="Blogger"`, canonical: "https://www.blogger.com"},
	{marker: `<meta name="generator" content="WordPress`, canonical: "https://wordpress.org"},
}

// detectFingerprint scans the downloaded HTML for a known marker and
// returns the canonical URL to use for ruleset lookup, or nil.
func detectFingerprint(body string) *url.URL {
	for _, fp := range fingerprints {
		if strings.Contains(body, fp.marker) {
			if u, err := url.Parse(fp.canonical); err == nil {
				return u
			}
		}
	}
	return nil
}

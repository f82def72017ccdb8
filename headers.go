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
	"net/http"

	"github.com/gobwas/glob"
)

// HeaderRule attaches extra request headers (cookies, referers, auth) to
// requests whose target host matches the domain glob.
type HeaderRule struct {
	// DomainGlob is a glob pattern matched against the request host,
	// e.g. "*.example.com"
	DomainGlob string
	// Headers are added to matching requests
	Headers map[string]string

	compiledGlob glob.Glob
}

// Init compiles the domain pattern. It must be called before the rule is
// used for matching.
func (r *HeaderRule) Init() error {
	c, err := glob.Compile(r.DomainGlob)
	if err != nil {
		return err
	}
	r.compiledGlob = c
	return nil
}

// Match checks whether the rule applies to the given host.
func (r *HeaderRule) Match(host string) bool {
	return r.compiledGlob != nil && r.compiledGlob.Match(host)
}

// buildHeaders assembles the request headers for a fetch: the default
// User-Agent, site and global ruleset http_header directives (site wins),
// and any matching per-host header rules.
func buildHeaders(host string, rs, global *Ruleset, rules []*HeaderRule) http.Header {
	headers := http.Header{}
	headers.Set("User-Agent", defaultUserAgent)

	if global != nil {
		for name, value := range global.HTTPHeaders {
			headers.Set(name, value)
		}
	}
	if rs != nil {
		for name, value := range rs.HTTPHeaders {
			headers.Set(name, value)
		}
	}
	for _, rule := range rules {
		if rule.Match(host) {
			for name, value := range rule.Headers {
				headers.Set(name, value)
			}
		}
	}
	return headers
}

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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Replace is a raw-HTML string replacement applied before parsing.
type Replace struct {
	Find        string
	ReplaceWith string
}

// Ruleset is the per-host extraction configuration loaded from a site
// rule file. Selector lists are ordered; first match wins for scalar
// fields while body selectors concatenate all matches.
type Ruleset struct {
	TitleXPath     []string
	AuthorXPath    []string
	DateXPath      []string
	BodyXPath      []string
	StripXPath     []string
	StripIDOrClass []string
	StripImageSrc  []string
	Replacements   []Replace
	SinglePageLink string
	NextPageLink   string
	// HTTPHeaders are extra request headers from http_header(name) directives.
	HTTPHeaders map[string]string
}

// GlobalRulesetName is the registry key of the mandatory fallback ruleset.
const GlobalRulesetName = "global"

// rule file directives that produce a value for a list or scalar field
type directiveHandler func(rs *Ruleset, value string)

var multiValueDirectives = map[string]directiveHandler{
	"title:":  func(rs *Ruleset, v string) { rs.TitleXPath = append(rs.TitleXPath, splitValues(v)...) },
	"body:":   func(rs *Ruleset, v string) { rs.BodyXPath = append(rs.BodyXPath, splitValues(v)...) },
	"date:":   func(rs *Ruleset, v string) { rs.DateXPath = append(rs.DateXPath, splitValues(v)...) },
	"author:": func(rs *Ruleset, v string) { rs.AuthorXPath = append(rs.AuthorXPath, splitValues(v)...) },
}

var singleValueDirectives = map[string]directiveHandler{
	"strip:":             func(rs *Ruleset, v string) { rs.StripXPath = append(rs.StripXPath, v) },
	"strip_id_or_class:": func(rs *Ruleset, v string) { rs.StripIDOrClass = append(rs.StripIDOrClass, v) },
	"strip_image_src:":   func(rs *Ruleset, v string) { rs.StripImageSrc = append(rs.StripImageSrc, v) },
	"single_page_link:":  func(rs *Ruleset, v string) { rs.SinglePageLink = v },
	"next_page_link:":    func(rs *Ruleset, v string) { rs.NextPageLink = v },
}

// directives recognized but deliberately ignored
var ignoredDirectives = []string{"tidy:", "prune:", "test_url:", "autodetect_on_failure:"}

const (
	findDirective          = "find_string:"
	replaceDirective       = "replace_string:"
	replaceInlineDirective = "replace_string("
	headerDirective        = "http_header("
)

// directiveValue cuts the directive prefix, trims, and drops a trailing
// "# comment".
func directiveValue(line, directive string) string {
	value := strings.TrimSpace(line[len(directive):])
	if pos := strings.Index(value, "#"); pos >= 0 {
		value = strings.TrimSpace(value[:pos])
	}
	return value
}

func splitValues(value string) []string {
	parts := strings.Split(value, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseRuleset reads a single line-oriented rule file. Files without any
// body selector are invalid.
func ParseRuleset(path string) (*Ruleset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rule file %s: %w", path, ErrIO)
	}
	defer file.Close()

	rs := &Ruleset{HTTPHeaders: map[string]string{}}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	// a find_string: value waiting for its replace_string: pair on the
	// next line; dropped if the pair never arrives
	var pendingFind *string

lines:
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if pendingFind != nil {
			if strings.HasPrefix(line, replaceDirective) {
				rs.Replacements = append(rs.Replacements, Replace{
					Find:        *pendingFind,
					ReplaceWith: directiveValue(line, replaceDirective),
				})
				pendingFind = nil
				continue
			}
			pendingFind = nil
		}

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, ignored := range ignoredDirectives {
			if strings.HasPrefix(line, ignored) {
				continue lines
			}
		}

		for directive, handle := range multiValueDirectives {
			if strings.HasPrefix(line, directive) {
				handle(rs, directiveValue(line, directive))
				continue lines
			}
		}
		for directive, handle := range singleValueDirectives {
			if strings.HasPrefix(line, directive) {
				handle(rs, directiveValue(line, directive))
				continue lines
			}
		}

		// replace_string(needle): replacement
		if strings.HasPrefix(line, replaceInlineDirective) {
			value := directiveValue(line, replaceInlineDirective)
			parts := strings.SplitN(value, "): ", 2)
			if len(parts) == 2 {
				rs.Replacements = append(rs.Replacements, Replace{
					Find:        strings.TrimSpace(parts[0]),
					ReplaceWith: strings.TrimSpace(parts[1]),
				})
			}
			continue
		}

		if strings.HasPrefix(line, findDirective) {
			value := directiveValue(line, findDirective)
			pendingFind = &value
			continue
		}

		// http_header(name): value
		if strings.HasPrefix(line, headerDirective) {
			value := directiveValue(line, headerDirective)
			parts := strings.SplitN(value, "): ", 2)
			if len(parts) == 2 {
				rs.HTTPHeaders[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
			}
			continue
		}

		// unknown directives are ignored
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading rule file %s: %w", path, ErrIO)
	}

	if len(rs.BodyXPath) == 0 {
		logrus.WithField("file", path).Warn("no body xpath found, rejecting rule file")
		return nil, fmt.Errorf("rule file %s has no body selector: %w", path, ErrConfig)
	}

	return rs, nil
}

// Registry maps hosts to their rulesets. It is immutable after load and
// safe for concurrent readers.
type Registry struct {
	rules map[string]*Ruleset
}

// LoadRegistry scans a directory for *.txt rule files. Invalid files are
// skipped with a logged warning; a missing or empty directory produces an
// empty registry (the mandatory global ruleset is checked at parse time).
func LoadRegistry(dir string) (*Registry, error) {
	reg := &Registry{rules: map[string]*Ruleset{}}
	if dir == "" {
		return reg, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.WithField("dir", dir).Warn("rule directory does not exist")
			return reg, nil
		}
		return nil, fmt.Errorf("reading rule directory %s: %w", dir, ErrIO)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".txt" {
			continue
		}
		rs, err := ParseRuleset(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), ".txt")
		reg.rules[stem] = rs
	}

	logrus.WithField("count", len(reg.rules)).Debug("loaded rule files")
	return reg, nil
}

// Get looks up the ruleset for a host. A leading "www." is not
// significant.
func (r *Registry) Get(host string) *Ruleset {
	host = strings.TrimPrefix(host, "www.")
	return r.rules[host]
}

// Global returns the mandatory fallback ruleset, or nil if it was never
// loaded.
func (r *Registry) Global() *Ruleset {
	return r.rules[GlobalRulesetName]
}

// Len reports the number of loaded rulesets.
func (r *Registry) Len() int {
	return len(r.rules)
}

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

import "regexp"

// Heuristic patterns used by the readability engine. These mirror the
// class/id conventions established by Arc90's readability and its
// descendants and are matched case-insensitively.
var (
	reUnlikelyCandidates = regexp.MustCompile(`(?i)-ad-|ai2html|banner|breadcrumbs|combx|comment|community|cover-wrap|disqus|extra|footer|gdpr|header|legends|menu|related|remark|replies|rss|shoutbox|sidebar|skyscraper|social|sponsor|supplemental|ad-break|agegate|pagination|pager|popup|yom-remote`)
	reMaybeCandidate     = regexp.MustCompile(`(?i)and|article|body|column|content|main|shadow`)
	rePositive           = regexp.MustCompile(`(?i)article|body|content|entry|hentry|h-entry|main|page|pagination|post|text|blog|story`)
	reNegative           = regexp.MustCompile(`(?i)-ad-|hidden|^hid$| hid$| hid |^hid |banner|combx|comment|com-|contact|foot|footer|footnote|gdpr|masthead|media|meta|outbrain|promo|related|scroll|share|shoutbox|sidebar|skyscraper|sponsor|shopping|tags|tool|widget`)
	reVideos             = regexp.MustCompile(`(?i)//(www\.)?((dailymotion|youtube|youtube-nocookie|player\.vimeo|v\.qq)\.com|(archive|upload\.wikimedia)\.org|player\.twitch\.tv)`)
	reHashURL            = regexp.MustCompile(`^#.+`)
	reNormalize          = regexp.MustCompile(`\s{2,}`)
	reTokenize           = regexp.MustCompile(`\W+`)

	rePhotoHints        = regexp.MustCompile(`(?i)figure|photo|image|caption`)
	rePositiveImageURL  = regexp.MustCompile(`(?i)upload|wp-content|large|photo|wp-image`)
	reNegativeImageURL  = regexp.MustCompile(`(?i)spacer|sprite|blank|thumb|pixel|ratio`)
	reGifURL            = regexp.MustCompile(`(?i)\.gif(\?.*)?$`)
	reJpgURL            = regexp.MustCompile(`(?i)\.jpe?g(\?.*)?$`)
	reMetaCharset       = regexp.MustCompile(`(?i)<meta[^>]*?charset\s*=\s*["']?([^"'\s/>]+)`)
	reHeaderCharset     = regexp.MustCompile(`(?i)charset=([^"';\s]+)`)
	reYouTubeWatch      = regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/watch\?v=([A-Za-z0-9_-]+)`)
	reDisplayNone       = regexp.MustCompile(`display\s*:\s*none`)
)

// Tag classes from the HTML content model, keyed by upper-case tag name.
var (
	phrasingElems = newTagSet(
		"ABBR", "AUDIO", "B", "BDO", "BR", "BUTTON", "CITE", "CODE", "DATA",
		"DATALIST", "DFN", "EM", "EMBED", "I", "IMG", "INPUT", "KBD", "LABEL",
		"MARK", "MATH", "METER", "NOSCRIPT", "OBJECT", "OUTPUT", "PROGRESS",
		"Q", "RUBY", "SAMP", "SCRIPT", "SELECT", "SMALL", "SPAN", "STRONG",
		"SUB", "SUP", "TEXTAREA", "TIME", "VAR", "WBR",
	)
	divToPElems   = newTagSet("BLOCKQUOTE", "DL", "DIV", "IMG", "OL", "P", "PRE", "TABLE", "UL")
	embedTagNames = newTagSet("OBJECT", "EMBED", "IFRAME")
	voidTagNames  = newTagSet(
		"AREA", "BASE", "BR", "COL", "EMBED", "HR", "IMG", "INPUT", "LINK",
		"META", "PARAM", "SOURCE", "TRACK", "WBR",
	)
	preservedClasses = map[string]bool{"page": true}
)

// defaultUserAgent is sent when neither the site nor the global ruleset
// overrides the User-Agent header.
const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

// minContentLength is the text length below which the readability engine
// does not score an element and treats a paragraph or container as a stub.
const minContentLength = 25

func newTagSet(tags ...string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	return set
}

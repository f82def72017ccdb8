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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parseTestHTML(t *testing.T, content string) *html.Node {
	t.Helper()
	doc, err := parseHTML(content)
	require.NoError(t, err)
	return doc
}

func TestRepairURLs(t *testing.T) {
	articleURL := mustParseURL(t, "https://ex.com/dir/")

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "root-relative href",
			html: `<a href="/x/y.html">x</a>`,
			want: `href="https://ex.com/x/y.html"`,
		},
		{
			name: "bare relative href gains separator",
			html: `<a href="foo.html">foo</a>`,
			want: `href="https://ex.com/foo.html"`,
		},
		{
			name: "protocol-relative keeps its own host",
			html: `<img src="//cdn.example/x.jpg"/>`,
			want: `src="https://cdn.example/x.jpg"`,
		},
		{
			name: "absolute url untouched",
			html: `<a href="https://other.org/page">p</a>`,
			want: `href="https://other.org/page"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseTestHTML(t, "<html><body>"+tt.html+"</body></html>")
			repairURLs(doc, "//a", "href", articleURL)
			repairURLs(doc, "//img", "src", articleURL)
			assert.Contains(t, serializeNode(doc), tt.want)
		})
	}
}

func TestRepairURLsIdempotent(t *testing.T) {
	articleURL := mustParseURL(t, "https://ex.com/dir/")
	doc := parseTestHTML(t, `<html><body><a href="foo.html">a</a><img src="/img.png"/><img src="//cdn.example/x.jpg"/></body></html>`)

	repairURLs(doc, "//a", "href", articleURL)
	repairURLs(doc, "//img", "src", articleURL)
	once := serializeNode(doc)

	repairURLs(doc, "//a", "href", articleURL)
	repairURLs(doc, "//img", "src", articleURL)
	twice := serializeNode(doc)

	assert.Equal(t, once, twice)
}

func TestStripIDOrClassAncestorDedup(t *testing.T) {
	doc := parseTestHTML(t, `<html><body>
		<div class="social-wrap"><div class="social-inner"><p>junk</p></div></div>
		<p>keep me</p>
	</body></html>`)

	stripIDOrClass(doc, "social")

	out := serializeNode(doc)
	assert.NotContains(t, out, "junk")
	assert.Contains(t, out, "keep me")
}

func TestStripNodesSparesVideoEmbeds(t *testing.T) {
	doc := parseTestHTML(t, `<html><body>
		<iframe src="https://www.youtube-nocookie.com/embed/xyz"></iframe>
		<iframe src="https://ads.example/frame"></iframe>
	</body></html>`)

	stripNodes(doc, "//iframe")

	out := serializeNode(doc)
	assert.Contains(t, out, "youtube-nocookie.com/embed/xyz")
	assert.NotContains(t, out, "ads.example")
}

func TestFixLazyImages(t *testing.T) {
	doc := parseTestHTML(t, `<html><body><img class="lazyload" src="blank.gif" data-src="https://ex.com/real.jpg"/></body></html>`)

	fixLazyImages(doc, "lazyload", "data-src")

	img := firstElementByTag(doc, "img")
	src, _ := getAttr(img, "src")
	assert.Equal(t, "https://ex.com/real.jpg", src)
}

func TestFixIframeSizeWrapsYouTube(t *testing.T) {
	doc := parseTestHTML(t, `<html><body><iframe src="https://www.youtube.com/embed/abc"></iframe></body></html>`)

	fixIframeSize(doc, "youtube.com")

	wrapper := firstElementByTag(doc, "div")
	require.NotNil(t, wrapper)
	class, _ := getAttr(wrapper, "class")
	assert.Equal(t, "videoWrapper", class)

	iframe := firstElementByTag(wrapper, "iframe")
	require.NotNil(t, iframe)
	width, _ := getAttr(iframe, "width")
	height, _ := getAttr(iframe, "height")
	assert.Equal(t, "100%", width)
	assert.Equal(t, "100%", height)
}

func TestStripJunkPasses(t *testing.T) {
	global := &Ruleset{BodyXPath: []string{"//article"}}
	doc := parseTestHTML(t, `<html><body>
		<article>
			<p style="color:red" onclick="x()">text</p>
			<a href="/rel" onclick="track()">link</a>
			<img src="pic.jpg" srcset="pic-2x.jpg 2x" sizes="100vw"/>
			<a></a>
			<div class=" instapaper_ignore ">ignored</div>
			<span style="display:none">hidden</span>
			<!-- a comment -->
			<style type="text/css">.x{}</style>
		</article>
	</body></html>`)

	stripJunk(doc, nil, global, mustParseURL(t, "https://ex.com/dir/"))
	out := serializeNode(doc)

	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "srcset")
	assert.NotContains(t, out, "sizes")
	assert.NotContains(t, out, "instapaper")
	assert.NotContains(t, out, "a comment")
	assert.NotContains(t, out, "text/css")
	assert.Contains(t, out, `target="_blank"`)
	assert.Contains(t, out, `href="https://ex.com/rel"`)
	assert.Contains(t, out, `src="https://ex.com/pic.jpg"`)
	assert.False(t, strings.Contains(out, "<a></a>"), "empty links are removed")
}

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
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScraper(t *testing.T, ruleFiles map[string]string) *Scraper {
	t.Helper()
	dir := t.TempDir()
	for name, content := range ruleFiles {
		writeRuleFile(t, dir, name, content)
	}
	scraper, err := New(dir)
	require.NoError(t, err)
	return scraper
}

func mockClient(mock *MockTransport) *http.Client {
	return &http.Client{Transport: mock}
}

func TestParseRequiresGlobalRuleset(t *testing.T) {
	mock := NewMockTransport()
	scraper := newTestScraper(t, map[string]string{
		"example.com.txt": "body: //article\n",
	})
	delete(scraper.registry.rules, GlobalRulesetName)

	_, err := scraper.Parse(context.Background(), "https://example.com/a", false, mockClient(mock))
	assert.ErrorIs(t, err, ErrConfig)
	assert.Empty(t, mock.Requests(), "no network I/O before the config check")
}

func TestParseRequiresHost(t *testing.T) {
	scraper := newTestScraper(t, map[string]string{"global.txt": "body: //article\n"})
	_, err := scraper.Parse(context.Background(), "not-a-url", false, mockClient(NewMockTransport()))
	assert.ErrorIs(t, err, ErrConfig)
}

func TestParseSiteRulesWin(t *testing.T) {
	page := `<html><head><meta name="og:title" content="Meta Title"/></head><body>
		<h1 class="headline">Rule Title</h1>
		<main><p>global content</p></main>
		<article><p>site paragraph one</p><p>site paragraph two</p></article>
	</body></html>`

	mock := NewMockTransport()
	mock.RegisterHTML("https://example.com/post", page)

	scraper := newTestScraper(t, map[string]string{
		"global.txt":      "body: //main\n",
		"example.com.txt": "title: //h1[@class='headline']\nbody: //article//p\n",
	})

	article, err := scraper.Parse(context.Background(), "https://example.com/post", false, mockClient(mock))
	require.NoError(t, err)

	// metadata precedence: the rule selector beats the og:title meta
	assert.Equal(t, "Rule Title", article.Title)

	content := article.GetContent()
	assert.Contains(t, content, "site paragraph one")
	assert.Contains(t, content, "site paragraph two")
	assert.NotContains(t, content, "global content")
}

func TestParseMetaTitleFallback(t *testing.T) {
	page := `<html><head><meta name="og:title" content="Meta Title"/>
		<meta name="author" content="Jane Doe"/></head>
		<body><article><p>body text</p></article></body></html>`

	mock := NewMockTransport()
	mock.RegisterHTML("https://example.com/post", page)

	scraper := newTestScraper(t, map[string]string{"global.txt": "body: //article\n"})

	article, err := scraper.Parse(context.Background(), "https://example.com/post", false, mockClient(mock))
	require.NoError(t, err)
	assert.Equal(t, "Meta Title", article.Title)
	assert.Equal(t, "Jane Doe", article.Author)
}

func TestParsePaginationOrder(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterHTML("https://example.com/p1", `<html><body>
		<article><p>fragment one</p></article>
		<nav><a rel="next" href="https://example.com/p2">next</a></nav>
	</body></html>`)
	mock.RegisterHTML("https://example.com/p2", `<html><body>
		<article><p>fragment two</p></article>
		<nav><a rel="next" href="https://example.com/p3">next</a></nav>
	</body></html>`)
	mock.RegisterHTML("https://example.com/p3", `<html><body>
		<article><p>fragment three</p></article>
	</body></html>`)

	scraper := newTestScraper(t, map[string]string{
		"global.txt":      "body: //main\n",
		"example.com.txt": "body: //article\nnext_page_link: //a[@rel='next']\n",
	})

	article, err := scraper.Parse(context.Background(), "https://example.com/p1", false, mockClient(mock))
	require.NoError(t, err)

	content := article.GetContent()
	first := strings.Index(content, "fragment one")
	second := strings.Index(content, "fragment two")
	third := strings.Index(content, "fragment three")
	require.GreaterOrEqual(t, first, 0)
	assert.Greater(t, second, first)
	assert.Greater(t, third, second)
}

func TestParsePaginationKeepsPagesSoFar(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterHTML("https://example.com/p1", `<html><body>
		<article><p>fragment one</p></article>
		<nav><a rel="next" href="https://example.com/p2">next</a></nav>
	</body></html>`)
	mock.RegisterResponse("https://example.com/p2", &MockResponse{StatusCode: 500})

	scraper := newTestScraper(t, map[string]string{
		"global.txt":      "body: //main\n",
		"example.com.txt": "body: //article\nnext_page_link: //a[@rel='next']\n",
	})

	article, err := scraper.Parse(context.Background(), "https://example.com/p1", false, mockClient(mock))
	require.NoError(t, err)
	assert.Contains(t, article.GetContent(), "fragment one")
}

func TestParseSinglePageLink(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterHTML("https://example.com/paged", `<html><body>
		<a rel="canonical" href="https://example.com/full">all on one page</a>
		<article><p>paged fragment</p></article>
	</body></html>`)
	mock.RegisterHTML("https://example.com/full", `<html><body>
		<article><p>full fragment</p></article>
	</body></html>`)

	scraper := newTestScraper(t, map[string]string{
		"global.txt":      "body: //main\n",
		"example.com.txt": "body: //article\nsingle_page_link: //a[@rel='canonical']\n",
	})

	article, err := scraper.Parse(context.Background(), "https://example.com/paged", false, mockClient(mock))
	require.NoError(t, err)

	content := article.GetContent()
	assert.Contains(t, content, "full fragment")
	assert.NotContains(t, content, "paged fragment")

	requests := mock.Requests()
	assert.Equal(t, []string{
		"HEAD https://example.com/paged",
		"GET https://example.com/paged",
		"GET https://example.com/full",
	}, requests)
}

func TestParseRedirectBecomesArticleURL(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterResponse("https://example.com/short", &MockResponse{
		StatusCode: 301,
		Headers:    http.Header{"Location": []string{"https://example.com/long-title"}},
	})
	mock.RegisterHTML("https://example.com/long-title", `<html><body>
		<article><p>content</p><a href="rel.html">rel</a></article>
	</body></html>`)

	scraper := newTestScraper(t, map[string]string{"global.txt": "body: //article\n"})

	article, err := scraper.Parse(context.Background(), "https://example.com/short", false, mockClient(mock))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/long-title", article.URL.String())
	assert.Contains(t, article.GetContent(), `href="https://example.com/rel.html"`)
}

func TestParseYouTubeEmbed(t *testing.T) {
	mock := NewMockTransport()
	scraper := newTestScraper(t, map[string]string{"global.txt": "body: //article\n"})

	article, err := scraper.Parse(context.Background(), "https://www.youtube.com/watch?v=lHRkYLcmFY8", false, mockClient(mock))
	require.NoError(t, err)
	assert.Equal(t,
		`<iframe width="650" height="350" frameborder="0" src="https://www.youtube-nocookie.com/embed/lHRkYLcmFY8" allowfullscreen></iframe>`,
		article.GetContent())
	assert.Empty(t, mock.Requests(), "embed pages are never fetched")
}

func TestParseReadabilityFallback(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterHTML("https://unknown.org/story", buildContentPage())

	scraper := newTestScraper(t, map[string]string{"global.txt": "body: //article\n"})

	article, err := scraper.Parse(context.Background(), "https://unknown.org/story", false, mockClient(mock))
	require.NoError(t, err)

	content := article.GetContent()
	assert.Contains(t, content, "The committee spent years")
	assert.NotContains(t, content, "More links here")
}

func TestParseScrapeFailure(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterHTML("https://unknown.org/empty", "<html><body><div></div></body></html>")

	scraper := newTestScraper(t, map[string]string{"global.txt": "body: //article\n"})

	_, err := scraper.Parse(context.Background(), "https://unknown.org/empty", false, mockClient(mock))
	assert.ErrorIs(t, err, ErrScrape)
}

func TestParseStringReplacements(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterHTML("https://example.com/esc", `<html><body>
		<article><p>BROKEN_TOKEN stays fixed</p></article>
	</body></html>`)

	scraper := newTestScraper(t, map[string]string{
		"global.txt":      "body: //main\n",
		"example.com.txt": "body: //article\nreplace_string(BROKEN_TOKEN): everything\n",
	})

	article, err := scraper.Parse(context.Background(), "https://example.com/esc", false, mockClient(mock))
	require.NoError(t, err)
	assert.Contains(t, article.GetContent(), "everything stays fixed")
}

func TestParseDateExtraction(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterHTML("https://example.com/dated", `<html><body>
		<time>2023-11-05T12:30:00Z</time>
		<article><p>content</p></article>
	</body></html>`)

	scraper := newTestScraper(t, map[string]string{
		"global.txt":      "body: //main\n",
		"example.com.txt": "body: //article\ndate: //time\n",
	})

	article, err := scraper.Parse(context.Background(), "https://example.com/dated", false, mockClient(mock))
	require.NoError(t, err)
	want := time.Date(2023, 11, 5, 12, 30, 0, 0, time.UTC)
	assert.True(t, article.Date.Equal(want), "got %s", article.Date)
}

func TestParseInvalidDateSkipped(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterHTML("https://example.com/baddate", `<html><body>
		<time>yesterday afternoon</time>
		<article><p>content</p></article>
	</body></html>`)

	scraper := newTestScraper(t, map[string]string{
		"global.txt":      "body: //main\n",
		"example.com.txt": "body: //article\ndate: //time\n",
	})

	article, err := scraper.Parse(context.Background(), "https://example.com/baddate", false, mockClient(mock))
	require.NoError(t, err)
	assert.True(t, article.Date.IsZero())
}

func TestParseGolemStyleArticle(t *testing.T) {
	page := `<html><head><title>golem.de</title></head><body>
		<article>
			<header class="paged-cluster-header"><h1>HTTP Error 418: Fehlercode &quot;Ich bin eine Teekanne&quot; darf bleiben</h1></header>
			<div class="authors"><span class="authors__name">Hauke Gierow</span></div>
			<p>Der Statuscode 418 bleibt erhalten.</p>
		</article>
	</body></html>`

	mock := NewMockTransport()
	mock.RegisterHTML("https://www.golem.de/news/http-error-418.html", page)

	scraper := newTestScraper(t, map[string]string{
		"global.txt":   "body: //main\n",
		"golem.de.txt": "title: //article//h1\nauthor: //span[@class='authors__name']\nbody: //article\nstrip: //header[@class='paged-cluster-header']\n",
	})

	article, err := scraper.Parse(context.Background(), "https://www.golem.de/news/http-error-418.html", false, mockClient(mock))
	require.NoError(t, err)

	assert.Equal(t, `HTTP Error 418: Fehlercode "Ich bin eine Teekanne" darf bleiben`, article.Title)
	assert.Equal(t, "Hauke Gierow", article.Author)
	assert.Contains(t, article.GetContent(), "Der Statuscode 418 bleibt erhalten.")
	assert.NotContains(t, article.GetContent(), "<h1>", "the duplicated headline is stripped")
}

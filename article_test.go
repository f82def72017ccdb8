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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveHTML(t *testing.T) {
	article := &Article{Title: "A Nice Article", html: "<html><article>x</article></html>"}
	dir := filepath.Join(t.TempDir(), "out")

	require.NoError(t, article.SaveHTML(dir))

	payload, err := os.ReadFile(filepath.Join(dir, "a-nice-article.html"))
	require.NoError(t, err)
	assert.Equal(t, article.GetContent(), string(payload))
}

func TestSaveHTMLWithoutTitle(t *testing.T) {
	article := &Article{html: "<html><article>x</article></html>"}
	dir := t.TempDir()

	require.NoError(t, article.SaveHTML(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "unknown-title")
}

func TestSaveHTMLWithoutContent(t *testing.T) {
	article := &Article{Title: "Empty"}
	err := article.SaveHTML(t.TempDir())
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestGetText(t *testing.T) {
	article := &Article{html: `<html><article><h1>Title</h1>
		<p>First   paragraph.</p><script>var x = 1;</script>
		<p>Second paragraph.</p></article></html>`}

	assert.Equal(t, "Title First paragraph. Second paragraph.", article.GetText())
}

func TestArticleDocumentShape(t *testing.T) {
	ad := newArticleDocument()
	ad.root.AppendChild(newTextNode("hello"))
	ad.preventSelfClosingTags()

	out, err := ad.serialize()
	require.NoError(t, err)
	assert.Equal(t, `<html><head><meta charset="utf-8"/></head><article>hello</article></html>`, out)
}

func TestPreventSelfClosingTags(t *testing.T) {
	ad := newArticleDocument()
	iframe := newElement("iframe")
	setAttr(iframe, "src", "https://example.com/embed")
	ad.root.AppendChild(iframe)
	ad.root.AppendChild(newElement("img"))

	ad.preventSelfClosingTags()
	out, err := ad.serialize()
	require.NoError(t, err)

	// non-void empties serialize with an explicit closing tag, voids stay void
	assert.Contains(t, out, `<iframe src="https://example.com/embed"></iframe>`)
	assert.Contains(t, out, `<img/>`)
}

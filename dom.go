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
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// parseHTML parses a full HTML page into a document node. The parser is
// tolerant: malformed markup never fails, it only produces a lopsided tree.
func parseHTML(content string) (*html.Node, error) {
	doc, err := htmlquery.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", ErrXML)
	}
	return doc, nil
}

// evaluateXPath runs an XPath expression against any node of the document.
// An empty result is a valid outcome, not an error; only an uncompilable
// expression reports ErrXML.
func evaluateXPath(ctx *html.Node, expr string) ([]*html.Node, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		logrus.WithField("xpath", expr).Debugf("invalid xpath expression: %v", err)
		return nil, fmt.Errorf("compiling xpath %q: %w", expr, ErrXML)
	}
	nodes := htmlquery.QuerySelectorAll(ctx, compiled)
	if len(nodes) == 0 {
		logrus.WithField("xpath", expr).Debug("xpath evaluation yielded no results")
	}
	return nodes, nil
}

func removeNode(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

func getAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(n *html.Node, name string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

func tagName(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	return strings.ToUpper(n.Data)
}

func newElement(tag string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     strings.ToLower(tag),
		DataAtom: atom.Lookup([]byte(strings.ToLower(tag))),
	}
}

func newTextNode(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// cloneNode makes a deep copy that belongs to no document.
func cloneNode(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:     n.Type,
		Data:     n.Data,
		DataAtom: n.DataAtom,
		Attr:     append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(cloneNode(c))
	}
	return clone
}

func childElements(n *html.Node) []*html.Node {
	var elems []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			elems = append(elems, c)
		}
	}
	return elems
}

func nextElementSibling(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// elementsByTag collects descendant elements matching any of the given
// tags in document order. "*" matches every element.
func elementsByTag(n *html.Node, tags ...string) []*html.Node {
	all := len(tags) == 1 && tags[0] == "*"
	want := make(map[string]bool, len(tags))
	for _, t := range tags {
		want[strings.ToUpper(t)] = true
	}

	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (all || want[tagName(c)]) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

func firstElementByTag(n *html.Node, tag string) *html.Node {
	tag = strings.ToUpper(tag)
	var find func(*html.Node) *html.Node
	find = func(node *html.Node) *html.Node {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && tagName(c) == tag {
				return c
			}
			if found := find(c); found != nil {
				return found
			}
		}
		return nil
	}
	return find(n)
}

// innerText returns the concatenated text content of the subtree, trimmed.
func innerText(n *html.Node, normalizeSpaces bool) string {
	text := strings.TrimSpace(htmlquery.InnerText(n))
	if normalizeSpaces {
		return reNormalize.ReplaceAllString(text, " ")
	}
	return text
}

// articleDocument is the assembled output DOM: a document node wrapping
// <html><head><meta charset="utf-8"/></head><article>...</article></html>.
type articleDocument struct {
	doc  *html.Node
	root *html.Node
}

func newArticleDocument() *articleDocument {
	doc := &html.Node{Type: html.DocumentNode}
	htmlNode := newElement("html")
	doc.AppendChild(htmlNode)

	head := newElement("head")
	meta := newElement("meta")
	setAttr(meta, "charset", "utf-8")
	head.AppendChild(meta)
	htmlNode.AppendChild(head)

	root := newElement("article")
	htmlNode.AppendChild(root)

	return &articleDocument{doc: doc, root: root}
}

// preventSelfClosingTags inserts an empty text child into every childless
// non-void element so the serialized form reads <tag></tag> instead of a
// self-closed tag a reader cannot reopen.
func (a *articleDocument) preventSelfClosingTags() {
	for _, n := range elementsByTag(a.doc, "*") {
		if n.FirstChild != nil || voidTagNames[tagName(n)] {
			continue
		}
		n.AppendChild(newTextNode(""))
	}
}

func (a *articleDocument) serialize() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, a.doc); err != nil {
		return "", fmt.Errorf("rendering article document: %w", ErrXML)
	}
	return buf.String(), nil
}

// serializeNode renders a single subtree including its own tag.
func serializeNode(n *html.Node) string {
	return htmlquery.OutputHTML(n, true)
}

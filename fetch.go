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
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/saintfish/chardet"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/htmlindex"
)

// maxBodySize limits the retrieved response body to 10MB.
const maxBodySize = 10 * 1024 * 1024

// fetcher wraps the injected HTTP client with the HEAD/GET behavior the
// pipeline needs: redirect capture, a content-type gate, and character
// encoding resolution. The client is assumed safe for concurrent use.
type fetcher struct {
	client *http.Client
}

func newFetcher(client *http.Client) *fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &fetcher{client: client}
}

// head issues a HEAD request and returns the final URL after redirects.
// The response must indicate an HTML content type.
func (f *fetcher) head(ctx context.Context, u *url.URL, headers http.Header) (*url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building HEAD request for %s: %w", u, ErrHTTP)
	}
	copyHeaders(req, headers)

	resp, err := f.client.Do(req)
	if err != nil {
		logrus.WithField("url", u.String()).Errorf("HEAD request failed: %v", err)
		return nil, fmt.Errorf("HEAD %s: %w", u, ErrHTTP)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HEAD %s returned status %d: %w", u, resp.StatusCode, ErrHTTP)
	}
	if !isHTMLContentType(resp.Header.Get("Content-Type")) {
		return nil, fmt.Errorf("HEAD %s returned %q: %w", u, resp.Header.Get("Content-Type"), ErrWrongContentType)
	}

	finalURL := u
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL
	}
	if finalURL.String() != u.String() {
		logrus.WithFields(logrus.Fields{"url": u.String(), "redirect": finalURL.String()}).Debug("url redirects")
	}
	return finalURL, nil
}

// get downloads a page and decodes its body to UTF-8. The declared
// encodings are tried in order: <meta charset> in the raw bytes, the
// Content-Type header, a statistical guess, and finally lossy UTF-8.
func (f *fetcher) get(ctx context.Context, u *url.URL, headers http.Header) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("building GET request for %s: %w", u, ErrHTTP)
	}
	copyHeaders(req, headers)

	resp, err := f.client.Do(req)
	if err != nil {
		logrus.WithField("url", u.String()).Errorf("downloading HTML failed: %v", err)
		return "", fmt.Errorf("GET %s: %w", u, ErrHTTP)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("GET %s returned status %d: %w", u, resp.StatusCode, ErrHTTP)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("reading response body of %s: %w", u, ErrHTTP)
	}

	return decodeBody(raw, resp.Header.Get("Content-Type")), nil
}

func copyHeaders(req *http.Request, headers http.Header) {
	for name, values := range headers {
		for _, v := range values {
			req.Header.Set(name, v)
		}
	}
}

func isHTMLContentType(contentType string) bool {
	return strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "application/xhtml+xml")
}

func decodeBody(raw []byte, contentType string) string {
	if label := encodingFromHTML(raw); label != "" {
		if decoded, ok := decodeStrict(raw, label); ok {
			return decoded
		}
		logrus.WithField("charset", label).Warn("could not decode HTML with declared meta charset")
	}

	if m := reHeaderCharset.FindStringSubmatch(contentType); m != nil {
		if decoded, ok := decodeStrict(raw, m[1]); ok {
			return decoded
		}
		logrus.WithField("charset", m[1]).Warn("could not decode HTML with header charset")
	}

	// no usable declaration, take a statistical guess before assuming utf-8
	if result, err := chardet.NewHtmlDetector().DetectBest(raw); err == nil && result != nil {
		if decoded, ok := decodeStrict(raw, result.Charset); ok {
			return decoded
		}
	}

	logrus.Warn("no encoding of HTML detected, assuming utf-8")
	return strings.ToValidUTF8(string(raw), "�")
}

// encodingFromHTML pulls the charset out of a <meta> declaration in the
// raw, not-yet-decoded bytes. Charset names are ASCII, so scanning the
// bytes as a string is safe regardless of the actual body encoding.
func encodingFromHTML(raw []byte) string {
	if m := reMetaCharset.FindSubmatch(raw); m != nil {
		return string(m[1])
	}
	return ""
}

// decodeStrict decodes with the named encoding, reporting failure on
// invalid sequences so the caller can fall through to the next source.
func decodeStrict(raw []byte, label string) (string, bool) {
	enc, err := htmlindex.Get(strings.TrimSpace(strings.ToLower(label)))
	if err != nil {
		return "", false
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	if !strings.Contains(string(decoded), "�") {
		return string(decoded), true
	}
	// replacement runes mean the declared encoding did not fit
	return "", false
}

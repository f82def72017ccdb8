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
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// ImageDownloader embeds the images of an article as data URIs so the
// result is fully self-contained. Images larger than the configured cap
// are scaled down; the original stays reachable through a big-src
// attribute.
type ImageDownloader struct {
	client    *http.Client
	maxWidth  int
	maxHeight int
}

// NewImageDownloader creates a downloader with the given dimension caps.
// Pass nil for http.DefaultClient.
func NewImageDownloader(maxWidth, maxHeight int, client *http.Client) *ImageDownloader {
	if client == nil {
		client = http.DefaultClient
	}
	return &ImageDownloader{client: client, maxWidth: maxWidth, maxHeight: maxHeight}
}

// DownloadImagesFromString parses the HTML fragment, embeds every image,
// and returns the rewritten HTML. Failures on individual images are
// logged and leave that image's remote reference in place.
func (d *ImageDownloader) DownloadImagesFromString(ctx context.Context, content string) (string, error) {
	doc, err := parseHTML(content)
	if err != nil {
		return "", err
	}

	d.downloadImages(ctx, doc)
	removeDuplicateDataImages(doc)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", fmt.Errorf("rendering document with embedded images: %w", ErrXML)
	}
	return buf.String(), nil
}

func (d *ImageDownloader) downloadImages(ctx context.Context, doc *html.Node) {
	for _, img := range elementsByTag(doc, "img") {
		src, ok := getAttr(img, "src")
		if !ok || src == "" || strings.HasPrefix(src, "data:") {
			continue
		}
		imageURL, err := url.Parse(src)
		if err != nil || !imageURL.IsAbs() {
			logrus.WithField("url", src).Debug("skipping image with non-absolute src")
			continue
		}

		parentURL := d.checkImageParent(ctx, img, imageURL)

		small, big, err := d.saveImage(ctx, imageURL, parentURL)
		if err != nil {
			logrus.WithField("url", src).Warnf("embedding image failed: %v", err)
			continue
		}
		setAttr(img, "src", small)
		if big != "" {
			setAttr(img, "big-src", big)
		}
	}
}

// checkImageParent returns the URL of a larger variant of the image when
// the wrapping <a> links to one, decided by Content-Length comparison.
func (d *ImageDownloader) checkImageParent(ctx context.Context, img *html.Node, childURL *url.URL) *url.URL {
	parent := img.Parent
	if parent == nil || tagName(parent) != "A" {
		return nil
	}
	href, ok := getAttr(parent, "href")
	if !ok {
		return nil
	}
	parentURL, err := url.Parse(href)
	if err != nil || !parentURL.IsAbs() {
		return nil
	}

	parentLength, parentType, err := d.headImage(ctx, parentURL)
	if err != nil || !strings.Contains(parentType, "image") {
		return nil
	}
	childLength, _, err := d.headImage(ctx, childURL)
	if err != nil {
		return nil
	}
	if parentLength > childLength {
		return parentURL
	}
	return nil
}

func (d *ImageDownloader) headImage(ctx context.Context, u *url.URL) (int64, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
	if err != nil {
		return 0, "", fmt.Errorf("building HEAD request for %s: %w", u, ErrHTTP)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("HEAD %s: %w", u, ErrHTTP)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, "", fmt.Errorf("HEAD %s returned status %d: %w", u, resp.StatusCode, ErrHTTP)
	}
	length, _ := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	return length, resp.Header.Get("Content-Type"), nil
}

// saveImage fetches the image (and its larger parent, when given) and
// returns data URIs for the possibly-resized image and the original.
func (d *ImageDownloader) saveImage(ctx context.Context, imageURL, parentURL *url.URL) (string, string, error) {
	small, contentTypeSmall, err := d.fetchImage(ctx, imageURL)
	if err != nil {
		return "", "", err
	}

	var big []byte
	contentTypeBig := ""
	if parentURL != nil {
		if payload, contentType, err := d.fetchImage(ctx, parentURL); err == nil {
			big, contentTypeBig = payload, contentType
		} else {
			logrus.WithField("url", parentURL.String()).Debugf("fetching parent image failed: %v", err)
		}
	}

	// SVG stays vector; everything else is decoded and capped
	if contentTypeSmall != "image/svg+xml" {
		decoded, err := imaging.Decode(bytes.NewReader(small))
		if err != nil {
			return "", "", fmt.Errorf("decoding image %s: %w", imageURL, ErrUnknown)
		}
		bounds := decoded.Bounds()
		if bounds.Dx() > d.maxWidth || bounds.Dy() > d.maxHeight {
			resized := imaging.Fit(decoded, d.maxWidth, d.maxHeight, imaging.Lanczos)
			var buf bytes.Buffer
			if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
				return "", "", fmt.Errorf("encoding resized image %s: %w", imageURL, ErrUnknown)
			}
			if big == nil {
				big, contentTypeBig = small, contentTypeSmall
			}
			small, contentTypeSmall = buf.Bytes(), "image/png"
		}
	}

	smallURI := dataURI(contentTypeSmall, small)
	bigURI := ""
	if big != nil {
		bigURI = dataURI(contentTypeBig, big)
	}
	return smallURI, bigURI, nil
}

func (d *ImageDownloader) fetchImage(ctx context.Context, u *url.URL) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("building GET request for %s: %w", u, ErrHTTP)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("GET %s: %w", u, ErrHTTP)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("GET %s returned status %d: %w", u, resp.StatusCode, ErrHTTP)
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("%s is not an image: %w", u, ErrWrongContentType)
	}
	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, "", fmt.Errorf("reading image body of %s: %w", u, ErrHTTP)
	}
	return payload, contentType, nil
}

func dataURI(contentType string, payload []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(payload))
}

// removeDuplicateDataImages drops paragraphs that wrap nothing but a
// repeat of an image already embedded earlier (typically the article
// thumbnail showing up again inside the body).
func removeDuplicateDataImages(doc *html.Node) {
	seen := map[uint64]bool{}
	for _, img := range elementsByTag(doc, "img") {
		src, ok := getAttr(img, "src")
		if !ok || !strings.HasPrefix(src, "data:") {
			continue
		}
		sum := xxhash.Sum64String(src)
		if !seen[sum] {
			seen[sum] = true
			continue
		}
		if p := img.Parent; p != nil && tagName(p) == "P" && isSingleImage(p) {
			removeNode(p)
		}
	}
}

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
	"image"
	"image/color"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func registerImage(mock *MockTransport, url string, payload []byte, contentType string) {
	mock.RegisterResponse(url, &MockResponse{
		RawBody: payload,
		Headers: http.Header{
			"Content-Type":   []string{contentType},
			"Content-Length": []string{strconv.Itoa(len(payload))},
		},
	})
}

func TestDownloadImagesEmbedsDataURI(t *testing.T) {
	mock := NewMockTransport()
	registerImage(mock, "https://ex.com/small.png", pngBytes(t, 4, 4), "image/png")

	d := NewImageDownloader(100, 100, &http.Client{Transport: mock})
	out, err := d.DownloadImagesFromString(context.Background(),
		`<html><body><img src="https://ex.com/small.png"/></body></html>`)
	require.NoError(t, err)

	assert.Contains(t, out, `src="data:image/png;base64,`)
	assert.NotContains(t, out, `big-src`)
}

func TestDownloadImagesResizesLargeImages(t *testing.T) {
	mock := NewMockTransport()
	registerImage(mock, "https://ex.com/huge.png", pngBytes(t, 300, 40), "image/png")

	d := NewImageDownloader(100, 100, &http.Client{Transport: mock})
	out, err := d.DownloadImagesFromString(context.Background(),
		`<html><body><img src="https://ex.com/huge.png"/></body></html>`)
	require.NoError(t, err)

	// the resized copy is embedded, the original preserved as big-src
	assert.Contains(t, out, `src="data:image/png;base64,`)
	assert.Contains(t, out, `big-src="data:image/png;base64,`)
}

func TestDownloadImagesPrefersLargerParent(t *testing.T) {
	small := pngBytes(t, 4, 4)
	big := pngBytes(t, 40, 40)

	mock := NewMockTransport()
	registerImage(mock, "https://ex.com/thumb.png", small, "image/png")
	registerImage(mock, "https://ex.com/full.png", big, "image/png")

	d := NewImageDownloader(100, 100, &http.Client{Transport: mock})
	out, err := d.DownloadImagesFromString(context.Background(),
		`<html><body><a href="https://ex.com/full.png"><img src="https://ex.com/thumb.png"/></a></body></html>`)
	require.NoError(t, err)

	assert.Contains(t, out, `big-src="data:image/png;base64,`)
	requests := strings.Join(mock.Requests(), "\n")
	assert.Contains(t, requests, "HEAD https://ex.com/full.png")
	assert.Contains(t, requests, "GET https://ex.com/full.png")
}

func TestDownloadImagesSkipsNonImages(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterResponse("https://ex.com/not-an-image", &MockResponse{
		Body:    "<html>not found</html>",
		Headers: http.Header{"Content-Type": []string{"text/html"}},
	})

	d := NewImageDownloader(100, 100, &http.Client{Transport: mock})
	out, err := d.DownloadImagesFromString(context.Background(),
		`<html><body><img src="https://ex.com/not-an-image"/></body></html>`)
	require.NoError(t, err)

	// the remote reference stays in place
	assert.Contains(t, out, `src="https://ex.com/not-an-image"`)
}

func TestDownloadImagesSVGStaysVector(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"><rect width="10" height="10"/></svg>`)
	mock := NewMockTransport()
	registerImage(mock, "https://ex.com/pic.svg", svg, "image/svg+xml")

	d := NewImageDownloader(100, 100, &http.Client{Transport: mock})
	out, err := d.DownloadImagesFromString(context.Background(),
		`<html><body><img src="https://ex.com/pic.svg"/></body></html>`)
	require.NoError(t, err)

	assert.Contains(t, out, `src="data:image/svg+xml;base64,`)
}

func TestRemoveDuplicateDataImages(t *testing.T) {
	mock := NewMockTransport()
	registerImage(mock, "https://ex.com/lead.png", pngBytes(t, 4, 4), "image/png")
	registerImage(mock, "https://ex.com/lead2.png", pngBytes(t, 4, 4), "image/png")

	d := NewImageDownloader(100, 100, &http.Client{Transport: mock})
	out, err := d.DownloadImagesFromString(context.Background(),
		`<html><body>`+
			`<img src="https://ex.com/lead.png"/>`+
			`<p><img src="https://ex.com/lead2.png"/></p>`+
			`<p>Some text</p>`+
			`</body></html>`)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, `<img src="data:`))
	assert.Contains(t, out, "Some text")
}

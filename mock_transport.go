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
	"errors"
	"io"
	"net/http"
	"regexp"
	"sync"
)

// MockResponse represents a canned HTTP response for tests.
type MockResponse struct {
	// StatusCode is the HTTP status code to return (default: 200)
	StatusCode int
	// Body is the response body content (used if BodyFunc is nil)
	Body string
	// RawBody overrides Body with exact bytes, e.g. for encoding tests
	RawBody []byte
	// BodyFunc generates the body dynamically based on the request
	BodyFunc func(*http.Request) string
	// Headers are the HTTP headers to include in the response
	Headers http.Header
	// Error simulates a network error
	Error error
}

type mockPattern struct {
	pattern  *regexp.Regexp
	response *MockResponse
}

// MockTransport implements http.RoundTripper for testing. Mock responses
// are registered for exact URLs or URL patterns, so no test ever touches
// the network.
type MockTransport struct {
	responses map[string]*MockResponse
	patterns  []mockPattern
	requests  []string
	mutex     sync.RWMutex
}

// NewMockTransport creates a new MockTransport instance.
func NewMockTransport() *MockTransport {
	return &MockTransport{responses: make(map[string]*MockResponse)}
}

// RegisterResponse registers a mock response for an exact URL match.
func (m *MockTransport) RegisterResponse(url string, response *MockResponse) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if response.StatusCode == 0 {
		response.StatusCode = 200
	}
	m.responses[url] = response
}

// RegisterPattern registers a mock response for URLs matching a regexp.
func (m *MockTransport) RegisterPattern(pattern string, response *MockResponse) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if response.StatusCode == 0 {
		response.StatusCode = 200
	}
	m.patterns = append(m.patterns, mockPattern{pattern: re, response: response})
	return nil
}

// RegisterHTML registers a 200 text/html response for an exact URL.
func (m *MockTransport) RegisterHTML(url, body string) {
	m.RegisterResponse(url, &MockResponse{
		Body:    body,
		Headers: http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
	})
}

// Requests returns the "<method> <url>" pairs seen so far, in order.
func (m *MockTransport) Requests() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return append([]string(nil), m.requests...)
}

// RoundTrip implements http.RoundTripper.
func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mutex.Lock()
	m.requests = append(m.requests, req.Method+" "+req.URL.String())
	mock := m.responses[req.URL.String()]
	if mock == nil {
		for _, p := range m.patterns {
			if p.pattern.MatchString(req.URL.String()) {
				mock = p.response
				break
			}
		}
	}
	m.mutex.Unlock()

	if mock == nil {
		return nil, errors.New("no mock registered for " + req.URL.String())
	}
	if mock.Error != nil {
		return nil, mock.Error
	}

	body := []byte(mock.Body)
	if mock.RawBody != nil {
		body = mock.RawBody
	}
	if mock.BodyFunc != nil {
		body = []byte(mock.BodyFunc(req))
	}
	if req.Method == http.MethodHead {
		body = nil
	}

	headers := http.Header{}
	for k, v := range mock.Headers {
		headers[k] = v
	}
	if headers.Get("Content-Type") == "" {
		headers.Set("Content-Type", "text/html; charset=utf-8")
	}

	return &http.Response{
		StatusCode: mock.StatusCode,
		Status:     http.StatusText(mock.StatusCode),
		Header:     headers,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Request:    req,
	}, nil
}

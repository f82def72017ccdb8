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

import "errors"

var (
	// ErrConfig is returned when the global ruleset is missing or a URL has no host
	ErrConfig = errors.New("configuration error")
	// ErrHTTP is the error type for failed or non-2xx HTTP requests
	ErrHTTP = errors.New("http request failed")
	// ErrWrongContentType is returned when a HEAD response does not indicate HTML
	ErrWrongContentType = errors.New("content type is not text/html")
	// ErrXML is the error type for DOM or XPath construction and mutation failures
	ErrXML = errors.New("xml error")
	// ErrScrape is returned when body extraction produced nothing after all passes
	ErrScrape = errors.New("no body found")
	// ErrURL is returned when URL repair produced an unparseable string
	ErrURL = errors.New("malformed URL")
	// ErrIO is the error type for file read and write failures
	ErrIO = errors.New("io error")
	// ErrUnknown is the catch-all error kind
	ErrUnknown = errors.New("unknown error")
)

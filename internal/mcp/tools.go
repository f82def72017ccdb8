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

package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
)

// ScrapeArticleArgs defines the input schema for the scrape_article tool
type ScrapeArticleArgs struct {
	URL            string `json:"url"`
	DownloadImages bool   `json:"downloadImages,omitempty"`
}

// ScrapeArticleResult defines the output schema for the scrape_article tool
type ScrapeArticleResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Title   string `json:"title,omitempty"`
	Author  string `json:"author,omitempty"`
	Date    string `json:"date,omitempty"`
	HTML    string `json:"html,omitempty"`
	Message string `json:"message,omitempty"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "scrape_article",
		Description: "Extracts the readable article content (title, author, date, body HTML) from a web page",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ScrapeArticleArgs) (*mcp.CallToolResult, any, error) {
		logrus.WithField("url", args.URL).Info("tool called: scrape_article")

		article, err := s.scraper.Parse(ctx, args.URL, args.DownloadImages, s.client)
		if err != nil {
			return nil, ScrapeArticleResult{
				Success: false,
				Message: fmt.Sprintf("scraping failed: %v", err),
			}, nil
		}

		result := ScrapeArticleResult{
			Success: true,
			URL:     article.URL.String(),
			Title:   article.Title,
			Author:  article.Author,
			HTML:    article.GetContent(),
		}
		if !article.Date.IsZero() {
			result.Date = article.Date.Format(time.RFC3339)
		}
		return nil, result, nil
	})
}

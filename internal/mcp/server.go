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

// Package mcp exposes the article scraper over the Model Context
// Protocol so agent clients can extract readable pages as a tool call.
package mcp

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	articlescraper "github.com/rijkvp/article-scraper"
	"github.com/rijkvp/article-scraper/internal/version"
	"github.com/sirupsen/logrus"
)

const serverName = "article-scraper"

// Server wraps a Scraper and exposes it via the MCP protocol.
type Server struct {
	server  *mcp.Server
	scraper *articlescraper.Scraper
	client  *http.Client
}

// NewServer creates an MCP server around a loaded scraper.
func NewServer(scraper *articlescraper.Scraper, client *http.Client) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: version.CurrentVersion,
	}, nil)

	s := &Server{server: mcpServer, scraper: scraper, client: client}
	s.registerTools()
	return s
}

// RunStdio serves MCP over stdin/stdout until the context is cancelled.
func (s *Server) RunStdio(ctx context.Context) error {
	logrus.Info("starting MCP server on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves MCP over a streamable HTTP endpoint.
func (s *Server) RunHTTP(addr string) error {
	logrus.WithField("addr", addr).Info("starting MCP HTTP server")
	handler := mcp.NewStreamableHTTPHandler(
		func(req *http.Request) *mcp.Server { return s.server },
		nil,
	)
	return http.ListenAndServe(addr, handler)
}

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

package main

import (
	"net/http"
	"time"

	articlescraper "github.com/rijkvp/article-scraper"
	"github.com/rijkvp/article-scraper/internal/mcp"
	"github.com/spf13/cobra"
)

var (
	mcpConfigDir string
	mcpHTTPAddr  string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the scraper as an MCP tool (stdio by default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		scraper, err := articlescraper.New(mcpConfigDir)
		if err != nil {
			return err
		}
		server := mcp.NewServer(scraper, &http.Client{Timeout: 30 * time.Second})
		if mcpHTTPAddr != "" {
			return server.RunHTTP(mcpHTTPAddr)
		}
		return server.RunStdio(cmd.Context())
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpConfigDir, "config-dir", "ftr-site-config", "directory with site rule files")
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "serve MCP over HTTP on this address instead of stdio")
}

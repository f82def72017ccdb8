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
	"fmt"
	"net/http"
	"time"

	articlescraper "github.com/rijkvp/article-scraper"
	"github.com/spf13/cobra"
	"github.com/yosssi/gohtml"
)

var (
	configDir      string
	outputDir      string
	downloadImages bool
	prettyPrint    bool
	timeout        time.Duration
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Scrape an article and print or save the cleaned HTML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scraper, err := articlescraper.New(configDir)
		if err != nil {
			return err
		}

		client := &http.Client{Timeout: timeout}
		article, err := scraper.Parse(cmd.Context(), args[0], downloadImages, client)
		if err != nil {
			return err
		}

		if outputDir != "" {
			if err := article.SaveHTML(outputDir); err != nil {
				return err
			}
			fmt.Printf("saved %q to %s\n", article.Title, outputDir)
			return nil
		}

		content := article.GetContent()
		if prettyPrint {
			content = gohtml.Format(content)
		}
		fmt.Println(content)
		return nil
	},
}

func init() {
	scrapeCmd.Flags().StringVarP(&configDir, "config-dir", "c", "ftr-site-config", "directory with site rule files")
	scrapeCmd.Flags().StringVarP(&outputDir, "output", "o", "", "write <title>.html into this directory instead of stdout")
	scrapeCmd.Flags().BoolVarP(&downloadImages, "images", "i", false, "embed images as data URIs")
	scrapeCmd.Flags().BoolVarP(&prettyPrint, "pretty", "p", false, "indent the HTML output")
	scrapeCmd.Flags().DurationVarP(&timeout, "timeout", "t", 30*time.Second, "HTTP timeout")
}

// Copyright 2026 Blink Labs Software
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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/blinklabs-io/vaultgov/api"
	"github.com/blinklabs-io/vaultgov/internal/config"
	"github.com/spf13/cobra"
)

const clientTimeout = 30 * time.Second

// apiURL derives the default server URL from the configured listen address
func apiURL(cfg *config.Config) string {
	addr := cfg.ListenAddress
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr
}

type apiClient struct {
	baseURL string
	caller  string
	http    *http.Client
}

func newAPIClient(baseURL, caller string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		caller:  caller,
		http:    &http.Client{Timeout: clientTimeout},
	}
}

// do sends body as JSON and decodes a 2xx response into out. Error
// responses are returned as errors carrying the server's error code
func (c *apiClient) do(
	ctx context.Context,
	method string,
	path string,
	body any,
	out any,
) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.caller != "" {
		req.Header.Set(api.CallerHeader, c.caller)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			return fmt.Errorf("%s %s: %s", method, path, resp.Status)
		}
		return fmt.Errorf("%s: %s", apiErr.Error, apiErr.Message)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func clientFlags(cmd *cobra.Command, url *string) {
	cmd.Flags().StringVar(url, "api-url", "", "server URL (default derived from listenAddress)")
}

func resolveURL(cmd *cobra.Command, url string) string {
	if url != "" {
		return url
	}
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return apiURL(cfg)
}

func initCommand() *cobra.Command {
	var url, admin, sponsor string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize governance state on a running server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg := config.FromContext(cmd.Context()); cfg != nil {
				if admin == "" {
					admin = cfg.Admin
				}
				if sponsor == "" {
					sponsor = cfg.Sponsor
				}
			}
			var resp api.GlobalConfigResponse
			err := newAPIClient(resolveURL(cmd, url), "").do(
				cmd.Context(),
				http.MethodPost,
				"/api/v1/initialize",
				api.InitializeRequest{Admin: admin, Sponsor: sponsor},
				&resp,
			)
			if err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}
	clientFlags(cmd, &url)
	cmd.Flags().StringVar(&admin, "admin", "", "admin identity (default from config)")
	cmd.Flags().StringVar(&sponsor, "sponsor", "", "sponsor identity (default from config)")
	return cmd
}

func statsCommand() *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show platform statistics from a running server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp api.StatsResponse
			err := newAPIClient(resolveURL(cmd, url), "").do(
				cmd.Context(),
				http.MethodGet,
				"/api/v1/stats",
				nil,
				&resp,
			)
			if err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}
	clientFlags(cmd, &url)
	return cmd
}

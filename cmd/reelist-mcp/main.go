// Command reelist-mcp exposes the Reelist API as MCP tools over stdio, so
// agent runtimes can collect profile video lists without speaking HTTP
// themselves.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// videosRequest mirrors the Reelist API request model.
type videosRequest struct {
	Username  string `json:"username"`
	MaxVideos int    `json:"max_videos,omitempty"`
	FetchMode string `json:"fetch_mode,omitempty"`
	MaxAge    int    `json:"max_age_ms,omitempty"`
}

// videosResponse mirrors the Reelist API response model.
type videosResponse struct {
	Success   bool     `json:"success"`
	Username  string   `json:"username"`
	VideoIDs  []string `json:"video_ids"`
	VideoURLs []string `json:"video_urls"`
	Pages     int      `json:"pages"`
	Error     *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	apiURL := os.Getenv("REELIST_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("REELIST_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "REELIST_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"reelist",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	getUserVideosTool := mcp.NewTool("get_user_videos",
		mcp.WithDescription("Collect the public video IDs of a profile. Uses a headless browser with bot-detection evasion; expect tens of seconds for large collections."),
		mcp.WithString("username",
			mcp.Required(),
			mcp.Description("The profile handle, without the leading @"),
		),
		mcp.WithNumber("max_videos",
			mcp.Description("Maximum number of unique video IDs to collect (default: 50, max: 2000)"),
		),
		mcp.WithString("fetch_mode",
			mcp.Description("Pagination fetch path: 'browser' (default, in-page fetch) or 'http' (direct requests with a browser TLS fingerprint)"),
			mcp.Enum("browser", "http"),
		),
	)
	s.AddTool(getUserVideosTool, handleGetUserVideos(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleGetUserVideos(apiURL, apiKey string) server.ToolHandlerFunc {
	// Long timeout: a 2000-video collection with polite delays takes minutes.
	client := &http.Client{Timeout: 10 * time.Minute}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		username, err := request.RequireString("username")
		if err != nil {
			return mcp.NewToolResultError("username is required"), nil
		}
		username = strings.TrimPrefix(username, "@")

		reqBody := videosRequest{
			Username:  username,
			FetchMode: request.GetString("fetch_mode", ""),
		}
		if raw, ok := request.GetArguments()["max_videos"]; ok {
			if n, ok := raw.(float64); ok {
				reqBody.MaxVideos = int(n)
			}
		}

		body, err := json.Marshal(reqBody)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal request: %v", err)), nil
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/api/v1/videos", bytes.NewReader(body))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("X-API-Key", apiKey)

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}

		var videosResp videosResponse
		if err := json.Unmarshal(respBody, &videosResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !videosResp.Success {
			if videosResp.Error != nil {
				return mcp.NewToolResultError(fmt.Sprintf("%s: %s", videosResp.Error.Code, videosResp.Error.Message)), nil
			}
			return mcp.NewToolResultError("collection failed with no error detail"), nil
		}

		out, err := json.MarshalIndent(videosResp, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to render result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

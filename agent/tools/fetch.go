package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"codeward/component/tool"
)

// maxFetchBytes caps the response body read from the network.
const maxFetchBytes = 5 << 20

type FetchPageInput struct {
	Url string `json:"url" jsonschema:"description=The http or https URL to fetch"`
}

// FetchPage fetches a URL and converts HTML to markdown so the model
// gets readable text instead of markup.
func FetchPage() tool.Tool {
	client := &http.Client{Timeout: 30 * time.Second}

	return tool.Func(tool.Definition{
		Name:        "fetch_page",
		Description: "Fetch a web page and return its content as markdown.",
	}, func(ctx context.Context, input FetchPageInput) (string, error) {
		url := strings.TrimSpace(input.Url)
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return "", fmt.Errorf("url must start with http:// or https://. Pass a full URL")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", fmt.Errorf("invalid url %s: %w. Pass a full URL", url, err)
		}
		req.Header.Set("User-Agent", "codeward/1.0")

		resp, err := client.Do(req)
		if err != nil {
			return "", fmt.Errorf("failed to fetch %s: %w. Check the URL and the network", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return "", fmt.Errorf("fetching %s returned %s. Check the URL", url, resp.Status)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
		if err != nil {
			return "", fmt.Errorf("failed to read response from %s: %w. Try again", url, err)
		}

		contentType := resp.Header.Get("Content-Type")
		if strings.Contains(contentType, "text/html") {
			md, err := htmltomarkdown.ConvertString(string(body))
			if err == nil {
				return truncateOutput(md), nil
			}
			// Fall through to the raw body when conversion chokes.
		}
		if strings.Contains(contentType, "text/") ||
			strings.Contains(contentType, "json") ||
			strings.Contains(contentType, "xml") {
			return truncateOutput(string(body)), nil
		}

		return fmt.Sprintf("%s returned binary content (%s, %d bytes)", url, contentType, len(body)), nil
	})
}

package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Ayesha86527/KisanDost/internal/domain/entities"

	"go.uber.org/zap"
)

const (
	// WebSearchToolName is the name the model uses to request a search.
	WebSearchToolName = "web_search_tool"

	defaultTavilyURL = "https://api.tavily.com/search"

	// noResultsSentinel distinguishes "searched, found nothing" from
	// "did not search" for the reasoning loop.
	noResultsSentinel = "No relevant results found."
	searchErrorTag    = "[Search Error]: "

	maxSearchResults = 3
)

// WebSearchTool searches the web through the Tavily API and flattens the
// hits into a text observation. Provider failures are reported as tagged
// text, never as an error: the reasoning loop reads failures as
// observations and decides what to do next.
type WebSearchTool struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewWebSearchTool creates a new instance of WebSearchTool.
func NewWebSearchTool(apiKey string, logger *zap.Logger) *WebSearchTool {
	return &WebSearchTool{
		apiKey:     apiKey,
		apiURL:     defaultTavilyURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

func (t *WebSearchTool) Name() string {
	return WebSearchToolName
}

func (t *WebSearchTool) Description() string {
	return "Search agricultural information (chemicals, fertilizers, crop safety) using Tavily."
}

func (t *WebSearchTool) Parameters() []entities.Parameter {
	return []entities.Parameter{
		{
			Name:        "query",
			Type:        "string",
			Description: "The search query",
			Required:    true,
		},
	}
}

// searchResult is one provider hit before flattening.
type searchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Execute performs the search. The query is passed through to the
// provider as-is, including an empty query: the provider decides what an
// empty search means.
func (t *WebSearchTool) Execute(arguments string) (string, error) {
	type args struct {
		Query string `json:"query"`
	}
	var query string
	var argumentsArgs args

	if err := json.Unmarshal([]byte(arguments), &argumentsArgs); err != nil {
		// The model occasionally sends the bare query string.
		if err := json.Unmarshal([]byte(arguments), &query); err != nil {
			return searchErrorTag + "failed to parse arguments", nil
		}
	} else {
		query = argumentsArgs.Query
	}

	t.logger.Info("Search query", zap.String("query", query))

	payload := map[string]any{
		"query":               query,
		"search_depth":        "basic",
		"max_results":         maxSearchResults,
		"include_raw_content": false,
		"include_images":      false,
		"include_answer":      false,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return searchErrorTag + err.Error(), nil
	}

	req, err := http.NewRequest("POST", t.apiURL, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return searchErrorTag + err.Error(), nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.logger.Error("Failed to execute search request", zap.Error(err))
		return searchErrorTag + err.Error(), nil
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return searchErrorTag + err.Error(), nil
	}

	if resp.StatusCode != http.StatusOK {
		t.logger.Error("Search API request failed", zap.Int("status_code", resp.StatusCode))
		return fmt.Sprintf("%sAPI request failed with status code: %d", searchErrorTag, resp.StatusCode), nil
	}

	var result struct {
		Results []searchResult `json:"results"`
	}
	if err := json.Unmarshal(bodyBytes, &result); err != nil {
		return searchErrorTag + "failed to parse API response", nil
	}

	if len(result.Results) == 0 {
		return noResultsSentinel, nil
	}

	if len(result.Results) > maxSearchResults {
		result.Results = result.Results[:maxSearchResults]
	}

	t.logger.Info("Web search completed", zap.String("query", query), zap.Int("results", len(result.Results)))
	return flattenResults(result.Results), nil
}

// flattenResults renders hits in provider order as fixed text blocks
// separated by a blank line.
func flattenResults(results []searchResult) string {
	blocks := make([]string, 0, len(results))
	for _, res := range results {
		blocks = append(blocks, fmt.Sprintf("URL: %s\nTitle: %s\nContent: %s\n---\n", res.URL, res.Title, res.Content))
	}
	return strings.Join(blocks, "\n")
}

var _ entities.Tool = (*WebSearchTool)(nil)

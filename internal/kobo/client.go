package kobo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tree-service/internal/config"
)

// Client talks to the KoBoToolbox data API.
type Client struct {
	apiURL     string
	apiToken   string
	httpClient *http.Client
}

func NewClient(cfg config.KoboConfig) *Client {
	return &Client{
		apiURL:   strings.TrimRight(cfg.APIURL, "/"),
		apiToken: cfg.APIToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type listResponse struct {
	Count   int          `json:"count"`
	Results []Submission `json:"results"`
}

// ListSubmissions fetches all submissions for the asset recorded at or after
// the given time.
func (c *Client) ListSubmissions(ctx context.Context, assetID string, since time.Time) ([]Submission, error) {
	endpoint := fmt.Sprintf("%s/assets/%s/data/", c.apiURL, assetID)

	filter := map[string]map[string]string{
		"_submission_time": {"$gte": since.UTC().Format("2006-01-02T15:04:05")},
	}
	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to build submission filter: %w", err)
	}

	params := url.Values{}
	params.Set("query", string(filterJSON))
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create submissions request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submissions for asset %s: %w", assetID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("submissions request for asset %s returned status %d: %s", assetID, resp.StatusCode, string(body))
	}

	var payload listResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode submissions response: %w", err)
	}

	return payload.Results, nil
}

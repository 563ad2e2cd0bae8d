package eligibility

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MarvinHoffmann/DropGate/internal/pkg/apperr"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/env"
)

// Client queries the external purchase-eligibility endpoint.
type Client struct {
	APIBaseURL string

	HTTPClient *http.Client
}

// NewClientFromEnv builds a client from environment configuration.
func NewClientFromEnv() *Client {
	return &Client{
		APIBaseURL: strings.TrimRight(env.GetEnv("ELIGIBILITY_API_BASE_URL", ""), "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type eligibilityResponse struct {
	Code  int    `json:"code"`
	Data  *bool  `json:"data"`
	Error string `json:"error"`
}

// CheckAddress asks the eligibility service whether the address purchased.
// A non-zero code or missing data field is a failure.
func (c *Client) CheckAddress(ctx context.Context, address string) (bool, error) {
	if c.APIBaseURL == "" {
		return false, apperr.Upstream("ELIGIBILITY_API_BASE_URL is not configured", nil)
	}

	url := c.APIBaseURL + "/" + address
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, apperr.Upstream("building eligibility request failed", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return false, apperr.Upstream("eligibility request failed", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, apperr.Upstream(
			fmt.Sprintf("eligibility request failed: status=%d body=%s", resp.StatusCode, string(body)), nil)
	}

	var out eligibilityResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return false, apperr.Upstream("unparsable eligibility response", err)
	}
	if out.Code != 0 {
		return false, apperr.Upstream(
			fmt.Sprintf("eligibility service rejected address: code=%d error=%s", out.Code, out.Error), nil)
	}
	if out.Data == nil {
		return false, apperr.Upstream("eligibility response missing data", nil)
	}
	return *out.Data, nil
}

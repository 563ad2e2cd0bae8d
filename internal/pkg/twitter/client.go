package twitter

import (
	"bytes"
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

const defaultAPIBaseURL = "https://api.twitter.com/2"

// Client performs single authenticated calls against the provider REST API.
// It does not retry; each verification is one round trip and retry policy
// belongs to callers.
type Client struct {
	APIBaseURL string

	HTTPClient *http.Client
}

// NewClientFromEnv builds a client from environment configuration. The
// timeout stays well inside the provider's 15-minute rate-limit buckets.
func NewClientFromEnv() *Client {
	return &Client{
		APIBaseURL: strings.TrimRight(env.GetEnv("TWITTER_API_BASE_URL", defaultAPIBaseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// PerformAction issues one signed request and decodes the response envelope.
// A transport failure, an unparsable body, or a non-empty error list all
// surface as UpstreamError carrying the raw cause.
func (c *Client) PerformAction(ctx context.Context, creds Credentials, method, url string, body any) (*Response, error) {
	if strings.TrimSpace(creds.AccessToken) == "" {
		return nil, apperr.InvalidInput("access token is required")
	}

	var reqBody io.Reader
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, apperr.InvalidInput(fmt.Sprintf("unencodable request body: %v", err))
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, apperr.Upstream("building provider request failed", err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, apperr.Upstream("provider request failed", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<20))

	out := &Response{StatusCode: resp.StatusCode, Body: raw}
	if err := json.Unmarshal(raw, &out.Envelope); err != nil {
		return nil, apperr.Upstream(
			fmt.Sprintf("unparsable provider response: status=%d body=%s", resp.StatusCode, string(raw)), err)
	}

	// The provider reports partial failures with 200s; the error list is
	// authoritative, not the status code.
	if len(out.Envelope.Errors) > 0 {
		return nil, apperr.Upstream(formatAPIErrors(out.Envelope.Errors), nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperr.Upstream(
			fmt.Sprintf("provider request failed: status=%d body=%s", resp.StatusCode, string(raw)), nil)
	}

	return out, nil
}

func formatAPIErrors(errs []APIError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Detail != "" {
			parts = append(parts, e.Detail)
			continue
		}
		parts = append(parts, e.Title)
	}
	return "provider returned errors: " + strings.Join(parts, "; ")
}

func decodeData(resp *Response, dst any) error {
	if len(resp.Envelope.Data) == 0 {
		return apperr.Upstream("provider response missing data", nil)
	}
	if err := json.Unmarshal(resp.Envelope.Data, dst); err != nil {
		return apperr.Upstream("provider response has unexpected shape", err)
	}
	return nil
}

package airdrop

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

// Client talks to the external reward-distribution service.
type Client struct {
	APIBaseURL string

	HTTPClient *http.Client
}

// NewClientFromEnv builds a client from environment configuration.
func NewClientFromEnv() *Client {
	return &Client{
		APIBaseURL: strings.TrimRight(env.GetEnv("AIRDROP_API_BASE_URL", ""), "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type distributeRequest struct {
	Address string `json:"address"`
	Amount  int64  `json:"amount"`
}

type distributeResponse struct {
	Data struct {
		AirdropCount int64 `json:"airdrop_count"`
	} `json:"data"`
}

// Distribute asks the external service to pay out amount to address and
// returns the service's cumulative count for that address. The external
// ledger is authoritative; the returned count is reported as-is.
func (c *Client) Distribute(ctx context.Context, address string, amount int64) (int64, error) {
	if c.APIBaseURL == "" {
		return 0, apperr.Upstream("AIRDROP_API_BASE_URL is not configured", nil)
	}

	payload, err := json.Marshal(distributeRequest{Address: address, Amount: amount})
	if err != nil {
		return 0, apperr.Upstream("encoding airdrop request failed", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+"/airdrop", bytes.NewReader(payload))
	if err != nil {
		return 0, apperr.Upstream("building airdrop request failed", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, apperr.Upstream("airdrop request failed", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, apperr.Upstream(
			fmt.Sprintf("airdrop request failed: status=%d body=%s", resp.StatusCode, string(body)), nil)
	}

	var out distributeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, apperr.Upstream("unparsable airdrop response", err)
	}
	return out.Data.AirdropCount, nil
}

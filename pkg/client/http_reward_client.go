package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AccelByte/extend-runner-progression/pkg/domain"
)

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 1024

// HTTPRewardClient posts grants to a wallet service:
//
//	POST {endpoint}/players/{playerID}/currency  {"currency":"coins","amount":500}
//	POST {endpoint}/players/{playerID}/unlocks   {"kind":"skin","value":"chrome"}
//	POST {endpoint}/players/{playerID}/rewards   domain.Reward
type HTTPRewardClient struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPRewardClient creates a wallet client with a per-request timeout.
func NewHTTPRewardClient(endpoint string, timeout time.Duration, logger *slog.Logger) *HTTPRewardClient {
	return &HTTPRewardClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type currencyRequest struct {
	Currency string `json:"currency"`
	Amount   int    `json:"amount"`
}

type unlockRequest struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

func (c *HTTPRewardClient) GrantCurrency(ctx context.Context, playerID, currency string, amount int) error {
	if amount <= 0 {
		return &RejectedError{Reason: fmt.Sprintf("amount must be positive, got %d", amount)}
	}
	return c.post(ctx, playerID, "currency", currencyRequest{Currency: currency, Amount: amount})
}

func (c *HTTPRewardClient) GrantUnlock(ctx context.Context, playerID, kind, value string) error {
	if kind == "" || value == "" {
		return &RejectedError{Reason: "unlock kind and value are required"}
	}
	return c.post(ctx, playerID, "unlocks", unlockRequest{Kind: kind, Value: value})
}

// GrantReward sends the whole reward in one request.
func (c *HTTPRewardClient) GrantReward(ctx context.Context, playerID string, reward domain.Reward) error {
	if reward.IsZero() {
		return nil
	}
	return c.post(ctx, playerID, "rewards", reward)
}

func (c *HTTPRewardClient) post(ctx context.Context, playerID, resource string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode grant: %w", err)
	}

	target := fmt.Sprintf("%s/players/%s/%s", c.endpoint, url.PathEscape(playerID), resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build grant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("wallet request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("wallet grant",
		"player_id", playerID,
		"resource", resource,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &WalletError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("wallet returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
	}
}

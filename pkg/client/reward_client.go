package client

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/AccelByte/extend-runner-progression/pkg/domain"
)

// Wallet currencies a Reward is paid out in.
const (
	CurrencyCoins  = "coins"
	CurrencyGems   = "gems"
	CurrencyTokens = "revive_tokens"
)

// WalletError is a non-2xx response from the wallet service.
type WalletError struct {
	StatusCode int
	Message    string
}

func (e *WalletError) Error() string {
	return e.Message
}

// HTTPStatusCode returns the status code of the wallet response.
func (e *WalletError) HTTPStatusCode() int {
	return e.StatusCode
}

// RejectedError means the wallet refused the grant itself (400).
// Examples: unknown currency, negative amount, unknown unlock kind
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return "grant rejected: " + e.Reason
}

func (e *RejectedError) HTTPStatusCode() int {
	return http.StatusBadRequest
}

// UnknownPlayerError means the wallet has no account for the player (404).
type UnknownPlayerError struct {
	PlayerID string
}

func (e *UnknownPlayerError) Error() string {
	return "unknown player: " + e.PlayerID
}

func (e *UnknownPlayerError) HTTPStatusCode() int {
	return http.StatusNotFound
}

// HTTPStatusCodeError is an error carrying an HTTP status code.
type HTTPStatusCodeError interface {
	error
	HTTPStatusCode() int
}

// IsRetryableHTTPStatus reports whether a grant that failed with statusCode
// may succeed on a later attempt.
//
// Client errors (400, 401, 403, 404, 409, 422) are final. Timeouts, throttling
// and server errors (408, 429, 5xx) are retried. Other 4xx codes are final.
func IsRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 400, 401, 403, 404, 409, 422:
		return false
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return statusCode < 400 || statusCode >= 500
	}
}

// IsRetryableError classifies an error returned by a RewardClient.
//
// A status code wins when one is present anywhere in the chain. A cancelled
// or expired context is never retried. Otherwise the message is matched
// against known permanent failures and everything else (network timeouts,
// connection resets) is retried.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr HTTPStatusCodeError
	if errors.As(err, &httpErr) {
		return IsRetryableHTTPStatus(httpErr.HTTPStatusCode())
	}

	errMsg := strings.ToLower(err.Error())
	permanent := []string{
		"bad request",
		"invalid argument",
		"not found",
		"forbidden",
		"unauthorized",
		"authentication failed",
		"permission denied",
		"grant rejected",
		"unknown player",
		"unknown currency",
	}
	for _, pattern := range permanent {
		if strings.Contains(errMsg, pattern) {
			return false
		}
	}
	return true
}

// RewardClient pays claimed rewards into a player's wallet.
type RewardClient interface {
	// GrantCurrency credits amount of currency to the player.
	GrantCurrency(ctx context.Context, playerID, currency string, amount int) error

	// GrantUnlock grants a cosmetic or character unlock (kind "skin", value "chrome").
	GrantUnlock(ctx context.Context, playerID, kind, value string) error

	// GrantReward pays every part of reward. It is not atomic: a failure
	// may leave earlier parts granted.
	GrantReward(ctx context.Context, playerID string, reward domain.Reward) error
}

type currencyGrant struct {
	currency string
	amount   int
}

// currencyGrants lists the non-zero currency parts of a reward in a fixed order.
func currencyGrants(reward domain.Reward) []currencyGrant {
	var out []currencyGrant
	for _, g := range []currencyGrant{
		{CurrencyCoins, reward.Coins},
		{CurrencyGems, reward.Gems},
		{CurrencyTokens, reward.Tokens},
	} {
		if g.amount != 0 {
			out = append(out, g)
		}
	}
	return out
}

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/moneymaven/insights/internal/domain"
)

// https://developer.investec.com/za/api-products

const (
	maxRetries     = 5
	requestTimeout = 30 * time.Second
)

var _ Client = &Investec{}

// Investec talks to the Investec private-banking API. Access tokens come
// from the client-credentials grant and are cached until expiry.
type Investec struct {
	host         string
	clientID     string
	clientSecret string
	apiKey       string

	httpClient *http.Client
	log        zerolog.Logger

	mu    sync.Mutex
	token *domain.Token
}

func NewInvestec(host, clientID, clientSecret, apiKey string, log zerolog.Logger) *Investec {
	return &Investec{
		host:         strings.TrimRight(host, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: requestTimeout},
		log:          log,
	}
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// envelope is the {"data": ...} wrapper around every API response.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

type accountsData struct {
	Accounts []domain.Account `json:"accounts"`
}

type transactionsData struct {
	Transactions []domain.ProviderTransaction `json:"transactions"`
}

// Accounts lists every account visible to the configured credentials.
func (c *Investec) Accounts(ctx context.Context) ([]domain.Account, error) {
	body, err := c.get(ctx, "/za/pb/v1/accounts", nil)
	if err != nil {
		return nil, fmt.Errorf("Accounts: %w", err)
	}

	var data accountsData
	if err := unwrap(body, &data); err != nil {
		return nil, fmt.Errorf("Accounts: %w", err)
	}
	return data.Accounts, nil
}

// Transactions fetches the account's transactions for the inclusive date
// range. Records come back exactly as the provider sent them; projection
// happens downstream.
func (c *Investec) Transactions(ctx context.Context, accountID string, from, to time.Time) ([]domain.ProviderTransaction, error) {
	params := url.Values{}
	params.Add("fromDate", from.Format("2006-01-02"))
	params.Add("toDate", to.Format("2006-01-02"))

	body, err := c.get(ctx, fmt.Sprintf("/za/pb/v1/accounts/%s/transactions", accountID), params)
	if err != nil {
		return nil, fmt.Errorf("Transactions: %w", err)
	}

	var data transactionsData
	if err := unwrap(body, &data); err != nil {
		return nil, fmt.Errorf("Transactions: %w", err)
	}
	return data.Transactions, nil
}

// Balance returns the account's current and available balance.
func (c *Investec) Balance(ctx context.Context, accountID string) (*domain.Balance, error) {
	body, err := c.get(ctx, fmt.Sprintf("/za/pb/v1/accounts/%s/balance", accountID), nil)
	if err != nil {
		return nil, fmt.Errorf("Balance: %w", err)
	}

	var balance domain.Balance
	if err := unwrap(body, &balance); err != nil {
		return nil, fmt.Errorf("Balance: %w", err)
	}
	return &balance, nil
}

func unwrap(body []byte, out interface{}) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// accessToken returns the cached token, refreshing it through the
// client-credentials grant when missing or expired.
func (c *Investec) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != nil && !c.token.HasExpired() {
		return c.token.Value, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.host+"/identity/v2/oauth2/token",
		strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("accessToken: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("x-api-key", c.apiKey)
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("accessToken: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("accessToken: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("accessToken: status %d (%s)", resp.StatusCode, string(body))
	}

	var tok accessTokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("accessToken: decode: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("accessToken: empty access_token in response")
	}

	c.token = domain.NewToken(tok.AccessToken, tok.ExpiresIn)
	c.log.Debug().Int("expires_in", tok.ExpiresIn).Msg("refreshed provider access token")
	return c.token.Value, nil
}

// get performs an authenticated GET with exponential backoff on transient
// failures. Client errors (4xx) fail immediately; only network errors and
// 5xx responses are retried.
func (c *Investec) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	uri := c.host + path
	if len(params) > 0 {
		uri += "?" + params.Encode()
	}

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			body = data
			return nil
		case resp.StatusCode >= 500:
			return fmt.Errorf("status %d (%s)", resp.StatusCode, string(data))
		default:
			return backoff.Permanent(fmt.Errorf("status %d (%s)", resp.StatusCode, string(data)))
		}
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	return body, nil
}

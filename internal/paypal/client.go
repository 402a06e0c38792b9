package paypal

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

	"github.com/sajitha00/farm-to-keells-api/internal/config"
	"github.com/sajitha00/farm-to-keells-api/internal/models"
)

// Client talks to the PayPal Payouts REST API.
type Client struct {
	HTTPClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	emailSubject string
	note         string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a new payout gateway client.
func NewClient(cfg *config.PayPalConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		emailSubject: cfg.EmailSubject,
		note:         cfg.Note,
	}
}

// SubmitPayout submits a payout instruction for asynchronous
// settlement. The gateway's response is an immediate accept/reject of
// the instruction, not of final fund movement. A 4xx response is
// returned as a *RejectedError carrying the gateway payload; transport
// failures and 5xx responses are plain errors.
func (c *Client) SubmitPayout(ctx context.Context, instruction models.PayoutInstruction) (*PayoutResult, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate with payout gateway: %w", err)
	}

	body := payoutRequest{
		SenderBatchHeader: senderBatchHeader{
			SenderBatchID: instruction.BatchID,
			EmailSubject:  c.emailSubject,
		},
		Items: []payoutItem{
			{
				RecipientType: "EMAIL",
				Amount: payoutAmount{
					Value:    instruction.Amount.String(),
					Currency: instruction.Currency,
				},
				Receiver:     instruction.Receiver,
				Note:         c.note,
				SenderItemID: "item_1",
			},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payments/payouts", strings.NewReader(string(payload)))
	if err != nil {
		return nil, fmt.Errorf("failed to create payout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach payout gateway: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read payout response: %w", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("payout gateway error (%d): %s", resp.StatusCode, string(respBody))
	case resp.StatusCode >= 400:
		rejected := &RejectedError{
			StatusCode: resp.StatusCode,
			Raw:        string(respBody),
		}
		var payload ErrorResponse
		if err := json.Unmarshal(respBody, &payload); err == nil {
			rejected.Payload = &payload
		}
		return nil, rejected
	}

	var result PayoutResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payout response: %w", err)
	}

	return &result, nil
}

// token returns a cached OAuth access token, fetching a fresh one via
// the client-credentials grant when missing or near expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach token endpoint: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint error (%d): %s", resp.StatusCode, string(respBody))
	}

	var token tokenResponse
	if err := json.Unmarshal(respBody, &token); err != nil {
		return "", fmt.Errorf("failed to unmarshal token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned an empty access token")
	}

	c.accessToken = token.AccessToken
	// Refresh one minute early to avoid using a token mid-expiry.
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - time.Minute)

	return c.accessToken, nil
}

// BaseURL returns the configured gateway base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a minimal Plaid API client covering token exchange and
// transaction pulls.
type Client struct {
	clientID string
	secret   string
	baseURL  string
	http     *http.Client
}

// Transaction is one Plaid transaction as returned by /transactions/get.
type Transaction struct {
	TransactionID string   `json:"transaction_id"`
	AccountID     string   `json:"account_id"`
	Name          string   `json:"name"`
	MerchantName  string   `json:"merchant_name"`
	Amount        float64  `json:"amount"`
	Date          string   `json:"date"`
	Category      []string `json:"category"`
	Pending       bool     `json:"pending"`
}

type transactionsResponse struct {
	Transactions      []Transaction `json:"transactions"`
	TotalTransactions int           `json:"total_transactions"`
}

type exchangeResponse struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
}

type linkTokenResponse struct {
	LinkToken string `json:"link_token"`
}

func NewClient(clientID, secret, environment string) *Client {
	if environment == "" {
		environment = "sandbox"
	}
	return &Client{
		clientID: clientID,
		secret:   secret,
		baseURL:  fmt.Sprintf("https://%s.plaid.com", environment),
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a local server.
func NewClientWithBaseURL(clientID, secret, baseURL string) *Client {
	return &Client{
		clientID: clientID,
		secret:   secret,
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateLinkToken starts the Plaid Link flow for a user.
func (c *Client) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	payload := map[string]interface{}{
		"client_id":     c.clientID,
		"secret":        c.secret,
		"client_name":   "Aura",
		"language":      "en",
		"country_codes": []string{"US"},
		"user":          map[string]string{"client_user_id": userID},
		"products":      []string{"transactions"},
	}
	var resp linkTokenResponse
	if err := c.post(ctx, "/link/token/create", payload, &resp); err != nil {
		return "", err
	}
	return resp.LinkToken, nil
}

// ExchangePublicToken trades the Link public token for a long-lived access
// token.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (accessToken, itemID string, err error) {
	payload := map[string]interface{}{
		"client_id":    c.clientID,
		"secret":       c.secret,
		"public_token": publicToken,
	}
	var resp exchangeResponse
	if err := c.post(ctx, "/item/public_token/exchange", payload, &resp); err != nil {
		return "", "", err
	}
	return resp.AccessToken, resp.ItemID, nil
}

// GetTransactions pulls all transactions in [startDate, endDate], following
// Plaid's count/offset pagination until the reported total is reached.
func (c *Client) GetTransactions(ctx context.Context, accessToken string, startDate, endDate time.Time) ([]Transaction, error) {
	const pageSize = 500
	var all []Transaction
	offset := 0
	for {
		payload := map[string]interface{}{
			"client_id":    c.clientID,
			"secret":       c.secret,
			"access_token": accessToken,
			"start_date":   startDate.Format("2006-01-02"),
			"end_date":     endDate.Format("2006-01-02"),
			"options":      map[string]interface{}{"count": pageSize, "offset": offset},
		}
		var resp transactionsResponse
		if err := c.post(ctx, "/transactions/get", payload, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Transactions...)
		offset += len(resp.Transactions)
		if offset >= resp.TotalTransactions || len(resp.Transactions) == 0 {
			break
		}
	}
	return all, nil
}

// StatusError carries the HTTP status of a failed Plaid call so callers can
// tell rate limits and outages apart from bad requests.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("plaid API error %d: %s", e.StatusCode, e.Body)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return json.Unmarshal(respBody, out)
}

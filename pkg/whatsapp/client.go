package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client talks to the WhatsApp Business (Graph) API.
type Client struct {
	baseURL       string
	phoneNumberID string
	http          *http.Client
}

// Message is one message from the business account's message history.
type Message struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Timestamp string `json:"timestamp"` // unix seconds as string
	Text      struct {
		Body string `json:"body"`
	} `json:"text"`
}

type messagesResponse struct {
	Data   []Message `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

func NewClient(baseURL, phoneNumberID string) *Client {
	if baseURL == "" {
		baseURL = "https://graph.facebook.com/v19.0"
	}
	return &Client{
		baseURL:       baseURL,
		phoneNumberID: phoneNumberID,
		http:          &http.Client{Timeout: 30 * time.Second},
	}
}

// StatusError carries the HTTP status of a failed Graph API call.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("whatsapp API error %d: %s", e.StatusCode, e.Body)
}

// GetMessages pulls messages for the configured phone number, following
// cursor pagination.
func (c *Client) GetMessages(ctx context.Context, accessToken string, since, until time.Time) ([]Message, error) {
	params := url.Values{}
	if !since.IsZero() {
		params.Set("since", strconv.FormatInt(since.Unix(), 10))
	}
	if !until.IsZero() {
		params.Set("until", strconv.FormatInt(until.Unix(), 10))
	}

	endpoint := fmt.Sprintf("%s/%s/messages?%s", c.baseURL, c.phoneNumberID, params.Encode())
	var all []Message
	for endpoint != "" {
		req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+accessToken)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
		}

		var page messagesResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Data...)
		endpoint = page.Paging.Next
	}
	return all, nil
}

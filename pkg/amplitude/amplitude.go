package amplitude

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"
)

const apiURL = "https://api2.amplitude.com/2/httpapi"

// Client sends product analytics events to Amplitude. All sends are
// asynchronous and best-effort.
type Client struct {
	apiKey string
	http   *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Track queues one event. A missing API key turns the client into a no-op.
func (c *Client) Track(userID, event string, properties map[string]interface{}) {
	if c == nil || c.apiKey == "" {
		return
	}
	go c.send(userID, event, properties)
}

func (c *Client) send(userID, event string, properties map[string]interface{}) {
	payload := map[string]interface{}{
		"api_key": c.apiKey,
		"events": []map[string]interface{}{
			{
				"user_id":          userID,
				"event_type":       event,
				"event_properties": properties,
				"time":             time.Now().UnixMilli(),
			},
		},
	}

	body, _ := json.Marshal(payload)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewBuffer(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("[Amplitude] Failed to send event %s: %v", event, err)
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Amplitude] Event %s rejected with status %d", event, resp.StatusCode)
	}
}

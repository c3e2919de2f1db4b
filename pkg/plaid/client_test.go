package plaid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTransactions_FollowsPagination(t *testing.T) {
	var requests []map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transactions/get", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		requests = append(requests, body)

		offset := int(body["options"].(map[string]interface{})["offset"].(float64))
		resp := transactionsResponse{TotalTransactions: 3}
		if offset == 0 {
			resp.Transactions = []Transaction{
				{TransactionID: "t1", Name: "RENT", Amount: 1500, Date: "2026-03-01"},
				{TransactionID: "t2", Name: "COFFEE", Amount: 4.5, Date: "2026-03-02"},
			}
		} else {
			resp.Transactions = []Transaction{
				{TransactionID: "t3", Name: "ELECTRIC BILL", Amount: 80, Date: "2026-03-03"},
			}
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClientWithBaseURL("client-id", "secret", server.URL)
	txns, err := client.GetTransactions(context.Background(), "access-token",
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, "t3", txns[2].TransactionID)
	assert.Len(t, requests, 2)
	assert.Equal(t, "2026-03-01", requests[0]["start_date"])
}

func TestGetTransactions_SurfacesStatusErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error_code":"RATE_LIMIT_EXCEEDED"}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("client-id", "secret", server.URL)
	_, err := client.GetTransactions(context.Background(), "access-token", time.Now().AddDate(0, -1, 0), time.Now())

	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusTooManyRequests, serr.StatusCode)
	assert.Contains(t, serr.Body, "RATE_LIMIT_EXCEEDED")
}

func TestExchangePublicToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/item/public_token/exchange", r.URL.Path)
		json.NewEncoder(w).Encode(exchangeResponse{AccessToken: "access-123", ItemID: "item-456"})
	}))
	defer server.Close()

	client := NewClientWithBaseURL("client-id", "secret", server.URL)
	access, itemID, err := client.ExchangePublicToken(context.Background(), "public-token")

	require.NoError(t, err)
	assert.Equal(t, "access-123", access)
	assert.Equal(t, "item-456", itemID)
}

package connector

import (
	"context"
	"errors"
	"log"
	"net"
	"strings"
	"time"

	sourcedomain "github.com/jindalsaj/aura/internal/source/domain"
	syncdomain "github.com/jindalsaj/aura/internal/sync/domain"
	"github.com/jindalsaj/aura/pkg/plaid"
)

// BankConnector fetches transactions through Plaid.
type BankConnector struct {
	client *plaid.Client
}

func NewBankConnector(client *plaid.Client) *BankConnector {
	return &BankConnector{client: client}
}

func (c *BankConnector) SourceType() sourcedomain.SourceType {
	return sourcedomain.SourceBank
}

func (c *BankConnector) Fetch(ctx context.Context, cred *sourcedomain.Credential, sel syncdomain.Selector) ([]syncdomain.RawItem, error) {
	if len(sel.IDs) > 0 || sel.ContentFilter != "" {
		return nil, syncdomain.ErrUnsupportedSelector
	}

	start := time.Now().AddDate(0, 0, -30)
	end := time.Now()
	if sel.Window != nil {
		if !sel.Window.Since.IsZero() {
			start = sel.Window.Since
		}
		if !sel.Window.Until.IsZero() {
			end = sel.Window.Until
		}
	}

	txns, err := c.client.GetTransactions(ctx, cred.AccessToken, start, end)
	if err != nil {
		return nil, classifyPlaidError(err)
	}

	items := make([]syncdomain.RawItem, 0, len(txns))
	for _, txn := range txns {
		item, err := convertTransaction(txn)
		if err != nil {
			log.Printf("[BankConnector] Skipping transaction: %v", err)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func classifyPlaidError(err error) error {
	var serr *plaid.StatusError
	if errors.As(err, &serr) {
		switch {
		case serr.StatusCode == 401 || serr.StatusCode == 403:
			return sourcedomain.ErrCredentialExpired
		case serr.StatusCode == 429 || serr.StatusCode >= 500:
			return syncdomain.Transient(err)
		}
		return err
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		return syncdomain.Transient(err)
	}
	return err
}

func convertTransaction(txn plaid.Transaction) (*syncdomain.TransactionItem, error) {
	if txn.TransactionID == "" {
		return nil, errors.New("transaction missing id")
	}
	date, err := time.Parse("2006-01-02", txn.Date)
	if err != nil {
		return nil, err
	}
	return &syncdomain.TransactionItem{
		ID:         txn.TransactionID,
		AccountID:  txn.AccountID,
		Name:       txn.Name,
		Merchant:   txn.MerchantName,
		Amount:     txn.Amount,
		Date:       date,
		Category:   categorizeTransaction(txn),
		Categories: txn.Category,
		Pending:    txn.Pending,
	}, nil
}

// categorizeTransaction maps a transaction to an expense category by
// description keywords, falling back to Plaid's own category.
func categorizeTransaction(txn plaid.Transaction) string {
	text := strings.ToLower(txn.Name + " " + txn.MerchantName)
	switch {
	case containsAny(text, "rent", "lease"):
		return "rent"
	case containsAny(text, "mortgage"):
		return "mortgage"
	case containsAny(text, "electric", "water", "gas", "internet", "utility", "utilities"):
		return "utilities"
	case containsAny(text, "repair", "plumb", "maintenance", "handyman", "hvac"):
		return "maintenance"
	case containsAny(text, "insurance"):
		return "insurance"
	case containsAny(text, "hoa"):
		return "hoa"
	}
	if len(txn.Category) > 0 {
		return strings.ToLower(txn.Category[0])
	}
	return "other"
}

func containsAny(text string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

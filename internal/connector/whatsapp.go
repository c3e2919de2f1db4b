package connector

import (
	"context"
	"errors"
	"log"
	"net"
	"strconv"
	"time"

	sourcedomain "github.com/jindalsaj/aura/internal/source/domain"
	syncdomain "github.com/jindalsaj/aura/internal/sync/domain"
	"github.com/jindalsaj/aura/pkg/whatsapp"
)

// WhatsAppConnector fetches messages through the WhatsApp Business API.
type WhatsAppConnector struct {
	client *whatsapp.Client
}

func NewWhatsAppConnector(client *whatsapp.Client) *WhatsAppConnector {
	return &WhatsAppConnector{client: client}
}

func (c *WhatsAppConnector) SourceType() sourcedomain.SourceType {
	return sourcedomain.SourceWhatsApp
}

func (c *WhatsAppConnector) Fetch(ctx context.Context, cred *sourcedomain.Credential, sel syncdomain.Selector) ([]syncdomain.RawItem, error) {
	if len(sel.IDs) > 0 || sel.ContentFilter != "" {
		return nil, syncdomain.ErrUnsupportedSelector
	}

	var since, until time.Time
	if sel.Window != nil {
		since = sel.Window.Since
		until = sel.Window.Until
	}

	msgs, err := c.client.GetMessages(ctx, cred.AccessToken, since, until)
	if err != nil {
		return nil, classifyWhatsAppError(err)
	}

	items := make([]syncdomain.RawItem, 0, len(msgs))
	for _, msg := range msgs {
		item, err := convertChatMessage(msg)
		if err != nil {
			log.Printf("[WhatsAppConnector] Skipping message: %v", err)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func classifyWhatsAppError(err error) error {
	var serr *whatsapp.StatusError
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

func convertChatMessage(msg whatsapp.Message) (*syncdomain.ChatItem, error) {
	if msg.ID == "" {
		return nil, errors.New("message missing id")
	}
	secs, err := strconv.ParseInt(msg.Timestamp, 10, 64)
	if err != nil {
		return nil, err
	}
	return &syncdomain.ChatItem{
		ID:   msg.ID,
		From: msg.From,
		To:   msg.To,
		Text: msg.Text.Body,
		Sent: time.Unix(secs, 0),
	}, nil
}

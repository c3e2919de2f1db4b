package connector

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	sourcedomain "github.com/jindalsaj/aura/internal/source/domain"
	syncdomain "github.com/jindalsaj/aura/internal/sync/domain"
)

const mailPageSize = 500

// MailConnector fetches email messages through the Gmail API.
type MailConnector struct{}

func NewMailConnector() *MailConnector {
	return &MailConnector{}
}

func (c *MailConnector) SourceType() sourcedomain.SourceType {
	return sourcedomain.SourceMail
}

func (c *MailConnector) Fetch(ctx context.Context, cred *sourcedomain.Credential, sel syncdomain.Selector) ([]syncdomain.RawItem, error) {
	token := &oauth2.Token{AccessToken: cred.AccessToken, TokenType: "Bearer"}
	srv, err := gmail.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(token)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}

	ids := sel.IDs
	if len(ids) == 0 {
		ids, err = c.listMessageIDs(srv, sel)
		if err != nil {
			return nil, classifyGoogleError(err)
		}
	}

	items := make([]syncdomain.RawItem, 0, len(ids))

	type fetchResult struct {
		item syncdomain.RawItem
		err  error
	}
	resultChan := make(chan fetchResult, len(ids))
	semaphore := make(chan struct{}, 10)

	for _, id := range ids {
		go func(msgID string) {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			msg, err := srv.Users.Messages.Get("me", msgID).Format("full").Context(ctx).Do()
			if err != nil {
				resultChan <- fetchResult{nil, err}
				return
			}
			item, err := convertMessage(msg)
			resultChan <- fetchResult{item, err}
		}(id)
	}

	var firstErr error
	for range ids {
		res := <-resultChan
		if res.err != nil {
			// A single malformed or unfetchable message must not fail the
			// batch. Auth and rate-limit errors do.
			classified := classifyGoogleError(res.err)
			if classified == sourcedomain.ErrCredentialExpired || syncdomain.IsTransient(classified) {
				if firstErr == nil {
					firstErr = classified
				}
				continue
			}
			log.Printf("[MailConnector] Skipping message: %v", res.err)
			continue
		}
		items = append(items, res.item)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return items, nil
}

func (c *MailConnector) listMessageIDs(srv *gmail.Service, sel syncdomain.Selector) ([]string, error) {
	q := buildMailQuery(sel)
	var ids []string
	pageToken := ""
	for {
		call := srv.Users.Messages.List("me").MaxResults(mailPageSize)
		if q != "" {
			call = call.Q(q)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, err
		}
		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return ids, nil
}

func buildMailQuery(sel syncdomain.Selector) string {
	var parts []string
	if sel.Window != nil {
		if !sel.Window.Since.IsZero() {
			parts = append(parts, "after:"+sel.Window.Since.Format("2006/01/02"))
		}
		if !sel.Window.Until.IsZero() {
			parts = append(parts, "before:"+sel.Window.Until.Format("2006/01/02"))
		}
	}
	if sel.ContentFilter != "" {
		parts = append(parts, sel.ContentFilter)
	}
	return strings.Join(parts, " ")
}

func convertMessage(msg *gmail.Message) (*syncdomain.MailItem, error) {
	if msg.Id == "" || msg.Payload == nil {
		return nil, fmt.Errorf("message missing id or payload")
	}

	body := extractBody(msg.Payload)

	return &syncdomain.MailItem{
		ID:          msg.Id,
		ThreadID:    msg.ThreadId,
		From:        headerValue(msg.Payload.Headers, "From"),
		To:          headerValue(msg.Payload.Headers, "To"),
		Subject:     headerValue(msg.Payload.Headers, "Subject"),
		Body:        body,
		Received:    time.Unix(msg.InternalDate/1000, 0),
		Attachments: extractAttachments(msg.Payload),
	}, nil
}

func headerValue(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}

func extractBody(payload *gmail.MessagePart) string {
	if payload.Body != nil && payload.Body.Data != "" {
		if data, err := base64.URLEncoding.DecodeString(payload.Body.Data); err == nil {
			return sanitizeBody(string(data), payload.MimeType == "text/html")
		}
	}

	var htmlBody, plainBody string
	var findBody func(parts []*gmail.MessagePart)
	findBody = func(parts []*gmail.MessagePart) {
		for _, part := range parts {
			if part.Body != nil && part.Body.Data != "" {
				data, err := base64.URLEncoding.DecodeString(part.Body.Data)
				if err != nil {
					continue
				}
				switch part.MimeType {
				case "text/html":
					htmlBody = string(data)
				case "text/plain":
					plainBody = string(data)
				}
			}
			if len(part.Parts) > 0 {
				findBody(part.Parts)
			}
		}
	}
	findBody(payload.Parts)

	if plainBody != "" {
		return sanitizeBody(plainBody, false)
	}
	return sanitizeBody(htmlBody, true)
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func sanitizeBody(body string, isHTML bool) string {
	if isHTML {
		body = tagPattern.ReplaceAllString(body, " ")
		body = strings.ReplaceAll(body, "&nbsp;", " ")
		body = strings.ReplaceAll(body, "&amp;", "&")
	}
	return strings.Join(strings.Fields(body), " ")
}

func extractAttachments(payload *gmail.MessagePart) []syncdomain.AttachmentInfo {
	var attachments []syncdomain.AttachmentInfo
	var walk func(parts []*gmail.MessagePart)
	walk = func(parts []*gmail.MessagePart) {
		for _, part := range parts {
			if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
				attachments = append(attachments, syncdomain.AttachmentInfo{
					Filename: part.Filename,
					MimeType: part.MimeType,
					Size:     part.Body.Size,
				})
			}
			if len(part.Parts) > 0 {
				walk(part.Parts)
			}
		}
	}
	walk(payload.Parts)
	return attachments
}

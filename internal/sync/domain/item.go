package domain

import (
	"fmt"
	"strings"
	"time"
)

// RecordKind is the normalized shape a raw item is stored as.
type RecordKind string

const (
	KindMessage  RecordKind = "message"
	KindDocument RecordKind = "document"
	KindEvent    RecordKind = "event"
	KindExpense  RecordKind = "expense"
)

// RawItem is one item fetched from an external source, before filtering.
// Implementations are per-source variants; the shared surface is the
// identity used for dedup, the normalized instant, and the text the
// relevance filter scores.
type RawItem interface {
	ExternalID() string
	Timestamp() time.Time
	RelevanceText() string
	Kind() RecordKind
}

// AttachmentInfo describes a mail attachment (metadata only).
type AttachmentInfo struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// MailItem is one email message.
type MailItem struct {
	ID          string
	ThreadID    string
	From        string
	To          string
	Subject     string
	Body        string
	Received    time.Time
	Attachments []AttachmentInfo
}

func (m *MailItem) ExternalID() string    { return m.ID }
func (m *MailItem) Timestamp() time.Time  { return m.Received }
func (m *MailItem) Kind() RecordKind      { return KindMessage }
func (m *MailItem) RelevanceText() string { return m.Subject + " " + m.Body }

// FileItem is one cloud storage file.
type FileItem struct {
	ID          string
	Name        string
	MimeType    string
	Size        int64
	Description string
	Modified    time.Time
}

func (f *FileItem) ExternalID() string   { return f.ID }
func (f *FileItem) Timestamp() time.Time { return f.Modified }
func (f *FileItem) Kind() RecordKind     { return KindDocument }
func (f *FileItem) RelevanceText() string {
	return strings.TrimSpace(f.Name + " " + f.Description)
}

// EventItem is one calendar event.
type EventItem struct {
	ID          string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	Attendees   []string
}

func (e *EventItem) ExternalID() string   { return e.ID }
func (e *EventItem) Timestamp() time.Time { return e.Start }
func (e *EventItem) Kind() RecordKind     { return KindEvent }
func (e *EventItem) RelevanceText() string {
	return strings.TrimSpace(e.Summary + " " + e.Description + " " + e.Location)
}

// TransactionItem is one bank transaction.
type TransactionItem struct {
	ID         string
	AccountID  string
	Name       string
	Merchant   string
	Amount     float64
	Date       time.Time
	Category   string
	Categories []string
	Pending    bool
}

func (t *TransactionItem) ExternalID() string   { return t.ID }
func (t *TransactionItem) Timestamp() time.Time { return t.Date }
func (t *TransactionItem) Kind() RecordKind     { return KindExpense }
func (t *TransactionItem) RelevanceText() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s %s", t.Name, t.Merchant, strings.Join(t.Categories, " ")))
}

// ChatItem is one messaging-platform message.
type ChatItem struct {
	ID   string
	From string
	To   string
	Text string
	Sent time.Time
}

func (c *ChatItem) ExternalID() string    { return c.ID }
func (c *ChatItem) Timestamp() time.Time  { return c.Sent }
func (c *ChatItem) Kind() RecordKind      { return KindMessage }
func (c *ChatItem) RelevanceText() string { return c.Text }

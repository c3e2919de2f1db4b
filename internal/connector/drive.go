package connector

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	sourcedomain "github.com/jindalsaj/aura/internal/source/domain"
	syncdomain "github.com/jindalsaj/aura/internal/sync/domain"
)

const drivePageSize = 100

// DriveConnector fetches file metadata through the Google Drive API. File
// contents are never downloaded; name and description carry the relevance
// signal.
type DriveConnector struct{}

func NewDriveConnector() *DriveConnector {
	return &DriveConnector{}
}

func (c *DriveConnector) SourceType() sourcedomain.SourceType {
	return sourcedomain.SourceDrive
}

func (c *DriveConnector) Fetch(ctx context.Context, cred *sourcedomain.Credential, sel syncdomain.Selector) ([]syncdomain.RawItem, error) {
	token := &oauth2.Token{AccessToken: cred.AccessToken, TokenType: "Bearer"}
	srv, err := drive.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(token)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Drive service: %w", err)
	}

	if len(sel.IDs) > 0 {
		return c.fetchByIDs(ctx, srv, sel.IDs)
	}

	query := buildDriveQuery(sel)
	var items []syncdomain.RawItem
	pageToken := ""
	for {
		call := srv.Files.List().
			PageSize(drivePageSize).
			Fields("nextPageToken, files(id, name, mimeType, size, description, modifiedTime)").
			Context(ctx)
		if query != "" {
			call = call.Q(query)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, classifyGoogleError(err)
		}
		for _, f := range resp.Files {
			item, err := convertFile(f)
			if err != nil {
				log.Printf("[DriveConnector] Skipping file: %v", err)
				continue
			}
			items = append(items, item)
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return items, nil
}

func (c *DriveConnector) fetchByIDs(ctx context.Context, srv *drive.Service, ids []string) ([]syncdomain.RawItem, error) {
	items := make([]syncdomain.RawItem, 0, len(ids))
	for _, id := range ids {
		f, err := srv.Files.Get(id).
			Fields("id, name, mimeType, size, description, modifiedTime").
			Context(ctx).Do()
		if err != nil {
			classified := classifyGoogleError(err)
			if classified == sourcedomain.ErrCredentialExpired || syncdomain.IsTransient(classified) {
				return nil, classified
			}
			log.Printf("[DriveConnector] Skipping file %s: %v", id, err)
			continue
		}
		item, err := convertFile(f)
		if err != nil {
			log.Printf("[DriveConnector] Skipping file %s: %v", id, err)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func buildDriveQuery(sel syncdomain.Selector) string {
	var parts []string
	if sel.Window != nil {
		if !sel.Window.Since.IsZero() {
			parts = append(parts, fmt.Sprintf("modifiedTime > '%s'", sel.Window.Since.Format(time.RFC3339)))
		}
		if !sel.Window.Until.IsZero() {
			parts = append(parts, fmt.Sprintf("modifiedTime < '%s'", sel.Window.Until.Format(time.RFC3339)))
		}
	}
	if sel.ContentFilter != "" {
		parts = append(parts, fmt.Sprintf("fullText contains '%s'", strings.ReplaceAll(sel.ContentFilter, "'", `\'`)))
	}
	return strings.Join(parts, " and ")
}

func convertFile(f *drive.File) (*syncdomain.FileItem, error) {
	if f.Id == "" {
		return nil, fmt.Errorf("file missing id")
	}
	modified, err := time.Parse(time.RFC3339, f.ModifiedTime)
	if err != nil {
		return nil, fmt.Errorf("file %s has bad modifiedTime %q: %w", f.Id, f.ModifiedTime, err)
	}
	return &syncdomain.FileItem{
		ID:          f.Id,
		Name:        f.Name,
		MimeType:    f.MimeType,
		Size:        f.Size,
		Description: f.Description,
		Modified:    modified,
	}, nil
}

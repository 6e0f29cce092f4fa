// Package drive locates and downloads paper PDFs stored in a Google
// Drive folder by a reference manager.
package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"paperradio/pkg/domain"
	"paperradio/pkg/match"
	"paperradio/pkg/pdftext"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ErrNoMatch means no file in the folder matched the paper.
var ErrNoMatch = errors.New("no matching PDF in drive folder")

// Client lists and downloads PDFs from a single drive folder. The
// folder listing is paginated and memoized for the lifetime of the
// client, so one run does one listing regardless of paper count.
type Client struct {
	service  *drive.Service
	folderID string
	files    []domain.DriveFile
	listed   bool
}

// NewClient builds a read-only drive client from service account
// credentials.
func NewClient(ctx context.Context, credentialsPath, folderID string) (*Client, error) {
	service, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(drive.DriveReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return &Client{service: service, folderID: folderID}, nil
}

// ListFolder returns the PDF files in the folder, fetching all pages on
// the first call and serving the memoized listing afterwards.
func (c *Client) ListFolder(ctx context.Context) ([]domain.DriveFile, error) {
	if c.listed {
		return c.files, nil
	}

	query := fmt.Sprintf("'%s' in parents and mimeType='application/pdf'", c.folderID)

	var files []domain.DriveFile
	pageToken := ""
	for {
		call := c.service.Files.List().
			Q(query).
			Fields(googleapi.Field("nextPageToken, files(id, name, size, modifiedTime)")).
			PageSize(1000).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		page, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list drive folder %s: %w", c.folderID, err)
		}

		for _, f := range page.Files {
			modified, err := time.Parse(time.RFC3339, f.ModifiedTime)
			if err != nil {
				modified = time.Time{}
			}
			files = append(files, domain.DriveFile{
				ID:           f.Id,
				Name:         f.Name,
				Size:         f.Size,
				ModifiedTime: modified,
			})
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	c.files = files
	c.listed = true
	return files, nil
}

// FindPDF returns the folder file best matching the paper, or ErrNoMatch.
func (c *Client) FindPDF(ctx context.Context, paper domain.Paper) (domain.DriveFile, error) {
	files, err := c.ListFolder(ctx)
	if err != nil {
		return domain.DriveFile{}, err
	}

	file, ok := match.BestMatch(paper, files)
	if !ok {
		return domain.DriveFile{}, fmt.Errorf("%w: %s", ErrNoMatch, paper.Title)
	}
	return file, nil
}

// Download fetches the content of a drive file by ID.
func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := c.service.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download drive file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download drive file %s: unexpected status code %d", fileID, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// PaperText finds the PDF matching the paper, downloads it, and returns
// the extracted text truncated to maxChars, along with the matched file.
func (c *Client) PaperText(ctx context.Context, paper domain.Paper, maxChars int) (string, domain.DriveFile, error) {
	file, err := c.FindPDF(ctx, paper)
	if err != nil {
		return "", domain.DriveFile{}, err
	}
	log.Printf("Found PDF: %s", file.Name)

	data, err := c.Download(ctx, file.ID)
	if err != nil {
		return "", file, err
	}

	text, err := pdftext.Extract(data)
	if err != nil {
		return "", file, fmt.Errorf("extract %s: %w", file.Name, err)
	}

	return pdftext.Truncate(text, maxChars), file, nil
}

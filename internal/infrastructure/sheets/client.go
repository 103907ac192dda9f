package sheets

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"spendlog/internal/domain/entry"
)

// valuesClient is the slice of the Sheets API the store needs.
type valuesClient interface {
	Get(ctx context.Context, rng string) ([][]any, error)
	Append(ctx context.Context, rng string, rows [][]any) error
	Update(ctx context.Context, rng string, row []any) error
	DeleteRow(ctx context.Context, sheet string, index int64) error
	EnsureSheet(ctx context.Context, title string) error
}

type googleClient struct {
	svc           *gsheets.Service
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64
}

// newGoogleClient authenticates with a service account credentials file.
func newGoogleClient(ctx context.Context, credentialsFile, spreadsheetID string) (*googleClient, error) {
	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}
	return &googleClient{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (c *googleClient) Get(ctx context.Context, rng string) ([][]any, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// Append adds all rows in one request, which Sheets applies atomically.
func (c *googleClient) Append(ctx context.Context, rng string, rows [][]any) error {
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	return err
}

func (c *googleClient) Update(ctx context.Context, rng string, row []any) error {
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheets.ValueRange{Values: [][]any{row}}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	return err
}

// DeleteRow removes the zero-based row index from the named tab.
func (c *googleClient) DeleteRow(ctx context.Context, sheet string, index int64) error {
	sheetID, err := c.sheetID(ctx, sheet)
	if err != nil {
		return err
	}
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			DeleteDimension: &gsheets.DeleteDimensionRequest{
				Range: &gsheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: index,
					EndIndex:   index + 1,
				},
			},
		}},
	}
	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	return err
}

// EnsureSheet adds a tab with the given title unless one exists.
func (c *googleClient) EnsureSheet(ctx context.Context, title string) error {
	if _, err := c.sheetID(ctx, title); err == nil {
		return nil
	} else if !errors.Is(err, errSheetNotFound) {
		return err
	}
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			AddSheet: &gsheets.AddSheetRequest{
				Properties: &gsheets.SheetProperties{Title: title},
			},
		}},
	}
	resp, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return err
	}
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		c.mu.Lock()
		c.sheetIDs[title] = resp.Replies[0].AddSheet.Properties.SheetId
		c.mu.Unlock()
	}
	return nil
}

var errSheetNotFound = errors.New("sheet not found")

func (c *googleClient) sheetID(ctx context.Context, title string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.sheetIDs[title]; ok {
		return id, nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	c.sheetIDs = make(map[string]int64, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			c.sheetIDs[s.Properties.Title] = s.Properties.SheetId
		}
	}
	id, ok := c.sheetIDs[title]
	if !ok {
		return 0, fmt.Errorf("%w: %q", errSheetNotFound, title)
	}
	return id, nil
}

// classify maps a Sheets API failure onto the persistence failure kinds.
func classify(err error) entry.PersistKind {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500:
			return entry.KindStoreUnavailable
		case apiErr.Code == http.StatusBadRequest:
			return entry.KindConstraintViolation
		}
		return entry.KindStoreError
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return entry.KindStoreUnavailable
	}
	return entry.KindStoreError
}

func persistError(err error, row int) error {
	return &entry.PersistError{Kind: classify(err), Row: row, Err: err}
}

package rowstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Scopes requested for the service account
var SheetsScopes = []string{
	sheets.SpreadsheetsScope,
	"https://www.googleapis.com/auth/drive.file",
}

// Sheets is a Store backed by the tabs of one Google spreadsheet.
// Each logical table is a tab with the same title.
type Sheets struct {
	svc           *sheets.Service
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64 // tab title -> gid, resolved lazily for deletes
}

// NewSheets connects to the spreadsheet. Callers pass credentials as client
// options, e.g. option.WithCredentialsJSON.
func NewSheets(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*Sheets, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is required")
	}

	opts = append([]option.ClientOption{option.WithScopes(SheetsScopes...)}, opts...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Sheets{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetIDs:      make(map[string]int64),
	}, nil
}

// Read fetches every value of the tab
func (s *Sheets) Read(ctx context.Context, table string) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, quoteRange(table)).Context(ctx).Do()
	if err != nil {
		if isMissingTab(err) {
			return nil, fmt.Errorf("read sheet %s: %w", table, ErrTableNotFound)
		}
		return nil, fmt.Errorf("failed to read sheet %s: %w", table, err)
	}

	out := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		out[i] = cells
	}
	return out, nil
}

// Append adds one row after the last non-empty row of the tab. A missing tab
// is created first.
func (s *Sheets) Append(ctx context.Context, table string, row []string) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}

	err := s.append(ctx, table, values)
	if err != nil && isMissingTab(err) {
		if err := s.addTab(ctx, table); err != nil {
			return err
		}
		err = s.append(ctx, table, values)
	}
	if err != nil {
		return fmt.Errorf("failed to append to sheet %s: %w", table, err)
	}
	return nil
}

func (s *Sheets) append(ctx context.Context, table string, values []interface{}) error {
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, quoteRange(table), &sheets.ValueRange{
		Values: [][]interface{}{values},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return err
}

// addTab creates an empty tab titled table and records its gid
func (s *Sheets) addTab(ctx context.Context, table string) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: table},
			},
		}},
	}

	resp, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", table, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range resp.Replies {
		if r.AddSheet != nil && r.AddSheet.Properties != nil {
			s.sheetIDs[table] = r.AddSheet.Properties.SheetId
		}
	}
	return nil
}

// DeleteRow removes the row at the 0-based position index
func (s *Sheets) DeleteRow(ctx context.Context, table string, index int) error {
	if index < 0 {
		return fmt.Errorf("delete row %d from %s: %w", index, table, ErrRowOutOfRange)
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	gid, err := s.sheetID(ctx, table)
	if err != nil {
		return err
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    gid,
					Dimension:  "ROWS",
					StartIndex: int64(index),
					EndIndex:   int64(index + 1),
					// gid and start index are legitimately zero
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		}},
	}

	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete row %d from sheet %s: %w", index, table, err)
	}
	return nil
}

func (s *Sheets) sheetID(ctx context.Context, table string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gid, ok := s.sheetIDs[table]; ok {
		return gid, nil
	}

	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to load spreadsheet metadata: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties == nil {
			continue
		}
		s.sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
	}

	gid, ok := s.sheetIDs[table]
	if !ok {
		return 0, fmt.Errorf("sheet %s: %w", table, ErrTableNotFound)
	}
	return gid, nil
}

// isMissingTab reports whether err is the API's answer to a range naming a
// tab that does not exist
func isMissingTab(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "Unable to parse range")
}

func quoteRange(table string) string {
	return "'" + table + "'"
}

package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"fittrack/internal/core"
	ports "fittrack/internal/sheets"

	"golang.org/x/oauth2"
	googleauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client reads and writes the journal and catalog worksheets of one
// spreadsheet. The journal is an append-only table; row identity is
// positional, so a delete based on an index from an earlier read can
// remove the wrong row if another writer got in between. That race is
// inherent to the tabular store and is not resolved here.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string

	journalSheet     string
	foodsSheet       string
	supplementsSheet string
	exercisesSheet   string

	mu       sync.Mutex
	sheetIDs map[string]int64 // worksheet title -> numeric sheet id
}

// Ensure interface conformance
var (
	_ ports.JournalReader   = (*Client)(nil)
	_ ports.JournalAppender = (*Client)(nil)
	_ ports.JournalDeleter  = (*Client)(nil)
	_ ports.CatalogReader   = (*Client)(nil)
	_ ports.CatalogWriter   = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Optional sheet names: GOOGLE_JOURNAL_SHEET (default "diario"),
// GOOGLE_FOODS_SHEET (default "cibi"), GOOGLE_SUPPLEMENTS_SHEET
// (default "integratori"), GOOGLE_EXERCISES_SHEET (default "esercizi").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:              svc,
		spreadsheetID:    spreadsheetID,
		journalSheet:     envOr("GOOGLE_JOURNAL_SHEET", "diario"),
		foodsSheet:       envOr("GOOGLE_FOODS_SHEET", "cibi"),
		supplementsSheet: envOr("GOOGLE_SUPPLEMENTS_SHEET", "integratori"),
		exercisesSheet:   envOr("GOOGLE_EXERCISES_SHEET", "esercizi"),
		sheetIDs:         make(map[string]int64),
	}, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials (GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS). When none are set it falls back to
// an OAuth user token minted by cmd/oauth-init.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return newOAuthSheetsService(ctx)
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// newOAuthSheetsService builds the service from an OAuth client config
// and a previously saved user token (see cmd/oauth-init).
func newOAuthSheetsService(ctx context.Context) (*gsheet.Service, error) {
	clientJSON := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"))
	clientFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"))

	var b []byte
	var err error
	switch {
	case clientJSON != "":
		b = []byte(clientJSON)
	case clientFile != "":
		b, err = os.ReadFile(clientFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth client file: %w", err)
		}
	default:
		return nil, errors.New("missing Google credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, GOOGLE_APPLICATION_CREDENTIALS, or an OAuth client via GOOGLE_OAUTH_CLIENT_JSON / GOOGLE_OAUTH_CLIENT_FILE)")
	}

	oauthCfg, err := googleauth.ConfigFromJSON(b, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client config: %w", err)
	}

	tokenFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_TOKEN_FILE"))
	if tokenFile == "" {
		tokenFile = "token.json"
	}
	tokenBytes, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth token %s (run oauth-init first): %w", tokenFile, err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(tokenBytes, &tok); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	service, err := gsheet.NewService(ctx,
		goption.WithHTTPClient(oauthCfg.Client(ctx, &tok)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ReadJournal fetches the whole journal table. The first row is skipped
// when it looks like the header written by earlier app revisions.
func (c *Client) ReadJournal(ctx context.Context) ([]core.Entry, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:C", c.journalSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseJournalRows(resp.Values), nil
}

// AppendEntry finds the next empty row of the journal sheet and writes
// one row {date, kind, payload}. There is no uniqueness check and no
// optimistic concurrency: two concurrent appenders can compute the same
// next row.
func (c *Client) AppendEntry(ctx context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", c.journalSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get sheet dimensions for %s: %w", c.journalSheet, err)
	}
	nextRow := len(resp.Values) + 1

	dataRange := fmt.Sprintf("%s!A%d:C%d", c.journalSheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{{e.Date, string(e.Kind), e.Payload}}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to append to sheet %s: %w", c.journalSheet, err)
	}

	slog.InfoContext(ctx, "Journal entry appended to sheet",
		"sheet", c.journalSheet, "row", nextRow, "kind", e.Kind, "date", e.Date)
	return dataRange, nil
}

// DeleteEntry removes the journal row at the given zero-based data
// index with a DeleteDimension request, so the rest of the table is not
// rewritten. The table is re-read first: header, blank and half-written
// rows never reach ReadJournal's callers, so the physical row backing
// an index must be resolved against the same skip rules. The index is
// still positional and unstable under concurrent writers.
func (c *Client) DeleteEntry(ctx context.Context, rowIndex int) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	sheetID, err := c.sheetID(ctx, c.journalSheet)
	if err != nil {
		return err
	}

	rng := fmt.Sprintf("%s!A:C", c.journalSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s for delete: %w", rng, err)
	}
	entries, physicalRows := parseJournalTable(resp.Values)
	if rowIndex < 0 || rowIndex >= len(entries) {
		return fmt.Errorf("row index %d out of range [0,%d): %w", rowIndex, len(entries), core.ErrRowOutOfRange)
	}

	start := physicalRows[rowIndex]
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: start,
					EndIndex:   start + 1,
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d from %s: %w", rowIndex, c.journalSheet, err)
	}
	slog.InfoContext(ctx, "Journal row deleted from sheet", "sheet", c.journalSheet, "row_index", rowIndex)
	return nil
}

// DeleteEntryMatching removes the last journal row whose three cells
// equal the given values. Used by the sync worker, which knows the row
// content but not its current position.
func (c *Client) DeleteEntryMatching(ctx context.Context, date, kind, payload string) error {
	entries, err := c.ReadJournal(ctx)
	if err != nil {
		return fmt.Errorf("read journal for delete: %w", err)
	}
	match := -1
	for i, e := range entries {
		if e.Date == date && string(e.Kind) == kind && e.Payload == payload {
			match = i
		}
	}
	if match < 0 {
		slog.WarnContext(ctx, "No matching journal row to delete",
			"sheet", c.journalSheet, "date", date, "kind", kind)
		return nil
	}
	return c.DeleteEntry(ctx, match)
}

// sheetID resolves and caches the numeric id of a worksheet title.
func (c *Client) sheetID(ctx context.Context, title string) (int64, error) {
	c.mu.Lock()
	if id, ok := c.sheetIDs[title]; ok {
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet metadata: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sh := range meta.Sheets {
		if sh.Properties != nil {
			c.sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	id, ok := c.sheetIDs[title]
	if !ok {
		return 0, fmt.Errorf("worksheet %q not found", title)
	}
	return id, nil
}

func (c *Client) ListFoods(ctx context.Context) ([]core.Food, error) {
	rows, err := c.readTable(ctx, c.foodsSheet, "A:E")
	if err != nil {
		return nil, err
	}
	return parseFoodRows(rows), nil
}

func (c *Client) ListSupplements(ctx context.Context) ([]core.Supplement, error) {
	rows, err := c.readTable(ctx, c.supplementsSheet, "A:G")
	if err != nil {
		return nil, err
	}
	return parseSupplementRows(rows), nil
}

func (c *Client) ListExercises(ctx context.Context) ([]core.ExerciseDef, error) {
	rows, err := c.readTable(ctx, c.exercisesSheet, "A:B")
	if err != nil {
		return nil, err
	}
	return parseExerciseRows(rows), nil
}

func (c *Client) AddFood(ctx context.Context, f core.Food) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return c.appendRow(ctx, c.foodsSheet, []any{f.Name, f.Kcal, f.Protein, f.Carbs, f.Fat})
}

func (c *Client) AddSupplement(ctx context.Context, s core.Supplement) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return c.appendRow(ctx, c.supplementsSheet,
		[]any{s.Name, string(s.Form), s.Description, s.Kcal, s.Protein, s.Carbs, s.Fat})
}

func (c *Client) AddExercise(ctx context.Context, e core.ExerciseDef) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return c.appendRow(ctx, c.exercisesSheet, []any{e.Name, string(e.Category)})
}

func (c *Client) readTable(ctx context.Context, sheetName, cols string) ([][]any, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!%s", sheetName, cols)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (c *Client) appendRow(ctx context.Context, sheetName string, row []any) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:A", sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", sheetName, err)
	}
	return nil
}

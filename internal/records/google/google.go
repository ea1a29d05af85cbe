package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"financas/internal/core"
	"financas/internal/records"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client stores transactions, banks and categories in a Google
// Spreadsheet, one tab per entity. The transactions tab carries an
// explicit numeric id column so rows can be addressed for updates
// and deletes.
type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	banksSheet        string
	categoriesSheet   string

	// Numeric sheet ids resolved lazily; required for row deletion.
	sheetIDs map[string]int64
}

// Ensure interface conformance
var (
	_ records.TransactionLister = (*Client)(nil)
	_ records.TransactionWriter = (*Client)(nil)
	_ records.BankStore         = (*Client)(nil)
	_ records.CategoryStore     = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Optional: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS for auth.
// Optional tab names: GOOGLE_TRANSACTIONS_SHEET_NAME (default "Transactions"),
// GOOGLE_BANKS_SHEET_NAME (default "Banks"),
// GOOGLE_CATEGORIES_SHEET_NAME (default "Categories").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	transactions := strings.TrimSpace(os.Getenv("GOOGLE_TRANSACTIONS_SHEET_NAME"))
	if transactions == "" {
		transactions = "Transactions"
	}
	banks := strings.TrimSpace(os.Getenv("GOOGLE_BANKS_SHEET_NAME"))
	if banks == "" {
		banks = "Banks"
	}
	categories := strings.TrimSpace(os.Getenv("GOOGLE_CATEGORIES_SHEET_NAME"))
	if categories == "" {
		categories = "Categories"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:               svc,
		spreadsheetID:     spreadsheetID,
		transactionsSheet: transactions,
		banksSheet:        banks,
		categoriesSheet:   categories,
		sheetIDs:          map[string]int64{},
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
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
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// ListTransactions reads the transactions tab. Rows that cannot be
// parsed are skipped with a warning rather than failing the whole
// listing; the spreadsheet is hand-editable and a single bad row must
// not take the dashboard down.
func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A2:E", c.transactionsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	out := make([]core.Transaction, 0, len(resp.Values))
	for i, raw := range resp.Values {
		row := toStrings(raw)
		t, err := rowToTransaction(row)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unparseable transaction row",
				"sheet", c.transactionsSheet, "row", i+2, "error", err)
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// CreateTransaction appends a row, assigning the next id after the
// current maximum. Concurrent writers are not coordinated; the sync
// worker is the single writer in the intended deployment.
func (c *Client) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return 0, errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", c.transactionsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read sheet dimensions for %s: %w", c.transactionsSheet, err)
	}

	var maxID int64
	for i, raw := range resp.Values {
		if i == 0 {
			continue // header
		}
		row := toStrings(raw)
		if id, err := strconv.ParseInt(safeGet(row, 0), 10, 64); err == nil && id > maxID {
			maxID = id
		}
	}
	id := maxID + 1
	nextRow := len(resp.Values) + 1

	dataRange := fmt.Sprintf("%s!A%d:E%d", c.transactionsSheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{transactionToRow(id, t)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("append transaction to %s: %w", c.transactionsSheet, err)
	}
	return id, nil
}

// PutTransaction writes the row for a caller-chosen id, appending when
// absent. The sync worker uses it so mirrored rows keep the primary
// store's ids, which makes replayed messages idempotent.
func (c *Client) PutTransaction(ctx context.Context, id int64, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	rowNum, err := c.findTransactionRow(ctx, id)
	if errors.Is(err, records.ErrNotFound) {
		rowNum, err = c.nextRow(ctx, c.transactionsSheet)
	}
	if err != nil {
		return err
	}

	dataRange := fmt.Sprintf("%s!A%d:E%d", c.transactionsSheet, rowNum, rowNum)
	vr := &gsheet.ValueRange{Values: [][]any{transactionToRow(id, t)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("put transaction %d in %s: %w", id, c.transactionsSheet, err)
	}
	return nil
}

// UpdateTransaction rewrites the row holding the given id.
func (c *Client) UpdateTransaction(ctx context.Context, id int64, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	rowNum, err := c.findTransactionRow(ctx, id)
	if err != nil {
		return err
	}

	dataRange := fmt.Sprintf("%s!A%d:E%d", c.transactionsSheet, rowNum, rowNum)
	vr := &gsheet.ValueRange{Values: [][]any{transactionToRow(id, t)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update transaction %d in %s: %w", id, c.transactionsSheet, err)
	}
	return nil
}

// DeleteTransaction removes the row holding the given id.
func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	rowNum, err := c.findTransactionRow(ctx, id)
	if err != nil {
		return err
	}
	return c.deleteRow(ctx, c.transactionsSheet, rowNum)
}

// findTransactionRow returns the 1-based row number holding the id,
// or records.ErrNotFound.
func (c *Client) findTransactionRow(ctx context.Context, id int64) (int, error) {
	if c.svc == nil {
		return 0, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:A", c.transactionsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}
	want := strconv.FormatInt(id, 10)
	for i, raw := range resp.Values {
		if i == 0 {
			continue
		}
		if safeGet(toStrings(raw), 0) == want {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("transaction %d: %w", id, records.ErrNotFound)
}

func (c *Client) ListBanks(ctx context.Context) ([]core.Bank, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A2:B", c.banksSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	out := make([]core.Bank, 0, len(resp.Values))
	for i, raw := range resp.Values {
		row := toStrings(raw)
		name := strings.TrimSpace(safeGet(row, 0))
		if name == "" {
			continue
		}
		opening, err := core.ParseSignedDecimalToCents(safeGet(row, 1))
		if err != nil {
			slog.WarnContext(ctx, "Skipping bank with unparseable opening balance",
				"sheet", c.banksSheet, "row", i+2, "bank", name, "error", err)
			continue
		}
		out = append(out, core.Bank{Name: name, OpeningBalance: core.Money{Cents: opening}})
	}
	return out, nil
}

func (c *Client) GetBank(ctx context.Context, name string) (core.Bank, bool, error) {
	banks, err := c.ListBanks(ctx)
	if err != nil {
		return core.Bank{}, false, err
	}
	for _, b := range banks {
		if b.Name == name {
			return b, true, nil
		}
	}
	return core.Bank{}, false, nil
}

// UpsertBank updates the row matching the bank name, or appends a new
// one. Matching is exact, the same rule the balance roll-up uses.
func (c *Client) UpsertBank(ctx context.Context, b core.Bank) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	rowNum, found, err := c.findRowByName(ctx, c.banksSheet, b.Name)
	if err != nil {
		return err
	}
	if !found {
		rowNum, err = c.nextRow(ctx, c.banksSheet)
		if err != nil {
			return err
		}
	}

	dataRange := fmt.Sprintf("%s!A%d:B%d", c.banksSheet, rowNum, rowNum)
	vr := &gsheet.ValueRange{Values: [][]any{{b.Name, centsToDecimal(b.OpeningBalance.Cents)}}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("upsert bank %q in %s: %w", b.Name, c.banksSheet, err)
	}
	return nil
}

func (c *Client) DeleteBank(ctx context.Context, name string) error {
	rowNum, found, err := c.findRowByName(ctx, c.banksSheet, name)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("bank %q: %w", name, records.ErrNotFound)
	}
	return c.deleteRow(ctx, c.banksSheet, rowNum)
}

func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A2:A", c.categoriesSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	var out []string
	for _, raw := range resp.Values {
		v := strings.TrimSpace(safeGet(toStrings(raw), 0))
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	// Dedup while preserving order
	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(out))
	for _, v := range out {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		uniq = append(uniq, v)
	}
	return uniq, nil
}

func (c *Client) UpsertCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyCategory
	}
	_, found, err := c.findRowByName(ctx, c.categoriesSheet, name)
	if err != nil {
		return err
	}
	if found {
		return nil
	}
	rowNum, err := c.nextRow(ctx, c.categoriesSheet)
	if err != nil {
		return err
	}
	dataRange := fmt.Sprintf("%s!A%d", c.categoriesSheet, rowNum)
	vr := &gsheet.ValueRange{Values: [][]any{{name}}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append category %q to %s: %w", name, c.categoriesSheet, err)
	}
	return nil
}

// findRowByName scans column A of the given tab for an exact match.
func (c *Client) findRowByName(ctx context.Context, sheetName, name string) (int, bool, error) {
	if c.svc == nil {
		return 0, false, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:A", sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, false, fmt.Errorf("read %s: %w", rng, err)
	}
	for i, raw := range resp.Values {
		if i == 0 {
			continue
		}
		if strings.TrimSpace(safeGet(toStrings(raw), 0)) == name {
			return i + 1, true, nil
		}
	}
	return 0, false, nil
}

// nextRow returns the first row after the used range of column A.
func (c *Client) nextRow(ctx context.Context, sheetName string) (int, error) {
	rng := fmt.Sprintf("%s!A:A", sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read sheet dimensions for %s: %w", sheetName, err)
	}
	return len(resp.Values) + 1, nil
}

// deleteRow removes an entire row so later reads do not see a blank
// line. Requires the numeric sheet id, resolved once per tab.
func (c *Client) deleteRow(ctx context.Context, sheetName string, rowNum int) error {
	sheetID, err := c.sheetID(ctx, sheetName)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowNum - 1),
					EndIndex:   int64(rowNum),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d from %s: %w", rowNum, sheetName, err)
	}
	return nil
}

func (c *Client) sheetID(ctx context.Context, sheetName string) (int64, error) {
	if id, ok := c.sheetIDs[sheetName]; ok {
		return id, nil
	}
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.sheetId", "sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet metadata: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			c.sheetIDs[s.Properties.Title] = s.Properties.SheetId
		}
	}
	id, ok := c.sheetIDs[sheetName]
	if !ok {
		return 0, fmt.Errorf("sheet %q not found in spreadsheet", sheetName)
	}
	return id, nil
}

package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"tadbirbot/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ledgerHeaders — первая строка реестра участников.
var ledgerHeaders = []interface{}{
	"№", "ISM FAMILIYA", "TELEFON RAQAM", "TOLOV QILINGAN", "ID", "QR CODE", "KELDI", "SKANER HOLATI",
}

const (
	checkedBox   = "☑"
	uncheckedBox = "☐"
)

var errRowNotFound = errors.New("ledger row not found")

// SheetsService пишет реестр участников в Google Sheets.
// Строка идентифицируется по ticket_id в колонке E.
type SheetsService struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
	rowCache      map[string]int
	cacheMu       sync.RWMutex
}

func NewSheetsService(credentialsFile, spreadsheetID, sheetName string) (*SheetsService, error) {
	ctx := context.Background()

	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %v", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %v", err)
	}

	client := config.Client(ctx)

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %v", err)
	}

	service := &SheetsService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		rowCache:      make(map[string]int),
	}

	// Warm up cache in background
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		service.WarmUpCache(ctx)
	}()

	// Periodic cache refresh every 1 hour
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			service.WarmUpCache(ctx)
			cancel()
		}
	}()

	return service, nil
}

// TestConnection проверяет подключение к таблице
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.rangeRef("A1")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	return nil
}

// GetServiceAccountEmail возвращает email сервисного аккаунта
func GetServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}

	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}

	return creds.ClientEmail, nil
}

// EnsureHeaders записывает строку заголовков, если её ещё нет.
func (s *SheetsService) EnsureHeaders(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.rangeRef("A1:H1")).Context(ctx).Do()
	if err != nil {
		return err
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) >= len(ledgerHeaders) {
		return nil
	}

	valueRange := &sheets.ValueRange{Values: [][]interface{}{ledgerHeaders}}
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, s.rangeRef("A1:H1"), valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

// WarmUpCache populates the row index cache by reading the ticket ID column.
func (s *SheetsService) WarmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.rangeRef("E:E")).Context(ctx).Do()
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[string]int)

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		id, ok := row[0].(string)
		if !ok || id == "" || id == "ID" {
			continue
		}
		s.rowCache[id] = i + 1
	}
	return nil
}

// UpsertUser updates the participant row for row.TicketID or appends a new one.
func (s *SheetsService) UpsertUser(ctx context.Context, row *models.LedgerRow) error {
	if row == nil {
		return fmt.Errorf("ledger row is nil")
	}
	if row.TicketID == "" {
		return fmt.Errorf("ticket id is required")
	}

	if err := s.EnsureHeaders(ctx); err != nil {
		return err
	}

	rowIdx, err := s.findTicketRow(ctx, row.TicketID)
	if err != nil {
		if errors.Is(err, errRowNotFound) {
			return s.appendRow(ctx, row)
		}
		return err
	}

	rangeData := s.rangeRef(fmt.Sprintf("A%d:H%d", rowIdx, rowIdx))
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{ledgerRowValues(row, rowIdx)},
	}

	// USER_ENTERED, иначе формула QR останется текстом
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, valueRange).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return err
}

// MarkArrived ставит отметку прихода и имя сканировавшего.
func (s *SheetsService) MarkArrived(ctx context.Context, ticketID, scannerName string) (string, error) {
	rowIdx, err := s.findTicketRow(ctx, ticketID)
	if err != nil {
		return "", err
	}

	stamp := fmt.Sprintf("%s %s", scannerName, time.Now().Format("15:04"))
	data := []*sheets.ValueRange{
		{Range: s.rangeRef(fmt.Sprintf("G%d", rowIdx)), Values: [][]interface{}{{checkedBox}}},
		{Range: s.rangeRef(fmt.Sprintf("H%d", rowIdx)), Values: [][]interface{}{{stamp}}},
	}
	_, err = s.service.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return "", err
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.rangeRef(fmt.Sprintf("B%d", rowIdx))).Context(ctx).Do()
	if err != nil || len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		return "", nil
	}
	name, _ := resp.Values[0][0].(string)
	return name, nil
}

// findTicketRow locates the 1-based row index for ticketID in column E with cache.
func (s *SheetsService) findTicketRow(ctx context.Context, ticketID string) (int, error) {
	if row, ok := s.getCachedRow(ticketID); ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.rangeRef("E:E")).Context(ctx).Do()
	if err != nil {
		return 0, err
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if id, ok := row[0].(string); ok && id == ticketID {
			rowIdx := i + 1 // Values are zero-based; sheet rows are 1-based
			s.setCachedRow(ticketID, rowIdx)
			return rowIdx, nil
		}
	}

	return 0, errRowNotFound
}

func (s *SheetsService) appendRow(ctx context.Context, row *models.LedgerRow) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.rangeRef("A:A")).Context(ctx).Do()
	nextRow := 2
	if err == nil {
		nextRow = len(resp.Values) + 1
	}

	rangeData := s.rangeRef(fmt.Sprintf("A%d:H%d", nextRow, nextRow))
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{ledgerRowValues(row, nextRow)},
	}

	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, valueRange).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err == nil {
		s.setCachedRow(row.TicketID, nextRow)
	}
	return err
}

// ledgerRowValues собирает ячейки A..H для строки с номером rowIdx.
func ledgerRowValues(row *models.LedgerRow, rowIdx int) []interface{} {
	return []interface{}{
		rowIdx - 1, // № без учёта заголовка
		row.FullName,
		row.Phone,
		checkbox(row.Paid),
		row.TicketID,
		qrFormula(rowIdx),
		checkbox(row.Arrived),
		"",
	}
}

// qrFormula рисует QR по содержимому колонки E той же строки.
func qrFormula(rowIdx int) string {
	return fmt.Sprintf(`=IMAGE("https://api.qrserver.com/v1/create-qr-code/?size=1200x1200&data=" & ENCODEURL(E%d) & "&margin=20")`, rowIdx)
}

func checkbox(v bool) string {
	if v {
		return checkedBox
	}
	return uncheckedBox
}

func (s *SheetsService) rangeRef(cells string) string {
	if s.sheetName == "" {
		return cells
	}
	name := s.sheetName
	if strings.ContainsAny(name, " '") {
		name = "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name + "!" + cells
}

func (s *SheetsService) getCachedRow(id string) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *SheetsService) setCachedRow(id string, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[id] = row
}

// ClearCache clears the row index cache.
func (s *SheetsService) ClearCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[string]int)
}

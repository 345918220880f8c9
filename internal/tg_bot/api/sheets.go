package api

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsAppender appends rows to a Google Sheets tab.
type SheetsAppender struct {
	srv           *sheets.Service
	spreadsheetID string
	sheetName     string
	header        []string

	mu          sync.Mutex
	headerReady bool
}

// NewSheetsAppender creates a SheetsAppender authenticated with a service account.
//
// Arguments:
//   - ctx: context for the client construction.
//   - credentialsJSON: service account key in JSON form.
//   - spreadsheetID: target spreadsheet.
//   - sheetName: target tab.
//   - header: column titles written to the first row if it is empty.
//
// Returns:
//   - *SheetsAppender: a ready appender.
//   - error: an error if the service could not be created.
func NewSheetsAppender(ctx context.Context, credentialsJSON, spreadsheetID, sheetName string, header []string) (*SheetsAppender, error) {
	if credentialsJSON == "" || spreadsheetID == "" {
		return nil, errors.New("sheets credentials and spreadsheet id are required")
	}
	srv, err := sheets.NewService(ctx, option.WithCredentialsJSON([]byte(credentialsJSON)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsAppender{
		srv:           srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		header:        header,
	}, nil
}

// AppendRow appends fields as one row, writing the header first if the sheet has none.
func (s *SheetsAppender) AppendRow(ctx context.Context, fields []string) error {
	if err := s.ensureHeader(ctx); err != nil {
		return err
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{toCells(fields)}}
	_, err := s.srv.Spreadsheets.Values.Append(s.spreadsheetID, s.sheetName+"!A1", vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		logrus.WithError(err).WithField("sheet", s.sheetName).Error("Error appending sheet row")
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

func (s *SheetsAppender) ensureHeader(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.headerReady || len(s.header) == 0 {
		return nil
	}

	headerRange := fmt.Sprintf("%s!A1:%s1", s.sheetName, columnName(len(s.header)))
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		vr := &sheets.ValueRange{Values: [][]interface{}{toCells(s.header)}}
		_, err = s.srv.Spreadsheets.Values.Update(s.spreadsheetID, headerRange, vr).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		logrus.WithField("sheet", s.sheetName).Info("Sheet header written")
	}
	s.headerReady = true
	return nil
}

func toCells(fields []string) []interface{} {
	cells := make([]interface{}, len(fields))
	for i, f := range fields {
		cells[i] = f
	}
	return cells
}

// columnName converts a 1-based column index to its A1 letter form.
func columnName(n int) string {
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}

package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// CalcType names a calculator.
type CalcType string

const (
	CalcLoan  CalcType = "LoanCalc"
	CalcSolar CalcType = "SolarCalc"
)

// LeadSheetHeader is the column order of the spreadsheet sink.
var LeadSheetHeader = []string{"TimestampUTC", "Username", "ChatID", "Lang", "Type", "Name", "Phone", "City", "Note"}

// Lead is a completed contact request. It is immutable once built.
type Lead struct {
	ID        uuid.UUID `json:"id"`
	ChatID    int64     `json:"chatID"`
	Username  string    `json:"username"`
	Language  string    `json:"language"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	City      string    `json:"city"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
}

// SheetRow renders the lead in LeadSheetHeader order.
func (l Lead) SheetRow() []string {
	return []string{
		l.CreatedAt.UTC().Format(time.RFC3339),
		l.Username,
		strconv.FormatInt(l.ChatID, 10),
		l.Language,
		"Consult",
		l.Name,
		l.Phone,
		l.City,
		l.Note,
	}
}

// Calculation is a logged calculator run.
type Calculation struct {
	ChatID    int64     `json:"chatID"`
	Username  string    `json:"username"`
	Language  string    `json:"language"`
	Type      CalcType  `json:"type"`
	Input     string    `json:"input"`
	Result    string    `json:"result"`
	CreatedAt time.Time `json:"createdAt"`
}

// SheetRow renders the calculation for the spreadsheet sink.
func (c Calculation) SheetRow() []string {
	return []string{
		c.CreatedAt.UTC().Format(time.RFC3339),
		c.Username,
		strconv.FormatInt(c.ChatID, 10),
		c.Language,
		string(c.Type),
		c.Input,
		c.Result,
	}
}

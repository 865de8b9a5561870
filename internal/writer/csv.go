package writer

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// csvRow is one output line. Failed files keep their name and error with
// the result columns left empty.
type csvRow struct {
	File             string `csv:"file"`
	Bank             string `csv:"bank"`
	CardLast4Digits  string `csv:"card_last_4_digits"`
	StatementDate    string `csv:"statement_date"`
	PaymentDueDate   string `csv:"payment_due_date"`
	TotalAmountDue   string `csv:"total_amount_due"`
	MinimumAmountDue string `csv:"minimum_amount_due"`
	Error            string `csv:"error"`
}

// CSVWriter writes one row per record, with a header row.
type CSVWriter struct{}

func (w *CSVWriter) Write(out io.Writer, records []Record) error {
	rows := make([]*csvRow, 0, len(records))
	for _, rec := range records {
		row := &csvRow{File: rec.File, Error: rec.Error}
		if rec.Data != nil {
			row.Bank = rec.Data.Bank
			row.CardLast4Digits = rec.Data.CardLast4Digits
			row.StatementDate = rec.Data.StatementDate
			row.PaymentDueDate = rec.Data.PaymentDueDate
			row.TotalAmountDue = rec.Data.TotalAmountDue
			row.MinimumAmountDue = rec.Data.MinimumAmountDue
		}
		rows = append(rows, row)
	}

	if err := gocsv.Marshal(rows, out); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

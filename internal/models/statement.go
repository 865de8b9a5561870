package models

import "strings"

// Sentinel values returned by field extractors instead of errors.
const (
	NotFound      = "Not Found"
	CorporateCard = "N/A (Corporate Card)"
)

// BankCode identifies a supported card issuer. Codes are canonical uppercase.
type BankCode string

const (
	BankHDFC  BankCode = "HDFC"
	BankICICI BankCode = "ICICI"
	BankSBI   BankCode = "SBI"
	BankAxis  BankCode = "AXIS"
	BankKotak BankCode = "KOTAK"
)

// StatementDocument is the text recovered from one PDF. It is never mutated
// after construction.
type StatementDocument struct {
	// Text is every page joined with a single newline.
	Text  string
	Pages []string
}

// NewStatementDocument builds a document from ordered page texts.
func NewStatementDocument(pages []string) *StatementDocument {
	p := make([]string, len(pages))
	copy(p, pages)
	return &StatementDocument{
		Text:  strings.Join(p, "\n"),
		Pages: p,
	}
}

// Lines splits the full text on newlines.
func (d *StatementDocument) Lines() []string {
	return strings.Split(d.Text, "\n")
}

// ExtractionResult holds the five statement fields plus the bank name.
// Every field is either a value or one of the sentinels above.
type ExtractionResult struct {
	Bank             string `json:"bank" yaml:"bank"`
	CardLast4Digits  string `json:"card_last_4_digits" yaml:"card_last_4_digits"`
	StatementDate    string `json:"statement_date" yaml:"statement_date"`
	PaymentDueDate   string `json:"payment_due_date" yaml:"payment_due_date"`
	TotalAmountDue   string `json:"total_amount_due" yaml:"total_amount_due"`
	MinimumAmountDue string `json:"minimum_amount_due" yaml:"minimum_amount_due"`
}

// Result field keys, as they appear on the wire.
const (
	FieldBank       = "bank"
	FieldCard       = "card_last_4_digits"
	FieldStatement  = "statement_date"
	FieldDueDate    = "payment_due_date"
	FieldTotalDue   = "total_amount_due"
	FieldMinimumDue = "minimum_amount_due"
)

// AsMap returns the result keyed by its wire names.
func (r ExtractionResult) AsMap() map[string]string {
	return map[string]string{
		FieldBank:       r.Bank,
		FieldCard:       r.CardLast4Digits,
		FieldStatement:  r.StatementDate,
		FieldDueDate:    r.PaymentDueDate,
		FieldTotalDue:   r.TotalAmountDue,
		FieldMinimumDue: r.MinimumAmountDue,
	}
}

// MissingFields lists the wire names of fields holding NotFound, in result order.
func (r ExtractionResult) MissingFields() []string {
	var missing []string
	for _, f := range []struct {
		key, val string
	}{
		{FieldCard, r.CardLast4Digits},
		{FieldStatement, r.StatementDate},
		{FieldDueDate, r.PaymentDueDate},
		{FieldTotalDue, r.TotalAmountDue},
		{FieldMinimumDue, r.MinimumAmountDue},
	} {
		if f.val == NotFound {
			missing = append(missing, f.key)
		}
	}
	return missing
}

package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/insightdelivered/card-statement-parser/internal/extractor"
	"github.com/insightdelivered/card-statement-parser/internal/logging"
	"github.com/insightdelivered/card-statement-parser/internal/models"
	"github.com/insightdelivered/card-statement-parser/internal/parsererror"
)

// Strategy extracts the five statement fields for one issuer's layout.
// Every method returns a value or a sentinel; none of them fail.
type Strategy interface {
	// BankName returns the human-readable bank name placed in results.
	BankName() string
	CardNumber(doc *models.StatementDocument) string
	StatementDate(doc *models.StatementDocument) string
	DueDate(doc *models.StatementDocument) string
	TotalDue(doc *models.StatementDocument) string
	MinimumDue(doc *models.StatementDocument) string
}

// Parse runs every field extractor of s over doc.
func Parse(s Strategy, doc *models.StatementDocument) models.ExtractionResult {
	return models.ExtractionResult{
		Bank:             s.BankName(),
		CardLast4Digits:  s.CardNumber(doc),
		StatementDate:    s.StatementDate(doc),
		PaymentDueDate:   s.DueDate(doc),
		TotalAmountDue:   s.TotalDue(doc),
		MinimumAmountDue: s.MinimumDue(doc),
	}
}

// registry maps canonical bank codes to strategy constructors.
var registry = map[models.BankCode]func() Strategy{
	models.BankHDFC:  func() Strategy { return &HDFCParser{} },
	models.BankICICI: func() Strategy { return &ICICIParser{} },
	models.BankSBI:   func() Strategy { return &SBIParser{} },
	models.BankAxis:  func() Strategy { return &AxisParser{} },
	models.BankKotak: func() Strategy { return &KotakParser{} },
}

// bankOrder is the listing order for Banks.
var bankOrder = []models.BankCode{
	models.BankHDFC,
	models.BankICICI,
	models.BankSBI,
	models.BankAxis,
	models.BankKotak,
}

// Banks returns the registered bank codes.
func Banks() []models.BankCode {
	out := make([]models.BankCode, len(bankOrder))
	copy(out, bankOrder)
	return out
}

// Lookup normalizes code and returns its canonical form.
func Lookup(code string) (models.BankCode, error) {
	bc := models.BankCode(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := registry[bc]; !ok {
		return "", &parsererror.UnknownBankError{Code: code}
	}
	return bc, nil
}

// New returns the strategy registered for code. Codes are case-insensitive.
func New(code string) (Strategy, error) {
	bc, err := Lookup(code)
	if err != nil {
		return nil, err
	}
	return registry[bc](), nil
}

// Dispatcher selects a strategy by bank code and runs it over a document.
// It holds no per-call state and is safe for concurrent use when its
// extractor is.
type Dispatcher struct {
	extractor extractor.TextExtractor
	log       logging.Logger
}

// NewDispatcher creates a Dispatcher. A nil logger discards output.
func NewDispatcher(ext extractor.TextExtractor, log logging.Logger) *Dispatcher {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Dispatcher{extractor: ext, log: log}
}

// Parse resolves bankCode, extracts the text of filePath once and returns
// the strategy's result. An unknown code fails with
// *parsererror.UnknownBankError before the file is touched. Extraction
// failures are returned unchanged.
func (d *Dispatcher) Parse(bankCode, filePath string) (*models.ExtractionResult, error) {
	s, err := New(bankCode)
	if err != nil {
		return nil, err
	}

	doc, err := d.extractor.Extract(filePath)
	if err != nil {
		return nil, err
	}
	if !extractor.IsReadableText(doc.Pages) {
		d.log.Warn("Document has little extractable text",
			logging.F(logging.FieldFile, filePath),
			logging.F(logging.FieldPages, len(doc.Pages)))
	}

	return d.run(s, doc, filePath), nil
}

// ParseDocument is Parse for text that was already extracted.
func (d *Dispatcher) ParseDocument(bankCode string, doc *models.StatementDocument) (*models.ExtractionResult, error) {
	s, err := New(bankCode)
	if err != nil {
		return nil, err
	}
	return d.run(s, doc, ""), nil
}

// Detect reads filePath and guesses its issuer from the text.
func (d *Dispatcher) Detect(filePath string) (models.BankCode, *models.StatementDocument, error) {
	doc, err := d.extractor.Extract(filePath)
	if err != nil {
		return "", nil, err
	}
	code, err := AutoDetect(doc)
	if err != nil {
		return "", doc, fmt.Errorf("%s: %w", filePath, err)
	}
	return code, doc, nil
}

func (d *Dispatcher) run(s Strategy, doc *models.StatementDocument, filePath string) *models.ExtractionResult {
	start := time.Now()
	res := Parse(s, doc)

	log := d.log.WithFields(
		logging.F(logging.FieldBank, res.Bank),
		logging.F(logging.FieldFile, filePath),
	)
	missing := res.MissingFields()
	for _, field := range missing {
		log.Debug("Field not found", logging.F(logging.FieldField, field))
	}
	log.Info("Statement parsed",
		logging.F(logging.FieldMissing, len(missing)),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return &res
}

// bankMarkers are lowercase issuer names as printed on statements, checked
// in order.
var bankMarkers = []struct {
	code    models.BankCode
	needles []string
}{
	{models.BankKotak, []string{"kotak mahindra", "kotak.com"}},
	{models.BankAxis, []string{"axis bank", "axisbank.com"}},
	{models.BankSBI, []string{"sbi card", "sbicard.com"}},
	{models.BankICICI, []string{"icici bank", "icicibank.com"}},
	{models.BankHDFC, []string{"hdfc bank", "hdfcbank.com"}},
}

// AutoDetect tries to identify the issuing bank from the document text.
func AutoDetect(doc *models.StatementDocument) (models.BankCode, error) {
	lower := strings.ToLower(doc.Text)
	for _, m := range bankMarkers {
		for _, needle := range m.needles {
			if strings.Contains(lower, needle) {
				return m.code, nil
			}
		}
	}
	return "", fmt.Errorf("could not auto-detect bank from statement content; please specify --bank")
}

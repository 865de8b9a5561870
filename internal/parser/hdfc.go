package parser

import (
	"regexp"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// HDFCParser handles HDFC Bank credit card statements.
//
// Two layouts are seen in the wild. The labelled one reads
//
//	Statement Date:12/03/2023
//	Payment Due Date
//	01/04/2023
//
// while the compact one prints both dates and both amounts on a single
// row, sometimes with no space between the amounts:
//
//	12/03/202301/04/2023 38,935.008,935.00
//
// Card numbers are masked as "4695 25XX XXXX 3458".
type HDFCParser struct{}

func (p *HDFCParser) BankName() string {
	return "HDFC Bank"
}

var (
	hdfcCard = regexp.MustCompile(`(\d{4})\s*\d*X+\s*X+\s*(\d{4})`)

	hdfcStatementColon = regexp.MustCompile(`(?i)Statement\s+Date\s*:\s*(\d{2}/\d{2}/\d{4})`)
	hdfcStatementLoose = regexp.MustCompile(`(?i)Statement\s+Date[:\s]*(\d{2}/\d{2}/\d{4})`)

	hdfcTotalLabel     = regexp.MustCompile(`(?i)Total\s+Dues[:\s]*([\d,]+\.00)`)
	hdfcTotalAfterDate = regexp.MustCompile(`\d{2}/\d{2}/\d{4}\s*\d{2}/\d{2}/\d{4}\s*([\d,]+\.00)`)
	hdfcTotalSection   = regexp.MustCompile(`(?is)Total\s+Dues.*?([\d,]+\.00)`)

	hdfcMinLabel     = regexp.MustCompile(`(?i)Minimum\s+Amount\s+Due[:\s]*([\d,]+\.00)`)
	hdfcMinAfterDate = regexp.MustCompile(`\d{2}/\d{2}/\d{4}\s*([\d,]+\.00)\s*([\d,]+\.00)`)
	hdfcGluedAmounts = regexp.MustCompile(`([\d,]+\.00)([\d,]+\.00)`)
	hdfcMinSection   = regexp.MustCompile(`(?is)Minimum\s+Amount\s+Due.*?([\d,]+\.00)`)
)

// Positional fallbacks only look at the statement header.
const (
	hdfcDateHead   = 500
	hdfcAmountHead = 1000
)

func (p *HDFCParser) CardNumber(doc *models.StatementDocument) string {
	m := hdfcCard.FindStringSubmatch(doc.Text)
	if m == nil {
		return models.NotFound
	}
	return m[2]
}

func (p *HDFCParser) StatementDate(doc *models.StatementDocument) string {
	return firstOf(doc,
		regexCandidate(hdfcStatementColon),
		regexCandidate(hdfcStatementLoose),
		hdfcFirstHeaderDate,
	)
}

// hdfcFirstHeaderDate takes the first date in the header; in the compact
// layout that is the statement date.
func hdfcFirstHeaderDate(doc *models.StatementDocument) string {
	return submatch(dateSlash, leading(doc.Text, hdfcDateHead))
}

func (p *HDFCParser) DueDate(doc *models.StatementDocument) string {
	return firstOf(doc,
		windowCandidate([]string{"Payment Due Date"}, 0, 3, dateSlash),
		hdfcSecondDate,
	)
}

// hdfcSecondDate follows the compact layout, where the due date is the
// second date printed.
func hdfcSecondDate(doc *models.StatementDocument) string {
	dates := dateSlash.FindAllString(doc.Text, -1)
	if len(dates) < 2 {
		return models.NotFound
	}
	return dates[1]
}

func (p *HDFCParser) TotalDue(doc *models.StatementDocument) string {
	return firstOf(doc,
		cleanedCandidate(hdfcTotalLabel),
		hdfcTotalAfterDates,
		cleanedCandidate(hdfcTotalSection),
		hdfcHeaderTotal,
	)
}

// hdfcTotalAfterDates reads the first amount after the two dates of the
// compact layout, ignoring anything under 100.
func hdfcTotalAfterDates(doc *models.StatementDocument) string {
	amount := CleanAmount(submatch(hdfcTotalAfterDate, doc.Text))
	if v, ok := amountValue(amount); ok && v.GreaterThan(hundred) {
		return amount
	}
	return models.NotFound
}

// hdfcHeaderTotal takes the first header amount strictly between 500 and
// 100000.
func hdfcHeaderTotal(doc *models.StatementDocument) string {
	for _, amt := range amountWholeRupees.FindAllString(leading(doc.Text, hdfcAmountHead), -1) {
		cleaned := CleanAmount(amt)
		if v, ok := amountValue(cleaned); ok && v.GreaterThan(fiveHundred) && v.LessThan(hundredK) {
			return cleaned
		}
	}
	return models.NotFound
}

func (p *HDFCParser) MinimumDue(doc *models.StatementDocument) string {
	return firstOf(doc,
		cleanedCandidate(hdfcMinLabel),
		hdfcMinAfterDates,
		hdfcMinGlued,
		cleanedCandidate(hdfcMinSection),
		func(doc *models.StatementDocument) string { return hdfcMinFromTotal(doc, p.TotalDue(doc)) },
	)
}

// hdfcMinAfterDates reads the second amount of "DATE TOTAL MIN".
func hdfcMinAfterDates(doc *models.StatementDocument) string {
	m := hdfcMinAfterDate.FindStringSubmatch(doc.Text)
	if m == nil {
		return models.NotFound
	}
	return CleanAmount(m[2])
}

// hdfcMinGlued splits the first pair of glued amounts in the header and
// accepts the second as the minimum when it is over 100 and not above the
// first, or when both are equal.
func hdfcMinGlued(doc *models.StatementDocument) string {
	m := hdfcGluedAmounts.FindStringSubmatch(leading(doc.Text, hdfcAmountHead))
	if m == nil {
		return models.NotFound
	}
	first, ok1 := amountValue(CleanAmount(m[1]))
	second := CleanAmount(m[2])
	val, ok2 := amountValue(second)
	if !ok1 || !ok2 {
		return models.NotFound
	}
	if (val.LessThanOrEqual(first) && val.GreaterThan(hundred)) || val.Equal(first) {
		return second
	}
	return models.NotFound
}

// hdfcMinFromTotal takes the first header amount between 5% and 100% of
// the total due.
func hdfcMinFromTotal(doc *models.StatementDocument, total string) string {
	totalVal, ok := amountValue(total)
	if !ok {
		return models.NotFound
	}
	floor := totalVal.Mul(fivePercent)
	for _, amt := range amountWholeRupees.FindAllString(leading(doc.Text, hdfcAmountHead), -1) {
		cleaned := CleanAmount(amt)
		if v, ok := amountValue(cleaned); ok && v.LessThanOrEqual(totalVal) && v.GreaterThanOrEqual(floor) {
			return cleaned
		}
	}
	return models.NotFound
}

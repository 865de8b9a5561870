package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// SBIParser handles SBI Card statements.
//
// Dates read "15 Nov 2018" and amounts always carry thousands separators and
// two decimals. The ACCOUNT SUMMARY block lists the credit limit alongside
// the dues, so when no labelled total is found the second largest amount in
// that block is taken.
type SBIParser struct{}

func (p *SBIParser) BankName() string {
	return "SBI Card"
}

var (
	sbiCard = regexp.MustCompile(`XXXX\s+XXXX\s+XXXX\s+(?:XX)?(\d{2,4})`)

	sbiStatementDated = regexp.MustCompile(`for\s+Statement\s+dated\s+(\d{2}\s+[A-Z][a-z]{2}\s+\d{4})`)
	sbiDueSection     = regexp.MustCompile(`(?s)Payment\s+Due\s+Date.*?(\d{2}\s+[A-Z][a-z]{2}\s+\d{4})`)
	sbiAccountSummary = regexp.MustCompile(`(?s)ACCOUNT SUMMARY(.*?)(?:Important Messages|TRANSACTIONS)`)
)

func (p *SBIParser) CardNumber(doc *models.StatementDocument) string {
	return submatch(sbiCard, doc.Text)
}

func (p *SBIParser) StatementDate(doc *models.StatementDocument) string {
	return firstOf(doc,
		windowCandidate([]string{"Statement Date"}, 0, 5, dateSpaced),
		regexCandidate(sbiStatementDated),
		regexCandidate(dateSpaced),
	)
}

func (p *SBIParser) DueDate(doc *models.StatementDocument) string {
	return firstOf(doc,
		windowCandidate([]string{"Payment Due Date", "Due Date"}, 0, 5, dateSpaced),
		regexCandidate(sbiDueSection),
	)
}

func (p *SBIParser) TotalDue(doc *models.StatementDocument) string {
	return firstOf(doc,
		sbiLabelledTotal,
		sbiSummaryTotal,
	)
}

// sbiLabelledTotal takes the first amount over 100 on a "Total Amount Due"
// line or the three lines after it.
func sbiLabelledTotal(doc *models.StatementDocument) string {
	lines := doc.Lines()
	for i, line := range lines {
		if !strings.Contains(line, "Total Amount Due") {
			continue
		}
		for j := i; j < min(i+4, len(lines)); j++ {
			for _, amt := range amountGrouped.FindAllString(lines[j], -1) {
				cleaned := CleanAmount(amt)
				if v, ok := amountValue(cleaned); ok && v.GreaterThan(hundred) {
					return cleaned
				}
			}
		}
	}
	return models.NotFound
}

// sbiSummaryTotal ranks the amounts of the ACCOUNT SUMMARY block and takes
// the second largest, or the only one.
func sbiSummaryTotal(doc *models.StatementDocument) string {
	m := sbiAccountSummary.FindStringSubmatch(doc.Text)
	if m == nil {
		return models.NotFound
	}
	ranked := rankAmounts(amountGrouped.FindAllString(m[1], -1))
	switch {
	case len(ranked) >= 2:
		return ranked[1].cleaned
	case len(ranked) == 1:
		return ranked[0].cleaned
	}
	return models.NotFound
}

// MinimumDue takes the first amount on a "Minimum Amount Due" line or the
// three lines after it.
func (p *SBIParser) MinimumDue(doc *models.StatementDocument) string {
	lines := doc.Lines()
	for i, line := range lines {
		if !strings.Contains(line, "Minimum Amount Due") {
			continue
		}
		for j := i; j < min(i+4, len(lines)); j++ {
			for _, amt := range amountGrouped.FindAllString(lines[j], -1) {
				if cleaned := CleanAmount(amt); cleaned != models.NotFound {
					return cleaned
				}
			}
		}
	}
	return models.NotFound
}

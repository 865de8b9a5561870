package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// ICICIParser handles ICICI Bank credit card statements.
//
// Labels and values are split across lines by the PDF text layer. The total
// due follows its label a few lines down, while the minimum due is printed
// on the line above its label:
//
//	Your Total Amount Due
//	12,345.67
//	1,234.56
//	Minimum Amount Due
type ICICIParser struct{}

func (p *ICICIParser) BankName() string {
	return "ICICI Bank"
}

var iciciCard = regexp.MustCompile(`(\d{4})\s+XXXX\s+XXXX\s+(\d{4})`)

func (p *ICICIParser) CardNumber(doc *models.StatementDocument) string {
	m := iciciCard.FindStringSubmatch(doc.Text)
	if m == nil {
		return models.NotFound
	}
	return m[2]
}

func (p *ICICIParser) StatementDate(doc *models.StatementDocument) string {
	return firstOf(doc,
		windowCandidate([]string{"Statement Date"}, 0, 5, dateSlash),
		regexCandidate(dateSlash),
	)
}

func (p *ICICIParser) DueDate(doc *models.StatementDocument) string {
	return firstOf(doc,
		windowCandidate([]string{"Due Date"}, 0, 5, dateSlash),
	)
}

func (p *ICICIParser) TotalDue(doc *models.StatementDocument) string {
	return firstOf(doc,
		iciciLabelledTotal,
		iciciLargestAmount,
	)
}

// iciciLabelledTotal scans the four lines after "Your Total Amount Due",
// skipping the minimum due label, for an amount over 200.
func iciciLabelledTotal(doc *models.StatementDocument) string {
	lines := doc.Lines()
	for i, line := range lines {
		if !strings.Contains(line, "Your Total Amount Due") {
			continue
		}
		for j := i + 1; j < min(i+5, len(lines)); j++ {
			if strings.Contains(lines[j], "Minimum Amount Due") {
				continue
			}
			m := amountTwoDecimals.FindStringSubmatch(lines[j])
			if m == nil {
				continue
			}
			amount := CleanAmount(m[1])
			if v, ok := amountValue(amount); ok && v.GreaterThan(twoHundred) {
				return amount
			}
		}
	}
	return models.NotFound
}

// iciciLargestAmount returns the largest amount in the document strictly
// between 100 and 100000.
func iciciLargestAmount(doc *models.StatementDocument) string {
	for _, a := range rankAmounts(amountTwoDecimals.FindAllString(doc.Text, -1)) {
		if a.value.GreaterThan(hundred) && a.value.LessThan(hundredK) {
			return a.cleaned
		}
	}
	return models.NotFound
}

// MinimumDue looks at the line before each "Minimum Amount Due" label, then
// the label line itself, then the line after.
func (p *ICICIParser) MinimumDue(doc *models.StatementDocument) string {
	lines := doc.Lines()
	for i, line := range lines {
		if !strings.Contains(line, "Minimum Amount Due") {
			continue
		}
		for _, j := range []int{i - 1, i, i + 1} {
			if j < 0 || j >= len(lines) {
				continue
			}
			if m := amountTwoDecimals.FindStringSubmatch(lines[j]); m != nil {
				return CleanAmount(m[1])
			}
		}
	}
	return models.NotFound
}

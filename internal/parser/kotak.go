package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// KotakParser handles Kotak Mahindra Bank credit card statements.
//
// Dates use "1-Mar-2023". Corporate cards carry no minimum due at all; the
// liability sits with the employer.
type KotakParser struct{}

func (p *KotakParser) BankName() string {
	return "Kotak Mahindra Bank"
}

var (
	// "414767XXXXXX6705". The first group, the six-digit prefix, is what
	// gets reported.
	kotakCard = regexp.MustCompile(`(\d{6})X+(\d{4})`)

	kotakStatementNextLine = regexp.MustCompile(`(?im)Statement Date\s*[\r\n]+.*?(\d{1,2}-[A-Z][a-z]{2}-\d{4})`)
	kotakStatementSameLine = regexp.MustCompile(`(?im)Statement Date\s+(\d{1,2}-[A-Z][a-z]{2}-\d{4})`)
	kotakPeriodEnd         = regexp.MustCompile(`(?im)Statement Period\s+\d+-[A-Z][a-z]+-\d+\s+To\s+(\d{1,2}-[A-Z][a-z]{2}-\d{4})`)

	kotakDueNextLine = regexp.MustCompile(`(?im)Due Date\s*[\r\n]+.*?(\d{1,2}-[A-Z][a-z]{2}-\d{4})`)
	kotakDueSameLine = regexp.MustCompile(`(?im)Due Date\s+(\d{1,2}-[A-Z][a-z]{2}-\d{4})`)
)

func (p *KotakParser) CardNumber(doc *models.StatementDocument) string {
	return submatch(kotakCard, doc.Text)
}

func (p *KotakParser) StatementDate(doc *models.StatementDocument) string {
	return firstOf(doc, regexCandidates(kotakStatementNextLine, kotakStatementSameLine, kotakPeriodEnd)...)
}

func (p *KotakParser) DueDate(doc *models.StatementDocument) string {
	return firstOf(doc, regexCandidates(kotakDueNextLine, kotakDueSameLine)...)
}

// TotalDue reads "Total Amount Due (Rs.) 478,387.66". A same-line amount
// must exceed 100; an amount on the next line is taken as is.
func (p *KotakParser) TotalDue(doc *models.StatementDocument) string {
	lines := doc.Lines()
	for i, line := range lines {
		if !strings.Contains(line, "Total Amount Due") {
			continue
		}
		if m := amountLoose.FindStringSubmatch(line); m != nil {
			amount := CleanAmount(m[1])
			if v, ok := amountValue(amount); ok && v.GreaterThan(hundred) {
				return amount
			}
		}
		if i < len(lines)-1 {
			if m := amountLoose.FindStringSubmatch(lines[i+1]); m != nil {
				return CleanAmount(m[1])
			}
		}
	}
	return models.NotFound
}

func (p *KotakParser) MinimumDue(doc *models.StatementDocument) string {
	return firstOf(doc,
		kotakLabelledMinimum,
		kotakCorporate,
	)
}

// kotakLabelledMinimum matches "Minimum Amount Due" and "Minimum Payment
// Due" alike, reading the label line and the two after it.
func kotakLabelledMinimum(doc *models.StatementDocument) string {
	lines := doc.Lines()
	for i, line := range lines {
		if !strings.Contains(line, "Minimum") || !strings.Contains(line, "Due") {
			continue
		}
		for j := i; j < min(i+3, len(lines)); j++ {
			if m := amountLoose.FindStringSubmatch(lines[j]); m != nil {
				return CleanAmount(m[1])
			}
		}
	}
	return models.NotFound
}

func kotakCorporate(doc *models.StatementDocument) string {
	if strings.Contains(strings.ToLower(doc.Text), "corporate") {
		return models.CorporateCard
	}
	return models.NotFound
}

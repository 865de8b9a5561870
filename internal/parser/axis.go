package parser

import (
	"regexp"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// AxisParser handles Axis Bank credit card statements.
//
// Card numbers show the first eight digits then four asterisks
// ("45145700****5541"). Amounts carry a trailing "Dr" marker:
//
//	Total Payment Due 176,674.12 Dr
//	Minimum Payment Due 21,257.00 Dr
type AxisParser struct{}

func (p *AxisParser) BankName() string {
	return "Axis Bank"
}

var (
	axisCardMasked    = regexp.MustCompile(`\d{8}\*{4}(\d{4})`)
	axisCardLabelled  = regexp.MustCompile(`(?im)Credit Card Number\s*[\r\n]+\s*\d+\*+(\d{4})`)
	axisCardShortName = regexp.MustCompile(`(?im)Card No[:\.\s]+\d+\*+(\d{4})`)

	axisGenerationNextLine = regexp.MustCompile(`(?im)Statement Generation Date\s*[\r\n]+\s*(\d{2}/\d{2}/\d{4})`)
	axisPeriodEnd          = regexp.MustCompile(`(?im)Statement Period\s*[\r\n]+\s*\d{2}/\d{2}/\d{4}-(\d{2}/\d{2}/\d{4})`)
	axisGenerationSameLine = regexp.MustCompile(`(?im)Statement Generation Date\s+(\d{2}/\d{2}/\d{4})`)

	axisDueNextLine = regexp.MustCompile(`(?im)Payment Due Date\s*[\r\n]+\s*(\d{2}/\d{2}/\d{4})`)
	axisDueSameLine = regexp.MustCompile(`(?im)Payment Due Date\s+(\d{2}/\d{2}/\d{4})`)

	axisDebit        = regexp.MustCompile(`([\d,]+\.?\d*)\s*Dr`)
	axisTotalPattern = regexp.MustCompile(`Total Payment Due\s*[\r\n]*\s*([\d,]+\.?\d*)\s*Dr`)
	axisMinPattern   = regexp.MustCompile(`Minimum Payment Due\s*[\r\n]*\s*([\d,]+\.?\d*)\s*Dr`)
)

func (p *AxisParser) CardNumber(doc *models.StatementDocument) string {
	return firstOf(doc, regexCandidates(axisCardMasked, axisCardLabelled, axisCardShortName)...)
}

func (p *AxisParser) StatementDate(doc *models.StatementDocument) string {
	return firstOf(doc, regexCandidates(axisGenerationNextLine, axisPeriodEnd, axisGenerationSameLine)...)
}

func (p *AxisParser) DueDate(doc *models.StatementDocument) string {
	return firstOf(doc, regexCandidates(axisDueNextLine, axisDueSameLine)...)
}

func (p *AxisParser) TotalDue(doc *models.StatementDocument) string {
	return firstOf(doc,
		sameOrNextLineAmount("Total Payment Due", axisDebit),
		cleanedCandidate(axisTotalPattern),
	)
}

func (p *AxisParser) MinimumDue(doc *models.StatementDocument) string {
	return firstOf(doc,
		sameOrNextLineAmount("Minimum Payment Due", axisDebit),
		cleanedCandidate(axisMinPattern),
	)
}

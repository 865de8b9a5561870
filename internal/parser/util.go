package parser

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// Date shapes used by the supported issuers.
var (
	// DD/MM/YYYY (HDFC, ICICI, Axis)
	dateSlash = regexp.MustCompile(`(\d{2}/\d{2}/\d{4})`)
	// DD Mon YYYY, e.g. "15 Nov 2018" (SBI)
	dateSpaced = regexp.MustCompile(`(\d{2}\s+[A-Z][a-z]{2}\s+\d{4})`)
)

// Amount shapes.
var (
	// Any run of digits and commas ending in ".00". Two of these glued
	// together ("38,935.008,935.00") still split cleanly.
	amountWholeRupees = regexp.MustCompile(`([\d,]+\.00)`)
	// Digits and commas with exactly two decimals.
	amountTwoDecimals = regexp.MustCompile(`([\d,]+\.\d{2})`)
	// Thousands-grouped with exactly two decimals, e.g. "16,720.00".
	amountGrouped = regexp.MustCompile(`(\d{1,3}(?:,\d{3})*\.\d{2})`)
	// Loose amount with optional decimals.
	amountLoose = regexp.MustCompile(`([\d,]+\.?\d*)`)
)

var amountNoise = regexp.MustCompile(`[₹$,\s]`)

// candidate is one extraction attempt for a field. It returns a value or
// models.NotFound.
type candidate func(doc *models.StatementDocument) string

// firstOf evaluates candidates in order and returns the first value that is
// not models.NotFound.
func firstOf(doc *models.StatementDocument, candidates ...candidate) string {
	for _, c := range candidates {
		if v := c(doc); v != models.NotFound {
			return v
		}
	}
	return models.NotFound
}

// CleanAmount strips currency symbols, thousands separators and whitespace
// from raw and returns the remainder if it is a non-negative decimal number.
// Anything else yields models.NotFound.
func CleanAmount(raw string) string {
	if raw == "" || raw == models.NotFound {
		return models.NotFound
	}
	cleaned := amountNoise.ReplaceAllString(raw, "")
	d, err := decimal.NewFromString(cleaned)
	if err != nil || d.IsNegative() {
		return models.NotFound
	}
	return cleaned
}

// amountValue parses a string already produced by CleanAmount.
func amountValue(cleaned string) (decimal.Decimal, bool) {
	if cleaned == models.NotFound {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

var (
	hundred     = decimal.NewFromInt(100)
	twoHundred  = decimal.NewFromInt(200)
	fiveHundred = decimal.NewFromInt(500)
	hundredK    = decimal.NewFromInt(100000)
	fivePercent = decimal.RequireFromString("0.05")
)

// submatch returns the first capture group of re in text, trimmed, or
// models.NotFound.
func submatch(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return models.NotFound
	}
	return strings.TrimSpace(m[1])
}

// regexCandidate adapts submatch to a candidate over the full text.
func regexCandidate(re *regexp.Regexp) candidate {
	return func(doc *models.StatementDocument) string {
		return submatch(re, doc.Text)
	}
}

// cleanedCandidate runs re over the full text and normalizes the capture as
// an amount.
func cleanedCandidate(re *regexp.Regexp) candidate {
	return func(doc *models.StatementDocument) string {
		return CleanAmount(submatch(re, doc.Text))
	}
}

// regexCandidates adapts several patterns, keeping their order.
func regexCandidates(res ...*regexp.Regexp) []candidate {
	out := make([]candidate, len(res))
	for i, re := range res {
		out[i] = regexCandidate(re)
	}
	return out
}

// leading returns at most n characters (not bytes) from the start of s.
func leading(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// scanWindow finds each line containing any of labels and searches lines
// [i+from, i+to) for re, returning the first capture. The first label line
// with a hit wins.
func scanWindow(lines []string, labels []string, from, to int, re *regexp.Regexp) string {
	for i, line := range lines {
		if !containsAny(line, labels) {
			continue
		}
		for j := max(i+from, 0); j < min(i+to, len(lines)); j++ {
			if m := re.FindStringSubmatch(lines[j]); m != nil {
				return m[1]
			}
		}
	}
	return models.NotFound
}

// windowCandidate is scanWindow as a candidate.
func windowCandidate(labels []string, from, to int, re *regexp.Regexp) candidate {
	return func(doc *models.StatementDocument) string {
		return scanWindow(doc.Lines(), labels, from, to, re)
	}
}

// sameOrNextLineAmount finds lines containing label and takes the first
// amount matching re on that line, else on the following line.
func sameOrNextLineAmount(label string, re *regexp.Regexp) candidate {
	return func(doc *models.StatementDocument) string {
		lines := doc.Lines()
		for i, line := range lines {
			if !strings.Contains(line, label) {
				continue
			}
			if m := re.FindStringSubmatch(line); m != nil {
				return CleanAmount(m[1])
			}
			if i < len(lines)-1 {
				if m := re.FindStringSubmatch(lines[i+1]); m != nil {
					return CleanAmount(m[1])
				}
			}
		}
		return models.NotFound
	}
}

type rankedAmount struct {
	value   decimal.Decimal
	cleaned string
}

// rankAmounts cleans every match and orders them largest first.
func rankAmounts(matches []string) []rankedAmount {
	var ranked []rankedAmount
	for _, m := range matches {
		cleaned := CleanAmount(m)
		if v, ok := amountValue(cleaned); ok {
			ranked = append(ranked, rankedAmount{value: v, cleaned: cleaned})
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].value.GreaterThan(ranked[b].value)
	})
	return ranked
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}

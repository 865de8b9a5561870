package parser

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

func TestCleanAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"₹ 12,345.67", "12345.67"},
		{"1,234.56", "1234.56"},
		{"$1,000", "1000"},
		{" 25.99 ", "25.99"},
		{"0.00", "0.00"},
		{".00", ".00"},
		{"1,2,3.00", "123.00"},
		{"Not Found", models.NotFound},
		{"", models.NotFound},
		{",", models.NotFound},
		{"abc", models.NotFound},
		{"12.34.56", models.NotFound},
		{"-25.99", models.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanAmount(tt.input))
		})
	}
}

func TestLeading(t *testing.T) {
	assert.Equal(t, "₹₹", leading("₹₹abc", 2))
	assert.Equal(t, "ab", leading("ab", 5))
	assert.Equal(t, "", leading("abc", 0))
}

func TestFirstOf_StopsAtFirstHit(t *testing.T) {
	var calls []string
	mk := func(name, result string) candidate {
		return func(*models.StatementDocument) string {
			calls = append(calls, name)
			return result
		}
	}

	got := firstOf(newDoc(""),
		mk("a", models.NotFound),
		mk("b", "first"),
		mk("c", "second"),
	)

	assert.Equal(t, "first", got)
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestFirstOf_Exhausted(t *testing.T) {
	assert.Equal(t, models.NotFound, firstOf(newDoc("")))
}

func TestScanWindow(t *testing.T) {
	lines := []string{"header", "Payment Due Date", "", "01/04/2023"}

	assert.Equal(t, "01/04/2023", scanWindow(lines, []string{"Payment Due Date"}, 0, 3, dateSlash))
	assert.Equal(t, models.NotFound, scanWindow(lines, []string{"Payment Due Date"}, 0, 2, dateSlash))
	assert.Equal(t, models.NotFound, scanWindow(lines, []string{"Statement Date"}, 0, 5, dateSlash))
}

func TestScanWindow_LaterLabelWins(t *testing.T) {
	lines := []string{"Due Date", "none here", "x", "y", "z", "Due Date 09/09/2024"}
	assert.Equal(t, "09/09/2024", scanWindow(lines, []string{"Due Date"}, 0, 3, dateSlash))
}

func TestSameOrNextLineAmount(t *testing.T) {
	re := regexp.MustCompile(`([\d,]+\.?\d*)\s*Dr`)
	c := sameOrNextLineAmount("Total Payment Due", re)

	assert.Equal(t, "100.50", c(newDoc("Total Payment Due 100.50 Dr")))
	assert.Equal(t, "2000.00", c(newDoc("Total Payment Due\n2,000.00 Dr")))
	assert.Equal(t, models.NotFound, c(newDoc("Total Payment Due\n\n2,000.00 Dr")))
}

func TestRankAmounts(t *testing.T) {
	ranked := rankAmounts([]string{"1,000.00", "50.00", "abc", "20,000.00"})

	var cleaned []string
	for _, r := range ranked {
		cleaned = append(cleaned, r.cleaned)
	}
	assert.Equal(t, []string{"20000.00", "1000.00", "50.00"}, cleaned)
}

func TestDatePatterns(t *testing.T) {
	tests := []struct {
		re       *regexp.Regexp
		input    string
		expected string
	}{
		{dateSlash, "Statement Date:12/03/2023", "12/03/2023"},
		{dateSlash, "1/3/2023", models.NotFound},
		{dateSpaced, "dated 15 Nov 2018", "15 Nov 2018"},
		{dateSpaced, "15 November 2018", models.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, submatch(tt.re, tt.input))
		})
	}
}

package writer

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

var sampleRecords = []Record{
	NewRecord("jan.pdf", &models.ExtractionResult{
		Bank:             "HDFC Bank",
		CardLast4Digits:  "3458",
		StatementDate:    "12/03/2023",
		PaymentDueDate:   "01/04/2023",
		TotalAmountDue:   "22935.00",
		MinimumAmountDue: models.NotFound,
	}, nil),
	NewRecord("broken.pdf", nil, errors.New("cannot open document 'broken.pdf': EOF")),
}

func TestCSVWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&CSVWriter{}).Write(&buf, sampleRecords))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "file,bank,card_last_4_digits,statement_date,payment_due_date,total_amount_due,minimum_amount_due,error", lines[0])
	assert.Equal(t, "jan.pdf,HDFC Bank,3458,12/03/2023,01/04/2023,22935.00,Not Found,", lines[1])
	assert.Equal(t, "broken.pdf,,,,,,,cannot open document 'broken.pdf': EOF", lines[2])
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteFile(&CSVWriter{}, path, sampleRecords[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "jan.pdf,HDFC Bank,3458")
}

func TestWriteFile_BadPath(t *testing.T) {
	err := WriteFile(&JSONWriter{}, filepath.Join(t.TempDir(), "missing", "out.json"), nil)
	assert.Error(t, err)
}

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/card-statement-parser/internal/metrics"
	"github.com/insightdelivered/card-statement-parser/internal/models"
	"github.com/insightdelivered/card-statement-parser/internal/parser"
	"github.com/insightdelivered/card-statement-parser/internal/parsererror"
)

var hdfcPages = []string{
	"HDFC Bank Credit Card Statement\nCard No 4695 25XX XXXX 3458\nStatement Date:12/03/2023",
	"Payment Due Date\n01/04/2023\nTotal Dues 22,935.00\nMinimum Amount Due 1,150.00",
}

// fakeExtractor records the paths it was handed and whether the file was
// present at the time.
type fakeExtractor struct {
	mu      sync.Mutex
	pages   []string
	err     error
	paths   []string
	existed []bool
}

func (f *fakeExtractor) Extract(path string) (*models.StatementDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, statErr := os.Stat(path)
	f.paths = append(f.paths, path)
	f.existed = append(f.existed, statErr == nil)
	if f.err != nil {
		return nil, f.err
	}
	return models.NewStatementDocument(f.pages), nil
}

func setupTestApp(t *testing.T, ext *fakeExtractor) (*fiber.App, *Handler) {
	t.Helper()
	h := &Handler{
		Dispatcher: parser.NewDispatcher(ext, nil),
		Metrics:    metrics.NewRecorder(),
		UploadDir:  t.TempDir(),
		Version:    "test",
	}
	return NewApp(h, 16), h
}

type formFile struct {
	name    string
	content []byte
}

func multipartRequest(t *testing.T, fields map[string]string, file *formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("file", file.name)
		require.NoError(t, err)
		_, err = fw.Write(file.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/parse", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, resp *http.Response) ParseResponse {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out ParseResponse
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	app, _ := setupTestApp(t, &fakeExtractor{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, "ok", result["status"])
	assert.Equal(t, "fiber", result["engine"])
	assert.Len(t, result["banks"], 5)
}

func TestParseEndpoint_Validation(t *testing.T) {
	pdf := &formFile{name: "statement.pdf", content: []byte("%PDF-1.4")}

	tests := []struct {
		name    string
		fields  map[string]string
		file    *formFile
		message string
	}{
		{"no file", map[string]string{"bank": "HDFC"}, nil, "No file uploaded"},
		{"empty filename", map[string]string{"bank": "HDFC"}, &formFile{name: "", content: []byte("%PDF-1.4")}, "No file selected"},
		{"unknown bank", map[string]string{"bank": "CITI"}, pdf, "Invalid bank selected"},
		{"missing bank", nil, pdf, "Invalid bank selected"},
		{"not a pdf", map[string]string{"bank": "HDFC"}, &formFile{name: "statement.txt", content: []byte("x")}, "Invalid file type. Please upload a PDF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := &fakeExtractor{pages: hdfcPages}
			app, _ := setupTestApp(t, ext)

			resp, err := app.Test(multipartRequest(t, tt.fields, tt.file), -1)
			require.NoError(t, err)

			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			out := decode(t, resp)
			assert.False(t, out.Success)
			assert.Equal(t, tt.message, out.Error)
			assert.Empty(t, ext.paths, "validation failures must not reach the extractor")
		})
	}
}

func TestParseEndpoint_Success(t *testing.T) {
	ext := &fakeExtractor{pages: hdfcPages}
	app, h := setupTestApp(t, ext)

	req := multipartRequest(t, map[string]string{"bank": "hdfc"}, &formFile{name: "Statement.PDF", content: []byte("%PDF-1.4")})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decode(t, resp)
	assert.True(t, out.Success)
	assert.Equal(t, &models.ExtractionResult{
		Bank:             "HDFC Bank",
		CardLast4Digits:  "3458",
		StatementDate:    "12/03/2023",
		PaymentDueDate:   "01/04/2023",
		TotalAmountDue:   "22935.00",
		MinimumAmountDue: "1150.00",
	}, out.Data)

	require.Len(t, ext.paths, 1)
	assert.True(t, ext.existed[0], "upload must exist while it is parsed")
	entries, err := os.ReadDir(h.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "upload must be removed after parsing")
}

func TestParseEndpoint_ExtractedText(t *testing.T) {
	ext := &fakeExtractor{}
	app, _ := setupTestApp(t, ext)

	fields := map[string]string{
		"bank":          "HDFC",
		"extractedText": hdfcPages[0] + PageBreak + hdfcPages[1],
	}
	resp, err := app.Test(multipartRequest(t, fields, &formFile{name: "s.pdf", content: []byte("x")}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decode(t, resp)
	assert.Equal(t, "3458", out.Data.CardLast4Digits)
	assert.Equal(t, "1150.00", out.Data.MinimumAmountDue)
	assert.Empty(t, ext.paths)
}

func TestParseEndpoint_OpenError(t *testing.T) {
	ext := &fakeExtractor{}
	app, h := setupTestApp(t, ext)
	ext.err = &parsererror.DocumentOpenError{Path: h.UploadDir + "/statement-x.pdf", Err: errors.New("malformed PDF")}

	resp, err := app.Test(multipartRequest(t, map[string]string{"bank": "SBI"}, &formFile{name: "s.pdf", content: []byte("junk")}), -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	out := decode(t, resp)
	assert.Equal(t, MsgUnreadablePDF, out.Error)
	assert.NotContains(t, out.Error, h.UploadDir)

	entries, err := os.ReadDir(h.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseEndpoint_OtherError(t *testing.T) {
	ext := &fakeExtractor{err: errors.New("disk on fire")}
	app, _ := setupTestApp(t, ext)

	resp, err := app.Test(multipartRequest(t, map[string]string{"bank": "AXIS"}, &formFile{name: "s.pdf", content: []byte("x")}), -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Parsing error: disk on fire", decode(t, resp).Error)
}

func TestMetricsEndpoint(t *testing.T) {
	ext := &fakeExtractor{pages: hdfcPages}
	app, _ := setupTestApp(t, ext)

	_, err := app.Test(multipartRequest(t, map[string]string{"bank": "HDFC"}, &formFile{name: "s.pdf", content: []byte("x")}), -1)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `card_statement_parses_total{bank="HDFC",outcome="ok"} 1`)
}

func TestMetrics_UnknownBanksShareOneSeries(t *testing.T) {
	app, h := setupTestApp(t, &fakeExtractor{pages: hdfcPages})

	for _, code := range []string{"junk-1", "junk-2"} {
		resp, err := app.Test(multipartRequest(t, map[string]string{"bank": code}, &formFile{name: "s.pdf", content: []byte("x")}), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	}

	assert.Equal(t, 1, testutil.CollectAndCount(h.Metrics.ParsesTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(h.Metrics.ParsesTotal.WithLabelValues(metrics.UnknownBank, metrics.OutcomeUnknownBank)))
}

func TestSplitPages(t *testing.T) {
	assert.Nil(t, splitPages(""))
	assert.Equal(t, []string{"a", "b"}, splitPages("a"+PageBreak+"  "+PageBreak+"b"))
}

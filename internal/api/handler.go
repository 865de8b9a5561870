// Package api serves statement parsing over HTTP.
package api

import (
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/insightdelivered/card-statement-parser/internal/logging"
	"github.com/insightdelivered/card-statement-parser/internal/metrics"
	"github.com/insightdelivered/card-statement-parser/internal/models"
	"github.com/insightdelivered/card-statement-parser/internal/parser"
	"github.com/insightdelivered/card-statement-parser/internal/parsererror"
)

// PageBreak separates pages in the optional extractedText form field.
const PageBreak = "\n---PAGE_BREAK---\n"

// MsgUnreadablePDF is returned when the upload cannot be opened as a PDF.
// The server-side path stays in the logs.
const MsgUnreadablePDF = "Parsing error: the uploaded file could not be read as a PDF"

// ParseResponse is the JSON body of /api/parse.
type ParseResponse struct {
	Success bool                     `json:"success"`
	Data    *models.ExtractionResult `json:"data,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Dispatcher *parser.Dispatcher
	Metrics    *metrics.Recorder
	Log        logging.Logger
	// UploadDir receives uploads while they are parsed. Empty means the OS
	// temp dir.
	UploadDir string
	Version   string
}

// NewApp builds a fiber app with the handler's routes and the given upload
// limit.
func NewApp(h *Handler, maxUploadMB int) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "card-statement-parser",
		BodyLimit:             maxUploadMB << 20,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/parse", h.HandleParse)
	if h.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(h.Metrics.Handler()))
	}
}

// HandleHealth reports liveness and the supported bank codes.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": h.Version,
		"banks":   parser.Banks(),
	})
}

// HandleParse accepts a multipart upload with a "file" PDF and a "bank"
// code and responds with the extracted fields.
func (h *Handler) HandleParse(c *fiber.Ctx) error {
	log := h.logger().WithField(logging.FieldRequestID, uuid.NewString())

	form, err := c.MultipartForm()
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded")
	}
	files := form.File["file"]
	if len(files) == 0 {
		// A part sent with an empty filename arrives as a plain value.
		if _, ok := form.Value["file"]; ok {
			return writeError(c, fiber.StatusBadRequest, "No file selected")
		}
		return writeError(c, fiber.StatusBadRequest, "No file uploaded")
	}
	fh := files[0]
	if fh.Filename == "" {
		return writeError(c, fiber.StatusBadRequest, "No file selected")
	}

	bank, err := parser.Lookup(c.FormValue("bank"))
	if err != nil {
		h.Metrics.Observe(c.FormValue("bank"), nil, err)
		return writeError(c, fiber.StatusBadRequest, "Invalid bank selected")
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
		return writeError(c, fiber.StatusBadRequest, "Invalid file type. Please upload a PDF")
	}

	log = log.WithFields(
		logging.F(logging.FieldBank, bank),
		logging.F(logging.FieldFile, fh.Filename),
	)

	var res *models.ExtractionResult
	if pages := splitPages(c.FormValue("extractedText")); len(pages) > 0 {
		res, err = h.Dispatcher.ParseDocument(string(bank), models.NewStatementDocument(pages))
	} else {
		res, err = h.parseUpload(c, fh, string(bank))
	}
	h.Metrics.Observe(string(bank), res, err)

	if err != nil {
		log.WithError(err).Warn("Parse failed")
		var openErr *parsererror.DocumentOpenError
		if errors.As(err, &openErr) {
			return writeError(c, fiber.StatusUnprocessableEntity, MsgUnreadablePDF)
		}
		return writeError(c, fiber.StatusInternalServerError, "Parsing error: "+err.Error())
	}

	return c.JSON(ParseResponse{Success: true, Data: res})
}

// parseUpload stores the uploaded file under a unique name for the duration
// of the parse.
func (h *Handler) parseUpload(c *fiber.Ctx, fh *multipart.FileHeader, bank string) (*models.ExtractionResult, error) {
	dir := h.UploadDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "statement-"+uuid.NewString()+".pdf")
	defer os.Remove(path)

	if err := c.SaveFile(fh, path); err != nil {
		return nil, err
	}
	return h.Dispatcher.Parse(bank, path)
}

func (h *Handler) logger() logging.Logger {
	if h.Log == nil {
		return logging.NopLogger{}
	}
	return h.Log
}

// splitPages splits client-extracted text on PageBreak, dropping blank pages.
func splitPages(text string) []string {
	var pages []string
	for _, page := range strings.Split(text, PageBreak) {
		if strings.TrimSpace(page) != "" {
			pages = append(pages, page)
		}
	}
	return pages
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ParseResponse{Error: msg})
}

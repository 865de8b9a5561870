// Package writer renders extraction results for the command line.
package writer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// Record is the outcome of parsing one file. Exactly one of Data and Error
// is set.
type Record struct {
	File    string                   `json:"file" yaml:"file"`
	Success bool                     `json:"success" yaml:"success"`
	Data    *models.ExtractionResult `json:"data,omitempty" yaml:"data,omitempty"`
	Error   string                   `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewRecord builds a Record from a parse call's return values.
func NewRecord(file string, res *models.ExtractionResult, err error) Record {
	if err != nil {
		return Record{File: file, Error: err.Error()}
	}
	return Record{File: file, Success: true, Data: res}
}

// ResultWriter writes a batch of records in one output format.
type ResultWriter interface {
	Write(out io.Writer, records []Record) error
}

// New returns the writer for format ("json", "yaml" or "csv").
func New(format string) (ResultWriter, error) {
	switch format {
	case "json":
		return &JSONWriter{Indent: "  "}, nil
	case "yaml":
		return &YAMLWriter{}, nil
	case "csv":
		return &CSVWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// WriteFile writes records with w to a new file at path.
func WriteFile(w ResultWriter, path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	if err := w.Write(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// JSONWriter writes records as a JSON array.
type JSONWriter struct {
	Indent string
}

func (w *JSONWriter) Write(out io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", w.Indent)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// YAMLWriter writes records as a YAML sequence.
type YAMLWriter struct{}

func (w *YAMLWriter) Write(out io.Writer, records []Record) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

// Package metrics exposes parse counters in Prometheus format.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/insightdelivered/card-statement-parser/internal/models"
	"github.com/insightdelivered/card-statement-parser/internal/parsererror"
)

// Outcome label values for ParsesTotal.
const (
	OutcomeOK          = "ok"
	OutcomeOpenError   = "open_error"
	OutcomeUnknownBank = "unknown_bank"
	OutcomeError       = "error"
)

// Recorder counts parse attempts and fields that came back NotFound.
// Each Recorder has its own registry.
type Recorder struct {
	registry *prometheus.Registry

	ParsesTotal    *prometheus.CounterVec
	FieldsNotFound *prometheus.CounterVec
}

// NewRecorder registers the counters on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ParsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "card_statement_parses_total",
			Help: "Statement parse attempts by bank and outcome.",
		}, []string{"bank", "outcome"}),
		FieldsNotFound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "card_statement_fields_not_found_total",
			Help: "Fields that no pattern could extract, by bank and field.",
		}, []string{"bank", "field"}),
	}
	r.registry.MustRegister(r.ParsesTotal, r.FieldsNotFound)
	return r
}

// UnknownBank is the bank label used for codes that are not registered.
const UnknownBank = "unknown"

// Observe records one parse. bank is the requested code; res may be nil when
// err is set. Unregistered codes are folded into UnknownBank.
func (r *Recorder) Observe(bank string, res *models.ExtractionResult, err error) {
	if r == nil {
		return
	}
	result := outcome(err)
	if result == OutcomeUnknownBank {
		bank = UnknownBank
	}
	r.ParsesTotal.WithLabelValues(bank, result).Inc()
	if res == nil {
		return
	}
	for _, field := range res.MissingFields() {
		r.FieldsNotFound.WithLabelValues(bank, field).Inc()
	}
}

// Handler serves the registry for scraping.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var openErr *parsererror.DocumentOpenError
	if errors.As(err, &openErr) {
		return OutcomeOpenError
	}
	var bankErr *parsererror.UnknownBankError
	if errors.As(err, &bankErr) {
		return OutcomeUnknownBank
	}
	return OutcomeError
}

package output

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/hitpull/packages/batch"
	"github.com/abdul-hamid-achik/hitpull/packages/core/requests"
	"github.com/abdul-hamid-achik/hitpull/packages/metrics"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	BatchID     string        `json:"batchId,omitempty"`
	Success     bool          `json:"success"`
	Error       *JSONError    `json:"error,omitempty"`
	Descriptors int           `json:"descriptors"`
	Requests    []JSONRequest `json:"requests"`
	Latency     *JSONLatency  `json:"latency,omitempty"`
	Duration    float64       `json:"duration"`
	Time        string        `json:"time"`
}

// JSONError carries the error kind when the error is a batch error.
type JSONError struct {
	Kind       string `json:"kind,omitempty"`
	Message    string `json:"message"`
	URL        string `json:"url,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
}

type JSONRequest struct {
	ID          string            `json:"id,omitempty"`
	Method      string            `json:"method"`
	URL         string            `json:"url"`
	Destination string            `json:"destination"`
	Headers     map[string]string `json:"headers,omitempty"`
	StatusCode  int               `json:"statusCode,omitempty"`
	Size        int               `json:"size,omitempty"`
	Duration    float64           `json:"duration,omitempty"`
}

// JSONLatency holds percentiles in milliseconds.
type JSONLatency struct {
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
	Max float64 `json:"max"`
}

type JSONFormatter struct {
	writer io.Writer
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{writer: os.Stdout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		if w != nil {
			f.writer = w
		}
	}
}

// FormatHeader writes nothing; a JSON stream has no banner.
func (f *JSONFormatter) FormatHeader(version string) {}

func (f *JSONFormatter) FormatPlan(descs []*requests.Descriptor) {
	out := JSONOutput{
		Success:     true,
		Descriptors: len(descs),
		Requests:    make([]JSONRequest, 0, len(descs)),
		Time:        time.Now().Format(time.RFC3339),
	}
	for _, d := range descs {
		out.Requests = append(out.Requests, JSONRequest{
			ID:          d.ID,
			Method:      d.Method,
			URL:         d.URL,
			Destination: d.Destination.String(),
			Headers:     d.Headers,
		})
	}
	f.encode(out)
}

func (f *JSONFormatter) FormatReport(report *batch.Report, summary *metrics.Summary) {
	out := JSONOutput{
		BatchID:     report.BatchID,
		Success:     report.Success(),
		Descriptors: report.Descriptors,
		Requests:    make([]JSONRequest, 0, len(report.Requests)),
		Duration:    ms(report.Duration),
		Time:        time.Now().Format(time.RFC3339),
	}
	if report.Err != nil {
		out.Error = newJSONError(report.Err)
	}
	for _, r := range report.Requests {
		out.Requests = append(out.Requests, JSONRequest{
			ID:          r.ID,
			Method:      r.Method,
			URL:         r.URL,
			Destination: r.Destination,
			StatusCode:  r.StatusCode,
			Size:        r.Size,
			Duration:    ms(r.Duration),
		})
	}
	if summary != nil && summary.Requests > 0 {
		out.Latency = &JSONLatency{
			P50: ms(summary.P50),
			P95: ms(summary.P95),
			P99: ms(summary.P99),
			Max: ms(summary.Max),
		}
	}
	f.encode(out)
}

func (f *JSONFormatter) FormatError(err error) {
	f.encode(JSONOutput{
		Success:  false,
		Error:    newJSONError(err),
		Requests: []JSONRequest{},
		Time:     time.Now().Format(time.RFC3339),
	})
}

func (f *JSONFormatter) encode(v any) {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(v)
}

func newJSONError(err error) *JSONError {
	je := &JSONError{Message: err.Error()}
	if kind, ok := requests.KindOf(err); ok {
		je.Kind = string(kind)
	}
	var reqErr *requests.Error
	if errors.As(err, &reqErr) {
		je.URL = reqErr.URL
		je.StatusCode = reqErr.StatusCode
	}
	return je
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

package batch

import (
	"time"

	"github.com/abdul-hamid-achik/hitpull/packages/dispatch"
)

// Report summarizes one batch run.
type Report struct {
	BatchID     string          `json:"batchId"`
	Descriptors int             `json:"descriptors"`
	Requests    []RequestReport `json:"requests,omitempty"`
	Duration    time.Duration   `json:"duration"`
	Err         error           `json:"-"`
}

// RequestReport describes one completed request.
type RequestReport struct {
	ID          string        `json:"id"`
	Method      string        `json:"method"`
	URL         string        `json:"url"`
	Destination string        `json:"destination"`
	StatusCode  int           `json:"status"`
	Size        int           `json:"size"`
	Duration    time.Duration `json:"duration"`
}

func (r *Report) Success() bool {
	return r.Err == nil
}

func newRequestReport(res dispatch.Result) RequestReport {
	d := res.Descriptor
	return RequestReport{
		ID:          d.ID,
		Method:      d.Method,
		URL:         d.URL,
		Destination: d.Destination.String(),
		StatusCode:  res.Response.StatusCode,
		Size:        len(res.Response.Body),
		Duration:    res.Response.Duration,
	}
}

package output

import (
	"fmt"
	"io"

	"github.com/abdul-hamid-achik/hitpull/packages/batch"
	"github.com/abdul-hamid-achik/hitpull/packages/core/requests"
	"github.com/abdul-hamid-achik/hitpull/packages/metrics"
)

// Formatter renders the outcome of the CLI commands.
type Formatter interface {
	FormatHeader(version string)
	FormatPlan(descs []*requests.Descriptor)
	FormatReport(report *batch.Report, summary *metrics.Summary)
	FormatError(err error)
}

// New returns the formatter registered under name, "console" or "json".
func New(name string, w io.Writer, verbose, noColor bool) (Formatter, error) {
	switch name {
	case "", "console":
		return NewConsoleFormatter(WithWriter(w), WithVerbose(verbose), WithNoColor(noColor)), nil
	case "json":
		return NewJSONFormatter(JSONWithWriter(w)), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want console or json)", name)
	}
}

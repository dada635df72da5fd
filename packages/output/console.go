package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/hitpull/packages/batch"
	"github.com/abdul-hamid-achik/hitpull/packages/core/requests"
	"github.com/abdul-hamid-achik/hitpull/packages/metrics"
	"github.com/fatih/color"
)

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		if w != nil {
			f.writer = w
		}
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("hitpull"), version)
}

// FormatPlan lists descriptors without sending them.
func (f *ConsoleFormatter) FormatPlan(descs []*requests.Descriptor) {
	cyan := color.New(color.FgCyan).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	if len(descs) == 0 {
		fmt.Fprintln(f.writer, "No requests.")
		return
	}

	for _, d := range descs {
		fmt.Fprintf(f.writer, "  %-6s %s %s %s\n", cyan(d.Method), d.URL, faint("->"), d.Destination)
		if f.verbose {
			for _, k := range sortedKeys(d.Headers) {
				fmt.Fprintf(f.writer, "         %s: %s\n", k, d.Headers[k])
			}
			if d.Body != "" {
				fmt.Fprintf(f.writer, "         body: %s\n", truncate(d.Body, 80))
			}
		}
	}
	fmt.Fprintf(f.writer, "\n%d request(s)\n", len(descs))
}

func (f *ConsoleFormatter) FormatReport(report *batch.Report, summary *metrics.Summary) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	fmt.Fprintln(f.writer)
	for _, r := range report.Requests {
		fmt.Fprintf(f.writer, "  %s %s %s %s %s\n",
			green("✓"), r.Method, r.URL, faint("-> "+r.Destination),
			cyan(fmt.Sprintf("(%d, %dms)", r.StatusCode, r.Duration.Milliseconds())))
		if f.verbose {
			fmt.Fprintf(f.writer, "    %d bytes\n", r.Size)
		}
	}

	fmt.Fprintln(f.writer)
	if report.Success() {
		fmt.Fprintf(f.writer, "Batch: %s, %d total\n", green("ok"), report.Descriptors)
	} else {
		fmt.Fprintf(f.writer, "Batch: %s %v\n", red("failed"), report.Err)
	}
	fmt.Fprintf(f.writer, "Time:  %dms\n", report.Duration.Milliseconds())

	if summary != nil && summary.Requests > 0 && f.verbose {
		fmt.Fprintf(f.writer, "Latency: p50 %s  p95 %s  p99 %s  max %s\n",
			summary.P50, summary.P95, summary.P99, summary.Max)
	}
	fmt.Fprintln(f.writer)
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

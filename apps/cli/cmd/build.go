package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/hitpull/packages/batch"
	"github.com/abdul-hamid-achik/hitpull/packages/logging"
	"github.com/abdul-hamid-achik/hitpull/packages/metrics"
	"github.com/abdul-hamid-achik/hitpull/packages/output"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build [source] [destination]",
	Short: "Send every request and write the build",
	Long: `Load the source tree, send the configured and front matter requests
concurrently, route each response and write the destination tree.

The batch is all-or-nothing: if any request fails, nothing is written.

Examples:
  hitpull build
  hitpull build content public
  hitpull build --dry-run
  hitpull build --watch --log-level debug
  hitpull build --metrics-file /var/lib/node_exporter/hitpull.prom`,
	Args: cobra.MaximumNArgs(2),
	RunE: buildCommand,
}

var (
	watchFlag       bool
	dryRunFlag      bool
	metricsFileFlag string
	timeoutFlag     string
	proxyFlag       string
	insecureFlag    bool
	allowFileFlag   bool
	cleanFlag       bool
	debounceFlag    int
)

func init() {
	f := buildCmd.Flags()
	f.BoolVarP(&watchFlag, "watch", "w", false, "Rebuild when the source tree or config changes")
	f.BoolVar(&dryRunFlag, "dry-run", false, "List the requests without sending them")
	f.StringVar(&metricsFileFlag, "metrics-file", getEnvString("HITPULL_METRICS_FILE", ""), "Write Prometheus metrics to a textfile (env: HITPULL_METRICS_FILE)")
	f.StringVar(&timeoutFlag, "timeout", getEnvString("HITPULL_TIMEOUT", ""), "Default request timeout, e.g. 30s (env: HITPULL_TIMEOUT)")
	f.StringVar(&proxyFlag, "proxy", getEnvString("HITPULL_PROXY", ""), "Proxy URL for HTTP requests (env: HITPULL_PROXY)")
	f.BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("HITPULL_INSECURE", false), "Disable SSL certificate validation (env: HITPULL_INSECURE)")
	f.BoolVar(&allowFileFlag, "allow-file", getEnvBool("HITPULL_ALLOW_FILE", false), "Allow file:// request URLs (env: HITPULL_ALLOW_FILE)")
	f.BoolVar(&cleanFlag, "clean", getEnvBool("HITPULL_CLEAN", false), "Remove the destination before writing (env: HITPULL_CLEAN)")
	f.IntVar(&debounceFlag, "debounce", getEnvInt("HITPULL_WATCH_DEBOUNCE_MS", int(WatchDebounceDelay/time.Millisecond)), "Watch debounce in milliseconds (env: HITPULL_WATCH_DEBOUNCE_MS)")
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

func buildOverrides() overrides {
	return overrides{
		timeout:   timeoutFlag,
		proxy:     proxyFlag,
		insecure:  insecureFlag,
		allowFile: allowFileFlag,
		clean:     cleanFlag,
	}
}

func buildCommand(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	formatter, err := newFormatter(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	p, err := loadProject(args, buildOverrides())
	if err != nil {
		return err
	}

	if dryRunFlag {
		return planProject(p, formatter)
	}

	_, err = buildProject(ctx, p, formatter)
	if !watchFlag {
		return err
	}
	return watchProject(ctx, cmd, p, args, formatter)
}

func planProject(p *project, formatter output.Formatter) error {
	st, err := p.loadStore()
	if err != nil {
		return err
	}
	r, err := p.runner()
	if err != nil {
		return err
	}
	descs, err := r.Plan(st)
	if err != nil {
		formatter.FormatError(err)
		return err
	}
	formatter.FormatPlan(descs)
	return nil
}

// buildProject runs one batch and writes its output. The formatter reports
// the batch outcome; the returned error carries it to the exit code.
func buildProject(ctx context.Context, p *project, formatter output.Formatter) (*batch.Report, error) {
	logger := logging.NewLogger("build")

	st, err := p.loadStore()
	if err != nil {
		formatter.FormatError(err)
		return nil, err
	}

	collector := metrics.NewCollector()
	r, err := p.runner(batch.WithObserver(collector))
	if err != nil {
		formatter.FormatError(err)
		return nil, err
	}

	report, runErr := r.Run(ctx, st)
	collector.RecordBatch(report.Descriptors, runErr)
	summary := collector.Summary()
	formatter.FormatReport(report, &summary)

	if metricsFileFlag != "" {
		if err := collector.WriteTextfile(metricsFileFlag); err != nil {
			logger.Warn().Err(err).Str("path", metricsFileFlag).Msg("cannot write metrics")
		}
	}

	if runErr != nil {
		return report, runErr
	}

	if err := p.write(st); err != nil {
		formatter.FormatError(err)
		return report, err
	}
	logger.Info().
		Str("batch_id", report.BatchID).
		Str("destination", p.destination).
		Int("files", len(st.Files)).
		Msg("build written")
	return report, nil
}

func watchProject(ctx context.Context, cmd *cobra.Command, p *project, args []string, formatter output.Formatter) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	dst, _ := filepath.Abs(p.destination)
	if err := addWatchDirs(watcher, p.source, dst); err != nil {
		formatter.FormatError(fmt.Errorf("failed to watch %s: %w", p.source, err))
	}
	_ = watcher.Add(".")

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	debounce := time.Duration(debounceFlag) * time.Millisecond
	rebuild := make(chan string, 1)
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantEvent(event, dst) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addWatchDirs(watcher, event.Name, dst)
				}
			}

			// Debounce: reset timer on each event
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(debounce, func() {
				select {
				case rebuild <- name:
				default:
				}
			})

		case name := <-rebuild:
			fmt.Fprintf(cmd.OutOrStdout(), "\nFile changed: %s\nRebuilding...\n", name)
			// reload so config edits apply
			if next, err := loadProject(args, buildOverrides()); err == nil {
				p = next
			} else {
				formatter.FormatError(err)
			}
			_, _ = buildProject(ctx, p, formatter)
			fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			formatter.FormatError(fmt.Errorf("watcher error: %w", err))
		}
	}
}

func addWatchDirs(watcher *fsnotify.Watcher, root, skip string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if abs, _ := filepath.Abs(path); abs == skip {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// relevantEvent ignores chmod-only events and anything under the
// destination, which the build itself writes.
func relevantEvent(event fsnotify.Event, destination string) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return !isWithin(abs, destination)
}

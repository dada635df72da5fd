package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/hitpull/packages/batch"
	"github.com/abdul-hamid-achik/hitpull/packages/core/config"
	"github.com/abdul-hamid-achik/hitpull/packages/core/env"
	"github.com/abdul-hamid-achik/hitpull/packages/output"
	"github.com/abdul-hamid-achik/hitpull/packages/store"
)

// project is a loaded config plus the resolved source and destination.
type project struct {
	cfg         *config.Config
	source      string
	destination string
}

// overrides are flag values that take precedence over the config file.
type overrides struct {
	timeout   string
	proxy     string
	insecure  bool
	allowFile bool
	clean     bool
}

// loadProject loads .env files, then the config, then applies positional
// source and destination arguments.
func loadProject(args []string, o overrides) (*project, error) {
	envFiles := env.DefaultFiles
	if envFileFlag != "" {
		envFiles = []string{envFileFlag}
	}
	if _, err := env.LoadAndExport(envFiles...); err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	cfg = cfg.Merge(&config.Config{Timeout: o.timeout, Proxy: o.proxy})
	if o.insecure {
		cfg.ValidateSSL = config.BoolPtr(false)
	}
	if o.allowFile {
		cfg.AllowFile = config.BoolPtr(true)
	}
	if o.clean {
		cfg.Clean = config.BoolPtr(true)
	}
	if _, err := cfg.GetTimeout(); err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	p := &project{cfg: cfg, source: cfg.Source, destination: cfg.Destination}
	if len(args) > 0 {
		p.source = args[0]
	}
	if len(args) > 1 {
		p.destination = args[1]
	}
	return p, nil
}

func (p *project) loadStore() (*store.Store, error) {
	info, err := os.Stat(p.source)
	if os.IsNotExist(err) {
		// a config with only explicit requests needs no source tree
		return store.New(), nil
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, withExitCode(ExitUsageError, fmt.Errorf("source %s is not a directory", p.source))
	}
	return store.LoadDir(p.source)
}

func (p *project) runner(opts ...batch.Option) (*batch.Runner, error) {
	r, err := batch.NewRunnerFromConfig(p.cfg, opts...)
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}
	return r, nil
}

// write stores the build output, clearing the destination first when the
// config asks for it.
func (p *project) write(st *store.Store) error {
	if p.cfg.GetClean() {
		if err := p.checkCleanTarget(); err != nil {
			return err
		}
		if err := os.RemoveAll(p.destination); err != nil {
			return fmt.Errorf("clean %s: %w", p.destination, err)
		}
	}
	if err := store.WriteDir(p.destination, st); err != nil {
		return err
	}
	if p.cfg.MetadataFile != "" {
		return store.WriteMetadata(filepath.Join(p.destination, p.cfg.MetadataFile), st)
	}
	return nil
}

func (p *project) checkCleanTarget() error {
	dst, err := filepath.Abs(p.destination)
	if err != nil {
		return err
	}
	src, err := filepath.Abs(p.source)
	if err != nil {
		return err
	}
	cwd, _ := os.Getwd()
	if dst == src || dst == cwd || dst == filepath.Dir(dst) || isWithin(src, dst) {
		return withExitCode(ExitConfigError, fmt.Errorf("refusing to clean %s", p.destination))
	}
	return nil
}

// isWithin reports whether path is inside dir.
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !filepath.IsAbs(rel) && !startsWithParent(rel))
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}

func newFormatter(w io.Writer) (output.Formatter, error) {
	f, err := output.New(outputFlag, w, verboseFlag, noColorFlag)
	if err != nil {
		return nil, withExitCode(ExitUsageError, err)
	}
	return f, nil
}

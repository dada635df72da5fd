package batch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitpull/packages/core/config"
	"github.com/abdul-hamid-achik/hitpull/packages/core/inject"
	"github.com/abdul-hamid-achik/hitpull/packages/core/requests"
	"github.com/abdul-hamid-achik/hitpull/packages/dispatch"
	"github.com/abdul-hamid-achik/hitpull/packages/http"
	"github.com/abdul-hamid-achik/hitpull/packages/logging"
	"github.com/abdul-hamid-achik/hitpull/packages/route"
	"github.com/abdul-hamid-achik/hitpull/packages/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Runner struct {
	specs      []requests.Spec
	transport  http.Transport
	normalizer *requests.Normalizer
	observers  []dispatch.Observer
	logger     zerolog.Logger
	implicit   bool
}

type Option func(*Runner)

// WithTransport replaces the default HTTP client.
func WithTransport(t http.Transport) Option {
	return func(r *Runner) {
		r.transport = t
	}
}

// WithNormalizer replaces the default normalizer.
func WithNormalizer(n *requests.Normalizer) Option {
	return func(r *Runner) {
		r.normalizer = n
	}
}

// WithObserver registers an observer for every transport call.
func WithObserver(o dispatch.Observer) Option {
	return func(r *Runner) {
		if o != nil {
			r.observers = append(r.observers, o)
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithImplicitRequests toggles discovery of front matter requests. It is on
// by default.
func WithImplicitRequests(enabled bool) Option {
	return func(r *Runner) {
		r.implicit = enabled
	}
}

func NewRunner(specs []requests.Spec, opts ...Option) *Runner {
	r := &Runner{
		specs:    specs,
		logger:   zerolog.Nop(),
		implicit: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.transport == nil {
		r.transport = http.NewClient()
	}
	if r.normalizer == nil {
		r.normalizer = requests.NewNormalizer()
	}
	return r
}

// NewRunnerFromConfig builds a runner whose client and normalizer follow cfg.
// Options are applied after the config-derived ones.
func NewRunnerFromConfig(cfg *config.Config, opts ...Option) (*Runner, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	timeout, err := cfg.GetTimeout()
	if err != nil {
		return nil, err
	}

	client := http.NewClient(
		http.WithTimeout(timeout),
		http.WithFollowRedirects(cfg.GetFollowRedirects()),
		http.WithMaxRedirects(cfg.MaxRedirects),
		http.WithValidateSSL(cfg.GetValidateSSL()),
		http.WithProxy(cfg.Proxy),
		http.WithDefaultHeaders(cfg.Headers),
		http.WithFileScheme(cfg.GetAllowFile()),
	)

	logger := logging.NewLogger("batch")
	injector := inject.New()
	injector.SetWarnFunc(logging.WarnFunc(logger))

	normalizer := requests.NewNormalizer(
		requests.WithUserAgent(userAgent(cfg)),
		requests.WithFileScheme(cfg.GetAllowFile()),
		requests.WithInjector(injector),
	)

	base := []Option{
		WithTransport(client),
		WithNormalizer(normalizer),
		WithLogger(logger),
	}
	return NewRunner(cfg.Requests, append(base, opts...)...), nil
}

// userAgent returns cfg.UserAgent, falling back to a User-Agent entry in
// the default headers.
func userAgent(cfg *config.Config) string {
	if cfg.UserAgent != "" {
		return cfg.UserAgent
	}
	for k, v := range cfg.Headers {
		if strings.EqualFold(k, "User-Agent") {
			return v
		}
	}
	return ""
}

// Plan returns the descriptors a run against st would dispatch. Every
// normalization error is logged; the first one is returned.
func (r *Runner) Plan(st *store.Store) ([]*requests.Descriptor, error) {
	descs, errs := r.plan(st)
	if len(errs) > 0 {
		for _, err := range errs {
			r.logger.Error().Err(err).Msg("invalid request")
		}
		return nil, errs[0]
	}
	return descs, nil
}

// Validate returns every normalization error for st without dispatching.
func (r *Runner) Validate(st *store.Store) []error {
	_, errs := r.plan(st)
	return errs
}

func (r *Runner) plan(st *store.Store) ([]*requests.Descriptor, []error) {
	var errs []error
	sink := func(err error) {
		errs = append(errs, err)
	}

	specs := append([]requests.Spec(nil), r.specs...)
	if r.implicit && st != nil {
		specs = append(specs, requests.Discover(st, sink)...)
	}

	descs := r.normalizer.NormalizeAll(specs, sink)
	return descs, errs
}

// Run executes the batch against st. On failure st is left unmodified
// unless a callback destination modified it.
func (r *Runner) Run(ctx context.Context, st *store.Store) (*Report, error) {
	start := time.Now()
	report := &Report{BatchID: uuid.NewString()}
	logger := r.logger.With().Str("batch_id", report.BatchID).Logger()

	finish := func(err error) (*Report, error) {
		report.Duration = time.Since(start)
		report.Err = err
		if err != nil {
			logger.Error().Err(err).Dur("duration", report.Duration).Msg("batch failed")
			return report, err
		}
		logger.Info().
			Int("requests", report.Descriptors).
			Dur("duration", report.Duration).
			Msg("batch complete")
		return report, nil
	}

	if st == nil {
		return finish(fmt.Errorf("batch: nil store"))
	}

	descs, err := r.Plan(st)
	if err != nil {
		return finish(err)
	}
	report.Descriptors = len(descs)
	if len(descs) == 0 {
		logger.Debug().Msg("no requests")
		return finish(nil)
	}

	for _, d := range descs {
		logger.Debug().
			Str("method", d.Method).
			Str("url", d.URL).
			Str("out", d.Destination.String()).
			Msg("request")
	}

	opts := make([]dispatch.Option, 0, len(r.observers))
	for _, o := range r.observers {
		opts = append(opts, dispatch.WithObserver(o))
	}
	results, err := dispatch.New(r.transport, opts...).Dispatch(ctx, descs)
	if err != nil {
		return finish(err)
	}

	for _, res := range results {
		report.Requests = append(report.Requests, newRequestReport(res))
		logger.Debug().
			Str("url", res.Descriptor.URL).
			Int("status", res.Response.StatusCode).
			Dur("duration", res.Response.Duration).
			Msg("response")
	}

	router := route.NewRouter(st, route.WithLogger(logger))
	if err := router.RouteAll(ctx, results); err != nil {
		return finish(err)
	}

	return finish(nil)
}

// Process runs the batch and reports its outcome to done, the callback form
// used by build pipelines.
func (r *Runner) Process(ctx context.Context, st *store.Store, done func(error)) {
	_, err := r.Run(ctx, st)
	if done != nil {
		done(err)
	}
}

package route

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/abdul-hamid-achik/hitpull/packages/capture"
	"github.com/abdul-hamid-achik/hitpull/packages/core/requests"
	"github.com/abdul-hamid-achik/hitpull/packages/dispatch"
	"github.com/abdul-hamid-achik/hitpull/packages/http"
	"github.com/abdul-hamid-achik/hitpull/packages/store"
	"github.com/rs/zerolog"
)

// Router applies dispatch results to a store.
type Router struct {
	store  *store.Store
	logger zerolog.Logger
}

type RouterOption func(*Router)

// WithLogger sets the logger used by the log destination.
func WithLogger(logger zerolog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

func NewRouter(st *store.Store, opts ...RouterOption) *Router {
	r := &Router{
		store:  st,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// payload is a response body made ready for writing.
type payload struct {
	value any
	raw   []byte
}

// Route writes a single result to its destination.
func (r *Router) Route(ctx context.Context, result dispatch.Result) error {
	p, err := prepare(result.Descriptor, result.Response)
	if err != nil {
		return err
	}
	return r.apply(ctx, result, p)
}

// RouteAll writes results in descriptor order. Every payload is parsed
// before the first write, so a JSON error leaves the store unchanged.
func (r *Router) RouteAll(ctx context.Context, results []dispatch.Result) error {
	ordered := make([]dispatch.Result, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Descriptor.Index < ordered[j].Descriptor.Index
	})

	payloads := make([]payload, len(ordered))
	for i, res := range ordered {
		p, err := prepare(res.Descriptor, res.Response)
		if err != nil {
			return err
		}
		payloads[i] = p
	}

	for i, res := range ordered {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.apply(ctx, res, payloads[i]); err != nil {
			return err
		}
	}
	return nil
}

func prepare(d *requests.Descriptor, resp *http.Response) (payload, error) {
	dest := d.Destination
	asJSON := dest.JSON || resp.IsJSON()

	// An empty body has nothing to parse.
	if !asJSON || len(bytes.TrimSpace(resp.Body)) == 0 {
		if dest.Select != "" && asJSON {
			return payload{}, requests.InvalidJSON(d.URL, fmt.Errorf("cannot select %q from an empty body", dest.Select))
		}
		return payload{value: resp.BodyString(), raw: resp.Body}, nil
	}

	if _, err := resp.BodyJSON(); err != nil {
		return payload{}, requests.InvalidJSON(d.URL, err)
	}

	sel, err := capture.NewExtractor(resp, true).Select(dest.Select)
	if err != nil {
		return payload{}, requests.InvalidJSON(d.URL, err)
	}
	return payload{value: sel.Value, raw: []byte(sel.Raw)}, nil
}

func (r *Router) apply(ctx context.Context, res dispatch.Result, p payload) error {
	d := res.Descriptor
	dest := d.Destination

	switch dest.Kind {
	case requests.DestinationLog:
		r.logger.Debug().
			Str("url", d.URL).
			Int("status", res.Response.StatusCode).
			Interface("headers", res.Response.Headers).
			Interface("data", p.value).
			Msg("response")
		return nil

	case requests.DestinationMetadata:
		if err := SetPath(r.store.Meta(), dest.Key, p.value); err != nil {
			return fmt.Errorf("merge metadata %q: %w", dest.Key, err)
		}
		return nil

	case requests.DestinationContents:
		a := r.store.Ensure(dest.Path)
		data := p.raw
		if s, ok := p.value.(string); ok {
			data = []byte(s)
		}
		// Copy so appends never share a backing array with the response.
		contents := make([]byte, 0, len(a.Contents)+len(data))
		contents = append(contents, a.Contents...)
		a.Contents = append(contents, data...)
		return nil

	case requests.DestinationField:
		a := r.store.Ensure(dest.Path)
		if err := SetPath(a.Fields, dest.Key, p.value); err != nil {
			return fmt.Errorf("merge field %q of %s: %w", dest.Key, dest.Path, err)
		}
		return nil

	case requests.DestinationCallback:
		if dest.Call == nil {
			return requests.InvalidOutConfig(d.URL, "callback is nil")
		}
		return dest.Call(ctx, res.Response, d.WithoutDestination(), r.store)

	default:
		return requests.InvalidOutConfig(d.URL, "unknown destination "+dest.Kind.String())
	}
}

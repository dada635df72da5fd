package dispatch

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/abdul-hamid-achik/hitpull/packages/core/requests"
	"github.com/abdul-hamid-achik/hitpull/packages/http"
	"golang.org/x/sync/errgroup"
)

// Result pairs a descriptor with the response it produced.
type Result struct {
	Descriptor *requests.Descriptor
	Response   *http.Response
}

// Event describes one settled transport call.
type Event struct {
	Descriptor *requests.Descriptor
	Host       string
	StatusCode int
	Duration   time.Duration
	Err        error
}

// Observer is notified after every transport call, successful or not.
// Observe may be called from several goroutines at once.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

type Dispatcher struct {
	transport http.Transport
	observers []Observer
}

type Option func(*Dispatcher)

// WithObserver registers an observer for transport events.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		if o != nil {
			d.observers = append(d.observers, o)
		}
	}
}

func New(transport http.Transport, opts ...Option) *Dispatcher {
	d := &Dispatcher{transport: transport}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends every descriptor and returns results in descriptor order.
// The first failure is returned as soon as it happens; calls still in flight
// finish in the background and their results are discarded.
func (d *Dispatcher) Dispatch(ctx context.Context, descs []*requests.Descriptor) ([]Result, error) {
	results := make([]Result, len(descs))
	failed := make(chan error, 1)

	var g errgroup.Group
	for i, desc := range descs {
		i, desc := i, desc
		g.Go(func() error {
			resp, err := d.send(ctx, desc)
			if err != nil {
				select {
				case failed <- err:
				default:
				}
				return err
			}
			results[i] = Result{Descriptor: desc, Response: resp}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-failed:
		return nil, err
	case err := <-done:
		if err != nil {
			return nil, err
		}
		return results, nil
	}
}

func (d *Dispatcher) send(ctx context.Context, desc *requests.Descriptor) (*http.Response, error) {
	start := time.Now()
	resp, err := d.transport.Do(ctx, desc.Request())

	event := Event{Descriptor: desc, Host: hostOf(desc.URL), Duration: time.Since(start)}
	if resp != nil {
		event.StatusCode = resp.StatusCode
		if resp.Duration > 0 {
			event.Duration = resp.Duration
		}
	}

	switch {
	case err != nil:
		err = fmt.Errorf("%s %s: %w", desc.Method, desc.URL, err)
	case !resp.IsAccepted():
		err = requests.HTTPError(desc.URL, resp.StatusCode, resp.Body)
	}
	event.Err = err
	d.notify(event)

	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (d *Dispatcher) notify(e Event) {
	for _, o := range d.observers {
		o.Observe(e)
	}
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Host == "" {
		return u.Scheme
	}
	return u.Host
}

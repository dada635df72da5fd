package requests

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitpull/packages/core/inject"
	"github.com/google/uuid"
)

// DefaultUserAgent is sent when a spec does not set its own User-Agent.
const DefaultUserAgent = "hitpull"

var (
	// ValidMethods lists the accepted request methods.
	ValidMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}
	// SupportedSchemes lists the URL schemes accepted without WithFileScheme.
	SupportedSchemes = []string{"http", "https"}
)

// ErrorSink receives normalization errors. Normalization continues with the
// next spec or parameter set after reporting.
type ErrorSink func(error)

// Normalizer expands specs into descriptors.
type Normalizer struct {
	injector  *inject.Injector
	userAgent string
	allowFile bool
	newID     func() string
}

type NormalizerOption func(*Normalizer)

func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		injector:  inject.New(),
		userAgent: DefaultUserAgent,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// WithUserAgent sets the User-Agent added to requests that lack one
func WithUserAgent(ua string) NormalizerOption {
	return func(n *Normalizer) {
		if ua != "" {
			n.userAgent = ua
		}
	}
}

// WithFileScheme accepts file:// URLs for GET requests
func WithFileScheme(allow bool) NormalizerOption {
	return func(n *Normalizer) {
		n.allowFile = allow
	}
}

// WithInjector sets the injector used for URL and destination templates
func WithInjector(in *inject.Injector) NormalizerOption {
	return func(n *Normalizer) {
		n.injector = in
	}
}

// NormalizeAll normalizes every spec and numbers the resulting descriptors in
// generation order.
func (n *Normalizer) NormalizeAll(specs []Spec, sink ErrorSink) []*Descriptor {
	var all []*Descriptor
	for _, spec := range specs {
		all = append(all, n.normalize(spec, sink)...)
	}
	for i, d := range all {
		d.Index = i
	}
	return all
}

// Normalize expands one spec into one descriptor per parameter set.
func (n *Normalizer) Normalize(spec Spec, sink ErrorSink) []*Descriptor {
	return n.NormalizeAll([]Spec{spec}, sink)
}

func (n *Normalizer) normalize(spec Spec, sink ErrorSink) []*Descriptor {
	if sink == nil {
		sink = func(error) {}
	}

	scheme, err := schemeOf(spec.URL)
	if err != nil {
		sink(InvalidURL(spec.URL, err))
		return nil
	}
	if !n.schemeSupported(scheme) {
		sink(UnsupportedProtocol(scheme))
		return nil
	}

	method, headers, timeout, err := n.resolveOptions(spec, scheme)
	if err != nil {
		sink(err)
		return nil
	}

	dest, err := resolveOut(spec)
	if err != nil {
		sink(err)
		return nil
	}

	var body string
	if spec.Body != "" && method != http.MethodGet {
		body = spec.Body
		if spec.jsonBody && !hasHeader(headers, "Content-Type") {
			headers["Content-Type"] = "application/json"
		}
	}

	paramSets := spec.Params
	if len(paramSets) == 0 {
		paramSets = []inject.Params{{}}
	}

	descriptors := make([]*Descriptor, 0, len(paramSets))
	for _, params := range paramSets {
		if params == nil {
			params = inject.Params{}
		}

		resolved := n.injector.Inject(spec.URL, params)
		if err := validateResolvedURL(resolved); err != nil {
			sink(InvalidURL(resolved, err))
			continue
		}

		target := n.injectDestination(dest, params)
		if target.Path != "" && !filepath.IsLocal(filepath.FromSlash(target.Path)) {
			sink(InvalidOutConfig(resolved, fmt.Sprintf("path %q leaves the build directory", target.Path)))
			continue
		}

		descriptors = append(descriptors, &Descriptor{
			ID:          n.newID(),
			Method:      method,
			URL:         resolved,
			Headers:     copyHeaders(headers),
			Body:        body,
			Timeout:     timeout,
			Params:      params,
			Destination: target,
		})
	}

	return descriptors
}

func (n *Normalizer) schemeSupported(scheme string) bool {
	for _, s := range SupportedSchemes {
		if s == scheme {
			return true
		}
	}
	return n.allowFile && scheme == "file"
}

func (n *Normalizer) resolveOptions(spec Spec, scheme string) (string, map[string]string, time.Duration, error) {
	method := http.MethodGet
	headers := make(map[string]string)
	var timeout time.Duration

	if opts := spec.Options; opts != nil {
		if opts.Method != "" {
			method = strings.ToUpper(opts.Method)
			if !isValidMethod(method) {
				return "", nil, 0, InvalidHTTPMethod(opts.Method)
			}
		}
		for k, v := range opts.Headers {
			headers[k] = v
		}
		if opts.Auth != "" && !hasHeader(headers, "Authorization") {
			headers["Authorization"] = "Basic " + base64.StdEncoding.EncodeToString([]byte(opts.Auth))
		}
		if opts.Timeout != "" {
			d, err := time.ParseDuration(opts.Timeout)
			if err != nil {
				return "", nil, 0, fmt.Errorf("invalid timeout %q for %q: %w", opts.Timeout, spec.URL, err)
			}
			timeout = d
		}
	}

	if scheme == "file" && method != http.MethodGet {
		return "", nil, 0, InvalidHTTPMethod(method)
	}

	if !hasHeader(headers, "User-Agent") {
		headers["User-Agent"] = n.userAgent
	}

	return method, headers, timeout, nil
}

// resolveOut validates the out configuration and returns its destination
// with templates still unresolved.
func resolveOut(spec Spec) (Destination, error) {
	if spec.shorthand {
		return Destination{Kind: DestinationLog}, nil
	}

	out := spec.Out
	switch {
	case out == nil:
		return Destination{}, InvalidOutConfig(spec.URL, "out is required")
	case out.Call != nil:
		return Destination{Kind: DestinationCallback, Call: out.Call, JSON: out.JSON, Select: out.Select}, nil
	case out.invalid != "":
		return Destination{}, InvalidOutConfig(spec.URL, "expected a mapping, got "+out.invalid)
	case out.Key == "" && out.Path == "":
		return Destination{}, InvalidOutConfig(spec.URL, "one of key or path is required")
	}

	dest := Destination{
		Key:    out.Key,
		Path:   out.Path,
		JSON:   out.JSON,
		Select: out.Select,
	}
	switch {
	case dest.Path == "":
		dest.Kind = DestinationMetadata
	case dest.Key == "" || dest.Key == ContentsKey:
		dest.Kind = DestinationContents
		dest.Key = ContentsKey
	default:
		dest.Kind = DestinationField
	}
	return dest, nil
}

func (n *Normalizer) injectDestination(dest Destination, params inject.Params) Destination {
	switch dest.Kind {
	case DestinationMetadata, DestinationField:
		dest.Key = n.injector.Inject(dest.Key, params)
	}
	if dest.Path != "" {
		dest.Path = strings.TrimPrefix(n.injector.Inject(dest.Path, params), "/")
	}
	return dest
}

// schemeOf returns the lower-cased scheme of a URL template without parsing
// the rest, so templates with placeholders in the host still qualify.
func schemeOf(raw string) (string, error) {
	i := strings.Index(raw, ":")
	if i <= 0 {
		return "", errors.New("URL must be absolute")
	}
	scheme := raw[:i]
	for j, c := range scheme {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case j > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return "", errors.New("URL must be absolute")
		}
	}
	return strings.ToLower(scheme), nil
}

func validateResolvedURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return errors.New("URL must have a host")
		}
	case "file":
		if u.Path == "" {
			return errors.New("file URL must have a path")
		}
	}
	return nil
}

func isValidMethod(method string) bool {
	for _, m := range ValidMethods {
		if m == method {
			return true
		}
	}
	return false
}

// hasHeader reports whether headers contains name, ignoring case.
func hasHeader(headers map[string]string, name string) bool {
	for k := range headers {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

func copyHeaders(h map[string]string) map[string]string {
	cp := make(map[string]string, len(h))
	for k, v := range h {
		cp[k] = v
	}
	return cp
}

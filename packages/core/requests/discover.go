package requests

import (
	"fmt"

	"github.com/abdul-hamid-achik/hitpull/packages/store"
	"github.com/rs/zerolog/log"
)

// RequestField is the front matter field that declares an implicit request.
const RequestField = "request"

// Discover returns one spec per artifact carrying a request field, in sorted
// path order. Each spec targets its own artifact; the key defaults to the
// artifact contents unless the request declares out.key. Only string and
// mapping values declare a request; any other value is skipped.
func Discover(st *store.Store, sink ErrorSink) []Spec {
	if sink == nil {
		sink = func(error) {}
	}

	var specs []Spec
	for _, path := range st.Paths() {
		raw, ok := st.Files[path].Field(RequestField)
		if !ok || raw == nil {
			continue
		}
		switch raw.(type) {
		case string, map[string]any:
		default:
			log.Debug().Str("path", path).Str("type", fmt.Sprintf("%T", raw)).Msg("ignoring non-request field")
			continue
		}

		spec, err := SpecFromValue(raw)
		if err != nil {
			sink(fmt.Errorf("implicit request in %s: %w", path, err))
			continue
		}

		out := &Out{Path: path, Key: ContentsKey}
		if spec.Out != nil {
			if spec.Out.Key != "" {
				out.Key = spec.Out.Key
			}
			out.JSON = spec.Out.JSON
			out.Select = spec.Out.Select
		}
		spec.Out = out
		spec.shorthand = false

		specs = append(specs, spec)
	}
	return specs
}

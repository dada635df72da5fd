package requests

import (
	"time"

	"github.com/abdul-hamid-achik/hitpull/packages/core/inject"
	"github.com/abdul-hamid-achik/hitpull/packages/http"
)

// ContentsKey is the destination key that targets an artifact's contents.
const ContentsKey = "contents"

// DestinationKind tags the variant of a Destination.
type DestinationKind int

const (
	// DestinationLog writes the response to the debug log only.
	DestinationLog DestinationKind = iota
	// DestinationMetadata deep-merges into global metadata at Key.
	DestinationMetadata
	// DestinationContents appends to the contents of the artifact at Path.
	DestinationContents
	// DestinationField deep-merges into the fields of the artifact at Path.
	DestinationField
	// DestinationCallback hands the response to Call.
	DestinationCallback
)

func (k DestinationKind) String() string {
	switch k {
	case DestinationLog:
		return "log"
	case DestinationMetadata:
		return "metadata"
	case DestinationContents:
		return "contents"
	case DestinationField:
		return "field"
	case DestinationCallback:
		return "callback"
	default:
		return "unknown"
	}
}

// Destination is a resolved output target.
type Destination struct {
	Kind   DestinationKind
	Key    string
	Path   string
	JSON   bool
	Select string
	Call   Callback
}

func (d Destination) String() string {
	switch d.Kind {
	case DestinationMetadata:
		return "metadata:" + d.Key
	case DestinationContents:
		return d.Path
	case DestinationField:
		return d.Path + "#" + d.Key
	default:
		return d.Kind.String()
	}
}

// Descriptor is one fully resolved request. It is not modified after
// normalization.
type Descriptor struct {
	ID          string
	Index       int
	Method      string
	URL         string
	Headers     map[string]string
	Body        string
	Timeout     time.Duration
	Params      inject.Params
	Destination Destination
}

// Request builds the transport request for d.
func (d *Descriptor) Request() *http.Request {
	return http.NewRequest(d.Method, d.URL).
		SetID(d.ID).
		SetHeaders(d.Headers).
		SetBody(d.Body).
		SetTimeout(d.Timeout)
}

// WithoutDestination returns a copy of d with its destination cleared, as
// handed to callbacks.
func (d *Descriptor) WithoutDestination() *Descriptor {
	cp := *d
	cp.Destination = Destination{}
	return &cp
}

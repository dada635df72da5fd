package requests

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies a class of batch failure.
type Kind string

const (
	KindUnsupportedProtocol Kind = "unsupported_protocol"
	KindInvalidHTTPMethod   Kind = "invalid_http_method"
	KindInvalidOutConfig    Kind = "invalid_outconfig"
	KindHTTPError           Kind = "http_error"
	KindInvalidJSON         Kind = "invalid_json"
	KindInvalidURL          Kind = "invalid_url"
)

// Sentinel errors matched by errors.Is against any *Error of the same kind.
var (
	ErrUnsupportedProtocol = errors.New("unsupported protocol")
	ErrInvalidHTTPMethod   = errors.New("invalid http method")
	ErrInvalidOutConfig    = errors.New("invalid out configuration")
	ErrHTTPError           = errors.New("http error")
	ErrInvalidJSON         = errors.New("invalid json")
	ErrInvalidURL          = errors.New("invalid url")
)

var sentinels = map[Kind]error{
	KindUnsupportedProtocol: ErrUnsupportedProtocol,
	KindInvalidHTTPMethod:   ErrInvalidHTTPMethod,
	KindInvalidOutConfig:    ErrInvalidOutConfig,
	KindHTTPError:           ErrHTTPError,
	KindInvalidJSON:         ErrInvalidJSON,
	KindInvalidURL:          ErrInvalidURL,
}

// Error is a batch failure with a machine-readable kind.
type Error struct {
	Kind       Kind
	Message    string
	URL        string
	StatusCode int
	Body       []byte
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error of e's kind.
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

func UnsupportedProtocol(scheme string) *Error {
	return &Error{
		Kind:    KindUnsupportedProtocol,
		Message: fmt.Sprintf("unsupported protocol %q, must be one of %s", scheme, strings.Join(SupportedSchemes, ", ")),
	}
}

func InvalidHTTPMethod(method string) *Error {
	return &Error{
		Kind:    KindInvalidHTTPMethod,
		Message: fmt.Sprintf("invalid HTTP request method %q, must be one of %s", method, strings.Join(ValidMethods, ", ")),
	}
}

func InvalidOutConfig(url, reason string) *Error {
	return &Error{
		Kind:    KindInvalidOutConfig,
		Message: fmt.Sprintf("invalid 'out' configuration for %q: %s", url, reason),
		URL:     url,
	}
}

// HTTPError reports a response status outside the accepted 200-399 range.
func HTTPError(url string, status int, body []byte) *Error {
	msg := fmt.Sprintf("HTTP %d for %q", status, url)
	if len(body) > 0 {
		msg += ": " + truncate(string(body), 200)
	}
	return &Error{
		Kind:       KindHTTPError,
		Message:    msg,
		URL:        url,
		StatusCode: status,
		Body:       body,
	}
}

func InvalidJSON(url string, err error) *Error {
	return &Error{
		Kind:    KindInvalidJSON,
		Message: fmt.Sprintf("invalid JSON response for request %q", url),
		URL:     url,
		Err:     err,
	}
}

func InvalidURL(url string, err error) *Error {
	return &Error{
		Kind:    KindInvalidURL,
		Message: fmt.Sprintf("invalid URL %q", url),
		URL:     url,
		Err:     err,
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

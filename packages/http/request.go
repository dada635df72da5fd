package http

import (
	"net/http"
	"strings"
	"time"
)

// Request is a single call handed to a Transport. ID ties the call back to
// the descriptor it was built from.
type Request struct {
	ID      string
	Method  string
	URL     string
	Headers map[string]string
	Body    string
	Timeout time.Duration
}

// NewRequest returns a request with the method upper-cased and GET as the
// default.
func NewRequest(method, requestURL string) *Request {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}
	return &Request{
		Method:  method,
		URL:     requestURL,
		Headers: make(map[string]string),
	}
}

func (r *Request) SetID(id string) *Request {
	r.ID = id
	return r
}

// SetHeaders copies every entry of headers onto r.
func (r *Request) SetHeaders(headers map[string]string) *Request {
	for k, v := range headers {
		r.Headers[k] = v
	}
	return r
}

func (r *Request) SetBody(body string) *Request {
	r.Body = body
	return r
}

func (r *Request) SetTimeout(d time.Duration) *Request {
	r.Timeout = d
	return r
}

package http

import (
	"encoding/json"
	"strings"
	"time"
)

// Response is the fully read result of a Request. Headers keep the first
// value of each response header.
type Response struct {
	RequestID  string
	URL        string
	StatusCode int
	Status     string
	Headers    map[string]string
	Body       []byte
	Duration   time.Duration
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

func (r *Response) BodyJSON() (any, error) {
	var result any
	if err := json.Unmarshal(r.Body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Response) Header(key string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

// IsJSON reports whether the content type is application/json or a +json
// media type such as application/vnd.github+json.
func (r *Response) IsJSON() bool {
	ct := strings.ToLower(r.ContentType())
	if i := strings.IndexByte(ct, ';'); i != -1 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(ct)
	return ct == "application/json" || strings.HasSuffix(ct, "+json")
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

// IsAccepted reports whether the status is in the 2xx-3xx range a batch accepts.
func (r *Response) IsAccepted() bool {
	return r.IsSuccess() || r.IsRedirect()
}

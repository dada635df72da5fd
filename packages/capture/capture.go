package capture

import (
	"fmt"

	"github.com/abdul-hamid-achik/hitpull/packages/http"
	"github.com/tidwall/gjson"
)

// Selection is a value extracted from a response body. Raw is its JSON text.
type Selection struct {
	Value any
	Raw   string
}

type Extractor struct {
	response *http.Response
	bodyJSON gjson.Result
	isJSON   bool
}

// NewExtractor prepares resp for extraction. The body is treated as JSON
// when asJSON is set or the content type says so.
func NewExtractor(resp *http.Response, asJSON bool) *Extractor {
	e := &Extractor{
		response: resp,
		isJSON:   asJSON || resp.IsJSON(),
	}
	if e.isJSON {
		e.bodyJSON = gjson.ParseBytes(resp.Body)
	}
	return e
}

// Select returns the value at path in the JSON body. An empty path returns
// the whole body.
func (e *Extractor) Select(path string) (Selection, error) {
	if !e.isJSON {
		if path == "" {
			return Selection{Value: e.response.BodyString(), Raw: e.response.BodyString()}, nil
		}
		return Selection{}, fmt.Errorf("cannot select %q from non-JSON response", path)
	}

	if path == "" {
		return Selection{Value: e.bodyJSON.Value(), Raw: e.bodyJSON.Raw}, nil
	}

	result := e.bodyJSON.Get(path)
	if !result.Exists() {
		return Selection{}, fmt.Errorf("path %q not found in response", path)
	}
	return Selection{Value: result.Value(), Raw: result.Raw}, nil
}

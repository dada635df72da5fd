// Package capture extracts values from HTTP responses before they are routed.
//
// A selection is a gjson path applied to a JSON response body, such as
// data.repository.object.text, letting a request keep only part of a
// payload. Header values and the status code can be read as well.
package capture

// Package http provides the transport hitpull dispatches requests through.
//
// It wraps the standard library's http package with additional features:
//   - Configurable timeouts, per client and per request
//   - Redirect handling
//   - Default headers, proxy and TLS verification settings
//   - Read-only file:// requests for local fixtures
//   - Response helpers for content type and JSON detection
package http

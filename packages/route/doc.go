// Package route writes dispatched responses into the build store.
//
// Each descriptor's destination decides where its payload goes:
//   - metadata: deep-merged into global metadata at a dotted key
//   - contents: appended to an artifact's contents
//   - field: deep-merged into an artifact's fields at a dotted key
//   - callback: handed to a caller-supplied function
//   - log: written to the debug log, never to the store
//
// JSON payloads are parsed before anything is written, so a malformed
// response leaves the store untouched.
package route

// Package batch runs one request batch against a store.
//
// A batch collects the configured specs and the implicit requests declared
// in artifact front matter, normalizes them into descriptors, dispatches
// them concurrently and routes the responses into the store. The batch
// either succeeds as a whole or returns the first error; a failed batch
// never writes to the store.
package batch

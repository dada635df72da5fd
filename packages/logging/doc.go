// Package logging configures structured logging with zerolog.
//
// Setup installs the process-wide logger; NewLogger derives a logger tagged
// with a component name. Batch logs carry batch_id, url, status and
// duration fields.
package logging

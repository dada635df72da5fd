// Package output renders batch reports.
//
// Supported output formats:
//   - Console: colored terminal output
//   - JSON: one machine-readable document per batch
//
// Both implement Formatter.
package output

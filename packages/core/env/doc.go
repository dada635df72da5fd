// Package env loads .env files and expands ${VAR} references.
//
// Expansion happens on raw config text before it is parsed, so any value in
// hitpull.yaml may reference the environment. Variables from .env files are
// exported to the process environment only when not already set.
package env

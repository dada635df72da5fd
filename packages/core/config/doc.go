// Package config loads hitpull.yaml.
//
// A config file names the source and destination directories, transport
// defaults and the explicit request list. ${VAR} references are expanded
// from the environment before parsing, and the parsed document is checked
// against an embedded JSON schema before it is decoded.
package config

// Package store holds the build tree that request results are routed into.
//
// A Store maps artifact paths to artifacts (contents, mode and front matter
// fields) and carries a separate nested metadata map. It can be loaded from a
// source directory, where YAML front matter becomes artifact fields, and
// written back out to a destination directory.
package store

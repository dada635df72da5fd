package store

import (
	"os"
	"sort"
)

// DefaultMode is the permission mode given to artifacts created by routing.
const DefaultMode os.FileMode = 0o664

// Artifact is one file in the build tree.
type Artifact struct {
	Contents []byte
	Mode     os.FileMode
	Fields   map[string]any
}

// NewArtifact returns an empty artifact with DefaultMode.
func NewArtifact() *Artifact {
	return &Artifact{
		Mode:   DefaultMode,
		Fields: make(map[string]any),
	}
}

// Field returns a top-level front matter field.
func (a *Artifact) Field(name string) (any, bool) {
	if a.Fields == nil {
		return nil, false
	}
	v, ok := a.Fields[name]
	return v, ok
}

// Store is the mutable build tree. It is not safe for concurrent writes;
// routing mutates it only after all requests of a batch have settled.
type Store struct {
	Files    map[string]*Artifact
	Metadata map[string]any
}

func New() *Store {
	return &Store{
		Files:    make(map[string]*Artifact),
		Metadata: make(map[string]any),
	}
}

// Get returns the artifact at path.
func (s *Store) Get(path string) (*Artifact, bool) {
	a, ok := s.Files[path]
	return a, ok
}

// Ensure returns the artifact at path, creating it with DefaultMode when absent.
func (s *Store) Ensure(path string) *Artifact {
	if s.Files == nil {
		s.Files = make(map[string]*Artifact)
	}
	a, ok := s.Files[path]
	if !ok {
		a = NewArtifact()
		s.Files[path] = a
	}
	if a.Fields == nil {
		a.Fields = make(map[string]any)
	}
	return a
}

// Paths returns all artifact paths in sorted order.
func (s *Store) Paths() []string {
	paths := make([]string, 0, len(s.Files))
	for p := range s.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Meta returns the metadata map, allocating it when nil.
func (s *Store) Meta() map[string]any {
	if s.Metadata == nil {
		s.Metadata = make(map[string]any)
	}
	return s.Metadata
}

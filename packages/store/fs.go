package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var (
	frontMatterDelim = []byte("---")
	openDelim        = []byte("---\n")
	closeDelim       = []byte("\n---\n")
)

// LoadDir reads every regular file under dir into a new Store. Paths are
// slash-separated and relative to dir.
func LoadDir(dir string) (*Store, error) {
	st := New()

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", rel, err)
		}

		fields, contents, err := ParseFrontMatter(data)
		if err != nil {
			return fmt.Errorf("parsing front matter of %s: %w", rel, err)
		}

		st.Files[filepath.ToSlash(rel)] = &Artifact{
			Contents: contents,
			Mode:     info.Mode().Perm(),
			Fields:   fields,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return st, nil
}

// ParseFrontMatter splits a leading YAML block delimited by --- lines from
// the body. Data without front matter is returned as-is with empty fields.
func ParseFrontMatter(data []byte) (map[string]any, []byte, error) {
	fields := make(map[string]any)

	text := bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(text, openDelim) {
		return fields, data, nil
	}
	rest := text[len(openDelim):]

	var block, body []byte
	switch {
	case bytes.HasPrefix(rest, openDelim):
		body = rest[len(openDelim):]
	case bytes.Equal(rest, frontMatterDelim):
		body = nil
	default:
		end := bytes.Index(rest, closeDelim)
		switch {
		case end != -1:
			block = rest[:end]
			body = rest[end+len(closeDelim):]
		case bytes.HasSuffix(rest, closeDelim[:len(closeDelim)-1]):
			block = rest[:len(rest)-len(closeDelim)+1]
		default:
			return fields, data, nil
		}
	}

	if len(bytes.TrimSpace(block)) > 0 {
		if err := yaml.Unmarshal(block, &fields); err != nil {
			return nil, nil, err
		}
		if fields == nil {
			fields = make(map[string]any)
		}
	}

	return fields, body, nil
}

// WriteDir writes the contents of every artifact under dir, creating parent
// directories as needed. Artifact paths must stay inside dir.
func WriteDir(dir string, st *Store) error {
	for _, p := range st.Paths() {
		if !filepath.IsLocal(filepath.FromSlash(p)) {
			return fmt.Errorf("artifact path %q is outside %s", p, dir)
		}
	}

	for _, p := range st.Paths() {
		a := st.Files[p]
		target := filepath.Join(dir, filepath.FromSlash(p))

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", p, err)
		}

		mode := a.Mode
		if mode == 0 {
			mode = DefaultMode
		}
		if err := os.WriteFile(target, a.Contents, mode); err != nil {
			return fmt.Errorf("writing %s: %w", p, err)
		}
	}
	return nil
}

// WriteMetadata writes the store metadata as indented JSON.
func WriteMetadata(path string, st *Store) error {
	data, err := json.MarshalIndent(st.Meta(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

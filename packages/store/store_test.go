package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureCreatesWithDefaultMode(t *testing.T) {
	st := New()

	a := st.Ensure("nested/page.md")

	assert.Equal(t, DefaultMode, a.Mode)
	assert.NotNil(t, a.Fields)
	assert.Same(t, a, st.Ensure("nested/page.md"))
}

func TestEnsureKeepsExisting(t *testing.T) {
	st := New()
	st.Files["a.md"] = &Artifact{Contents: []byte("A"), Mode: 0o600}

	a := st.Ensure("a.md")

	assert.Equal(t, "A", string(a.Contents))
	assert.Equal(t, os.FileMode(0o600), a.Mode)
	assert.NotNil(t, a.Fields)
}

func TestPathsSorted(t *testing.T) {
	st := New()
	st.Ensure("b.md")
	st.Ensure("a.md")
	st.Ensure("c/d.md")

	assert.Equal(t, []string{"a.md", "b.md", "c/d.md"}, st.Paths())
}

func TestParseFrontMatter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		fields   map[string]any
		contents string
	}{
		{
			name:     "no front matter",
			input:    "# Title\n",
			fields:   map[string]any{},
			contents: "# Title\n",
		},
		{
			name:     "front matter and body",
			input:    "---\nlayout: default.njk\nrequest: https://example.com\n---\nbody\n",
			fields:   map[string]any{"layout": "default.njk", "request": "https://example.com"},
			contents: "body\n",
		},
		{
			name:     "empty front matter",
			input:    "---\n---\nbody",
			fields:   map[string]any{},
			contents: "body",
		},
		{
			name:     "front matter without body",
			input:    "---\ntitle: x\n---",
			fields:   map[string]any{"title": "x"},
			contents: "",
		},
		{
			name:     "unterminated block is body",
			input:    "---\ntitle: x\n",
			fields:   map[string]any{},
			contents: "---\ntitle: x\n",
		},
		{
			name:  "nested request object",
			input: "---\nrequest:\n  url: https://example.com/:id\n  out:\n    key: data\n---\n",
			fields: map[string]any{
				"request": map[string]any{
					"url": "https://example.com/:id",
					"out": map[string]any{"key": "data"},
				},
			},
			contents: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, contents, err := ParseFrontMatter([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.fields, fields)
			assert.Equal(t, tt.contents, string(contents))
		})
	}
}

func TestParseFrontMatterInvalidYAML(t *testing.T) {
	_, _, err := ParseFrontMatter([]byte("---\n: : :\n  - [\n---\n"))
	assert.Error(t, err)
}

func TestLoadAndWriteDir(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "index.md"), []byte("---\nlayout: home\n---\nhello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "plain.txt"), []byte("plain"), 0o600))

	st, err := LoadDir(src)
	require.NoError(t, err)
	require.Len(t, st.Files, 2)

	index := st.Files["index.md"]
	require.NotNil(t, index)
	assert.Equal(t, "hello", string(index.Contents))
	assert.Equal(t, "home", index.Fields["layout"])
	assert.Equal(t, os.FileMode(0o600), st.Files["sub/plain.txt"].Mode)

	st.Ensure("generated/new.css").Contents = []byte("body{}")

	dst := t.TempDir()
	require.NoError(t, WriteDir(dst, st))

	data, err := os.ReadFile(filepath.Join(dst, "index.md"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	data, err = os.ReadFile(filepath.Join(dst, "generated", "new.css"))
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(data))
}

func TestWriteDirRejectsEscapingPaths(t *testing.T) {
	st := New()
	st.Ensure("ok.txt").Contents = []byte("ok")
	st.Ensure("../outside.txt").Contents = []byte("x")

	dst := filepath.Join(t.TempDir(), "build")
	err := WriteDir(dst, st)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "../outside.txt")
	_, statErr := os.Stat(filepath.Join(dst, "ok.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteMetadata(t *testing.T) {
	st := New()
	st.Meta()["site"] = map[string]any{"title": "x"}

	path := filepath.Join(t.TempDir(), "metadata.json")
	require.NoError(t, WriteMetadata(path, st))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, map[string]any{"site": map[string]any{"title": "x"}}, decoded)
}

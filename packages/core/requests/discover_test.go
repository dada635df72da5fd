package requests

import (
	"testing"

	"github.com/abdul-hamid-achik/hitpull/packages/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	st := store.New()
	st.Files["b.md"] = &store.Artifact{Fields: map[string]any{"request": "https://example.com/b"}}
	st.Files["a.md"] = &store.Artifact{Fields: map[string]any{
		"request": map[string]any{
			"url": "https://example.com/a",
			"out": map[string]any{"key": "data", "json": true},
		},
	}}
	st.Files["plain.md"] = &store.Artifact{Fields: map[string]any{"layout": "x"}}
	st.Files["number.md"] = &store.Artifact{Fields: map[string]any{"request": 3}}
	st.Files["flag.md"] = &store.Artifact{Fields: map[string]any{"request": false}}
	st.Files["bad.md"] = &store.Artifact{Fields: map[string]any{"request": map[string]any{"url": []any{"x"}}}}

	var errs []error
	specs := Discover(st, func(err error) { errs = append(errs, err) })

	require.Len(t, specs, 2)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "bad.md")

	assert.Equal(t, "https://example.com/a", specs[0].URL)
	assert.Equal(t, "a.md", specs[0].Out.Path)
	assert.Equal(t, "data", specs[0].Out.Key)
	assert.True(t, specs[0].Out.JSON)

	assert.Equal(t, "https://example.com/b", specs[1].URL)
	assert.Equal(t, "b.md", specs[1].Out.Path)
	assert.Equal(t, ContentsKey, specs[1].Out.Key)

	descriptors := NewNormalizer().NormalizeAll(specs, nil)
	require.Len(t, descriptors, 2)
	assert.Equal(t, DestinationField, descriptors[0].Destination.Kind)
	assert.Equal(t, DestinationContents, descriptors[1].Destination.Kind)
	assert.Equal(t, "b.md", descriptors[1].Destination.Path)
}

package route

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/abdul-hamid-achik/hitpull/packages/core/requests"
	"github.com/abdul-hamid-achik/hitpull/packages/dispatch"
	"github.com/abdul-hamid-achik/hitpull/packages/http"
	"github.com/abdul-hamid-achik/hitpull/packages/store"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(index int, dest requests.Destination, contentType, body string) dispatch.Result {
	headers := map[string]string{}
	if contentType != "" {
		headers["Content-Type"] = contentType
	}
	return dispatch.Result{
		Descriptor: &requests.Descriptor{
			Index:       index,
			Method:      "GET",
			URL:         "https://api.example.com/item",
			Destination: dest,
		},
		Response: &http.Response{
			StatusCode: 200,
			Status:     "200 OK",
			Headers:    headers,
			Body:       []byte(body),
		},
	}
}

func TestRouteMetadataPreservesSiblings(t *testing.T) {
	st := store.New()
	st.Metadata["a"] = map[string]any{"c": float64(1)}

	r := NewRouter(st)
	err := r.Route(context.Background(), result(0,
		requests.Destination{Kind: requests.DestinationMetadata, Key: "a.b"},
		"text/plain", "x"))
	require.NoError(t, err)

	want := map[string]any{"a": map[string]any{"b": "x", "c": float64(1)}}
	if diff := cmp.Diff(want, st.Metadata); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestRouteMetadataJSON(t *testing.T) {
	st := store.New()
	r := NewRouter(st)

	err := r.Route(context.Background(), result(0,
		requests.Destination{Kind: requests.DestinationMetadata, Key: "repo"},
		"application/json; charset=utf-8", `{"name":"hitpull","stars":3}`))
	require.NoError(t, err)

	want := map[string]any{"repo": map[string]any{"name": "hitpull", "stars": float64(3)}}
	if diff := cmp.Diff(want, st.Metadata); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestRouteForcedJSONAndSelect(t *testing.T) {
	st := store.New()
	r := NewRouter(st)

	err := r.Route(context.Background(), result(0,
		requests.Destination{Kind: requests.DestinationMetadata, Key: "owner", JSON: true, Select: "owner.login"},
		"text/plain", `{"owner":{"login":"octo"}}`))
	require.NoError(t, err)
	assert.Equal(t, "octo", st.Metadata["owner"])
}

func TestRouteContentsAppend(t *testing.T) {
	st := store.New()
	st.Files["index.html"] = &store.Artifact{Contents: []byte("A"), Mode: 0o600, Fields: map[string]any{"layout": "x"}}

	r := NewRouter(st)
	err := r.Route(context.Background(), result(0,
		requests.Destination{Kind: requests.DestinationContents, Key: requests.ContentsKey, Path: "index.html"},
		"text/plain", "B"))
	require.NoError(t, err)

	a := st.Files["index.html"]
	assert.Equal(t, "AB", string(a.Contents))
	assert.Equal(t, "x", a.Fields["layout"])
	assert.EqualValues(t, 0o600, a.Mode)
}

func TestRouteContentsJSONPayloads(t *testing.T) {
	tests := []struct {
		name   string
		sel    string
		body   string
		expect string
	}{
		{name: "selected string", sel: "path", body: `{"path":"/repos/x"}`, expect: "/repos/x"},
		{name: "string body", body: `"hello"`, expect: "hello"},
		{name: "selected object", sel: "owner", body: `{"owner":{"login":"octo"}}`, expect: `{"login":"octo"}`},
		{name: "selected number", sel: "stars", body: `{"stars":3}`, expect: "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.New()
			r := NewRouter(st)

			err := r.Route(context.Background(), result(0,
				requests.Destination{Kind: requests.DestinationContents, Key: requests.ContentsKey, Path: "s.txt", Select: tt.sel},
				"application/json", tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.expect, string(st.Files["s.txt"].Contents))
		})
	}
}

func TestRouteContentsCreatesArtifact(t *testing.T) {
	st := store.New()
	r := NewRouter(st)

	err := r.Route(context.Background(), result(0,
		requests.Destination{Kind: requests.DestinationContents, Key: requests.ContentsKey, Path: "data/users.json"},
		"application/json", `[{"id":1}]`))
	require.NoError(t, err)

	a, ok := st.Get("data/users.json")
	require.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, string(a.Contents))
	assert.Equal(t, store.DefaultMode, a.Mode)
}

func TestRouteFieldDeepMerge(t *testing.T) {
	st := store.New()
	st.Files["post.md"] = &store.Artifact{
		Contents: []byte("body"),
		Mode:     store.DefaultMode,
		Fields:   map[string]any{"title": "Post", "stats": map[string]any{"views": float64(1)}},
	}

	r := NewRouter(st)
	err := r.Route(context.Background(), result(0,
		requests.Destination{Kind: requests.DestinationField, Key: "stats", Path: "post.md"},
		"application/json", `{"likes":2}`))
	require.NoError(t, err)

	want := map[string]any{
		"title": "Post",
		"stats": map[string]any{"views": float64(1), "likes": float64(2)},
	}
	if diff := cmp.Diff(want, st.Files["post.md"].Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "body", string(st.Files["post.md"].Contents))
}

func TestRouteLogLeavesStoreUnchanged(t *testing.T) {
	st := store.New()
	st.Files["a.txt"] = &store.Artifact{Contents: []byte("a"), Mode: store.DefaultMode, Fields: map[string]any{}}
	before := cloneStore(st)

	var buf bytes.Buffer
	r := NewRouter(st, WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
	err := r.Route(context.Background(), result(0,
		requests.Destination{Kind: requests.DestinationLog},
		"application/json", `{"ok":true}`))
	require.NoError(t, err)

	if diff := cmp.Diff(before, st); diff != "" {
		t.Errorf("store changed (-want +got):\n%s", diff)
	}
	assert.Contains(t, buf.String(), `"status":200`)
	assert.Contains(t, buf.String(), `"ok":true`)
}

func TestRouteCallback(t *testing.T) {
	st := store.New()
	var got *requests.Descriptor
	var gotBody string

	dest := requests.Destination{
		Kind: requests.DestinationCallback,
		Call: func(ctx context.Context, resp *http.Response, d *requests.Descriptor, s *store.Store) error {
			got = d
			gotBody = resp.BodyString()
			s.Ensure("from-callback.txt").Contents = resp.Body
			return nil
		},
	}

	r := NewRouter(st)
	require.NoError(t, r.Route(context.Background(), result(0, dest, "text/plain", "hello")))

	require.NotNil(t, got)
	assert.Nil(t, got.Destination.Call)
	assert.Equal(t, "https://api.example.com/item", got.URL)
	assert.Equal(t, "hello", gotBody)
	assert.Equal(t, "hello", string(st.Files["from-callback.txt"].Contents))
}

func TestRouteCallbackError(t *testing.T) {
	boom := errors.New("boom")
	dest := requests.Destination{
		Kind: requests.DestinationCallback,
		Call: func(context.Context, *http.Response, *requests.Descriptor, *store.Store) error {
			return boom
		},
	}

	err := NewRouter(store.New()).Route(context.Background(), result(0, dest, "", "x"))
	assert.ErrorIs(t, err, boom)
}

func TestRouteInvalidJSON(t *testing.T) {
	tests := []struct {
		name   string
		dest   requests.Destination
		ct     string
		body   string
		substr string
	}{
		{
			name: "content type json",
			dest: requests.Destination{Kind: requests.DestinationMetadata, Key: "k"},
			ct:   "application/json",
			body: `{"broken":`,
		},
		{
			name: "forced json",
			dest: requests.Destination{Kind: requests.DestinationContents, Key: requests.ContentsKey, Path: "a", JSON: true},
			ct:   "text/html",
			body: "<html>",
		},
		{
			name: "missing selection",
			dest: requests.Destination{Kind: requests.DestinationMetadata, Key: "k", Select: "nope"},
			ct:   "application/json",
			body: `{"yes":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.New()
			err := NewRouter(st).Route(context.Background(), result(0, tt.dest, tt.ct, tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, requests.ErrInvalidJSON))
			assert.Contains(t, err.Error(), "https://api.example.com/item")
			assert.Empty(t, st.Files)
			assert.Empty(t, st.Metadata)
		})
	}
}

func TestRouteEmptyJSONBody(t *testing.T) {
	st := store.New()
	err := NewRouter(st).Route(context.Background(), result(0,
		requests.Destination{Kind: requests.DestinationMetadata, Key: "k"},
		"application/json", ""))
	require.NoError(t, err)
	assert.Equal(t, "", st.Metadata["k"])
}

func TestRouteAllAtomicOnInvalidJSON(t *testing.T) {
	st := store.New()
	st.Files["index.html"] = &store.Artifact{Contents: []byte("A"), Mode: store.DefaultMode, Fields: map[string]any{}}
	before := cloneStore(st)

	results := []dispatch.Result{
		result(0, requests.Destination{Kind: requests.DestinationContents, Key: requests.ContentsKey, Path: "index.html"}, "text/plain", "B"),
		result(1, requests.Destination{Kind: requests.DestinationMetadata, Key: "ok"}, "application/json", `{"a":1}`),
		result(2, requests.Destination{Kind: requests.DestinationMetadata, Key: "bad"}, "application/json", `not json`),
	}

	err := NewRouter(st).RouteAll(context.Background(), results)
	require.Error(t, err)
	assert.True(t, errors.Is(err, requests.ErrInvalidJSON))

	if diff := cmp.Diff(before, st); diff != "" {
		t.Errorf("store changed (-want +got):\n%s", diff)
	}
}

func TestRouteAllOrder(t *testing.T) {
	st := store.New()
	dest := requests.Destination{Kind: requests.DestinationContents, Key: requests.ContentsKey, Path: "out.txt"}

	// deliberately out of order
	results := []dispatch.Result{
		result(2, dest, "text/plain", "3"),
		result(0, dest, "text/plain", "1"),
		result(1, dest, "text/plain", "2"),
	}

	require.NoError(t, NewRouter(st).RouteAll(context.Background(), results))
	assert.Equal(t, "123", string(st.Files["out.txt"].Contents))
}

func cloneStore(st *store.Store) *store.Store {
	cp := store.New()
	for p, a := range st.Files {
		fields := make(map[string]any, len(a.Fields))
		for k, v := range a.Fields {
			fields[k] = v
		}
		cp.Files[p] = &store.Artifact{
			Contents: append([]byte(nil), a.Contents...),
			Mode:     a.Mode,
			Fields:   fields,
		}
	}
	for k, v := range st.Metadata {
		cp.Metadata[k] = v
	}
	return cp
}

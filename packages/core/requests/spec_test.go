package requests

import (
	"errors"
	"testing"

	"github.com/abdul-hamid-achik/hitpull/packages/core/inject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSpecs_UnmarshalYAML(t *testing.T) {
	input := `
- https://www.google.com/humans.txt
- url: https://api.github.com/repos/:owner/:repo/contents/README.md
  params:
    - { owner: metalsmith, repo: drafts }
    - { owner: metalsmith, repo: sass }
  out: { path: "core-plugins/:owner-:repo.md" }
  options:
    method: GET
    auth: metalsmith:secret
    headers:
      Accept: application/vnd.github.3.raw
- url: https://api.github.com/graphql
  out: { key: sassreadme, json: true, select: data.repository }
  body:
    query: "query { viewer { login } }"
  options:
    method: POST
`
	var specs Specs
	require.NoError(t, yaml.Unmarshal([]byte(input), &specs))
	require.Len(t, specs, 3)

	assert.True(t, specs[0].shorthand)
	assert.Equal(t, "https://www.google.com/humans.txt", specs[0].URL)

	gh := specs[1]
	assert.Equal(t, []inject.Params{
		{"owner": "metalsmith", "repo": "drafts"},
		{"owner": "metalsmith", "repo": "sass"},
	}, gh.Params)
	require.NotNil(t, gh.Out)
	assert.Equal(t, "core-plugins/:owner-:repo.md", gh.Out.Path)
	require.NotNil(t, gh.Options)
	assert.Equal(t, "metalsmith:secret", gh.Options.Auth)
	assert.Equal(t, "application/vnd.github.3.raw", gh.Options.Headers["Accept"])

	gql := specs[2]
	assert.JSONEq(t, `{"query":"query { viewer { login } }"}`, gql.Body)
	assert.True(t, gql.jsonBody)
	assert.True(t, gql.Out.JSON)
	assert.Equal(t, "data.repository", gql.Out.Select)

	descriptors := NewNormalizer().NormalizeAll(specs, func(err error) { t.Errorf("unexpected error: %v", err) })
	require.Len(t, descriptors, 4)
	assert.Equal(t, "application/json", descriptors[3].Headers["Content-Type"])
}

func TestSpecs_UnmarshalYAMLSingle(t *testing.T) {
	var specs Specs
	require.NoError(t, yaml.Unmarshal([]byte(`{"url": "https://example.com", "out": {"key": "x"}}`), &specs))
	require.Len(t, specs, 1)
	assert.Equal(t, "x", specs[0].Out.Key)

	require.NoError(t, yaml.Unmarshal([]byte(`true`), &specs))
	assert.Empty(t, specs)

	require.NoError(t, yaml.Unmarshal([]byte(`https://example.com/a`), &specs))
	require.Len(t, specs, 1)
	assert.True(t, specs[0].shorthand)
}

func TestOut_UnmarshalYAMLInvalidShape(t *testing.T) {
	var spec Spec
	require.NoError(t, yaml.Unmarshal([]byte("url: http://bad-outoption.com\nout: 124124\n"), &spec))
	require.NotNil(t, spec.Out)
	assert.Equal(t, "!!int", spec.Out.invalid)

	var got error
	NewNormalizer().Normalize(spec, func(err error) { got = err })
	assert.True(t, errors.Is(got, ErrInvalidOutConfig))
}

func TestSpec_UnmarshalYAMLRejectsSequence(t *testing.T) {
	var spec Spec
	err := yaml.Unmarshal([]byte("[1, 2]"), &spec)
	assert.Error(t, err)
}

func TestSpecFromValue(t *testing.T) {
	spec, err := SpecFromValue("https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", spec.URL)
	assert.False(t, spec.shorthand)

	spec, err = SpecFromValue(map[string]any{
		"url": "https://example.com/:id",
		"out": map[string]any{"key": "data"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/:id", spec.URL)
	assert.Equal(t, "data", spec.Out.Key)

	_, err = SpecFromValue(42)
	assert.Error(t, err)
}

package requests

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abdul-hamid-achik/hitpull/packages/core/inject"
	"github.com/abdul-hamid-achik/hitpull/packages/http"
	"github.com/abdul-hamid-achik/hitpull/packages/store"
	"gopkg.in/yaml.v3"
)

// Callback receives a response and handles it itself. The descriptor it is
// given has its destination stripped. A returned error fails the batch.
type Callback func(ctx context.Context, resp *http.Response, req *Descriptor, st *store.Store) error

// Spec is one declared request template. In YAML or JSON it is either a bare
// URL string or a mapping with url, body, out, params and options.
type Spec struct {
	URL     string
	Body    string
	Out     *Out
	Params  []inject.Params
	Options *Options

	shorthand bool
	jsonBody  bool
}

// Shorthand returns the spec a bare URL string decodes to: a GET request
// whose response is only logged.
func Shorthand(url string) Spec {
	return Spec{URL: url, shorthand: true}
}

// Out declares where a response goes.
type Out struct {
	Key    string   `yaml:"key"`
	Path   string   `yaml:"path"`
	JSON   bool     `yaml:"json"`
	Select string   `yaml:"select"`
	Call   Callback `yaml:"-"`

	// invalid holds the YAML tag of a non-mapping value, e.g. !!int.
	invalid string
}

// Options are passed through to the transport.
type Options struct {
	Method  string            `yaml:"method"`
	Headers map[string]string `yaml:"headers"`
	Auth    string            `yaml:"auth"`
	Timeout string            `yaml:"timeout"`
}

type specFields struct {
	URL     string          `yaml:"url"`
	Body    yaml.Node       `yaml:"body"`
	Out     *Out            `yaml:"out"`
	Params  []inject.Params `yaml:"params"`
	Options *Options        `yaml:"options"`
}

// UnmarshalYAML accepts a bare URL string or a spec mapping. JSON documents
// decode through the same path since yaml.v3 reads JSON.
func (s *Spec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*s = Shorthand(node.Value)
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: request must be a URL string or a mapping", node.Line)
	}

	var f specFields
	if err := node.Decode(&f); err != nil {
		return err
	}

	*s = Spec{
		URL:     f.URL,
		Out:     f.Out,
		Params:  f.Params,
		Options: f.Options,
	}

	switch f.Body.Kind {
	case 0:
	case yaml.ScalarNode:
		s.Body = f.Body.Value
	default:
		var v any
		if err := f.Body.Decode(&v); err != nil {
			return err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("line %d: encoding body: %w", f.Body.Line, err)
		}
		s.Body = string(data)
		s.jsonBody = true
	}

	return nil
}

// UnmarshalYAML decodes a mapping into o and keeps any other value as an
// invalid shape for the normalizer to reject.
func (o *Out) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		*o = Out{invalid: node.Tag}
		return nil
	}
	type plain Out
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*o = Out(p)
	return nil
}

// Specs decodes from a single spec or a list of specs. A boolean or null
// value decodes to an empty list.
type Specs []Spec

func (s *Specs) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var list []Spec
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
	case yaml.ScalarNode:
		if node.Tag == "!!bool" || node.Tag == "!!null" {
			*s = nil
			return nil
		}
		*s = Specs{Shorthand(node.Value)}
	default:
		var one Spec
		if err := node.Decode(&one); err != nil {
			return err
		}
		*s = Specs{one}
	}
	return nil
}

// SpecFromValue builds a spec from a decoded front matter value: a string or
// a map.
func SpecFromValue(v any) (Spec, error) {
	switch val := v.(type) {
	case string:
		return Spec{URL: val}, nil
	case map[string]any:
		data, err := yaml.Marshal(val)
		if err != nil {
			return Spec{}, err
		}
		var s Spec
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Spec{}, err
		}
		return s, nil
	default:
		return Spec{}, fmt.Errorf("request must be a string or a mapping, got %T", v)
	}
}

package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitpull/packages/core/env"
	"github.com/abdul-hamid-achik/hitpull/packages/core/requests"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

// DefaultTimeout applies to requests that set no timeout of their own.
const DefaultTimeout = 30 * time.Second

// Config represents the hitpull configuration
type Config struct {
	Source          string            `yaml:"source,omitempty" json:"source,omitempty"`
	Destination     string            `yaml:"destination,omitempty" json:"destination,omitempty"`
	Clean           *bool             `yaml:"clean,omitempty" json:"clean,omitempty"`
	Timeout         string            `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	UserAgent       string            `yaml:"userAgent,omitempty" json:"userAgent,omitempty"`
	Headers         map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	FollowRedirects *bool             `yaml:"followRedirects,omitempty" json:"followRedirects,omitempty"`
	MaxRedirects    int               `yaml:"maxRedirects,omitempty" json:"maxRedirects,omitempty"`
	ValidateSSL     *bool             `yaml:"validateSSL,omitempty" json:"validateSSL,omitempty"`
	Proxy           string            `yaml:"proxy,omitempty" json:"proxy,omitempty"`
	AllowFile       *bool             `yaml:"allowFile,omitempty" json:"allowFile,omitempty"`
	MetadataFile    string            `yaml:"metadataFile,omitempty" json:"metadataFile,omitempty"`
	Requests        requests.Specs    `yaml:"requests,omitempty" json:"-"`
}

// ConfigFilenames contains the possible config file names, in search order
var ConfigFilenames = []string{
	"hitpull.yaml",
	"hitpull.yml",
	".hitpull.yaml",
	"hitpull.json",
}

// ErrNoConfig is returned by Find when no config file exists.
var ErrNoConfig = errors.New("no config file found")

func DefaultConfig() *Config {
	return &Config{
		Source:          "src",
		Destination:     "build",
		Clean:           BoolPtr(false),
		Timeout:         DefaultTimeout.String(),
		FollowRedirects: BoolPtr(true),
		MaxRedirects:    10,
		ValidateSSL:     BoolPtr(true),
		AllowFile:       BoolPtr(false),
	}
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

func (c *Config) GetClean() bool           { return getBool(c.Clean, false) }
func (c *Config) GetFollowRedirects() bool { return getBool(c.FollowRedirects, true) }
func (c *Config) GetValidateSSL() bool     { return getBool(c.ValidateSSL, true) }
func (c *Config) GetAllowFile() bool       { return getBool(c.AllowFile, false) }

// GetTimeout parses Timeout, falling back to DefaultTimeout when it is empty.
func (c *Config) GetTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid timeout %q: must be positive", c.Timeout)
	}
	return d, nil
}

// LoadConfig loads the file at path, or searches the current directory when
// path is empty.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// Find returns the first config file present in dir.
func Find(dir string) (string, error) {
	for _, name := range ConfigFilenames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", ErrNoConfig
}

// FindAndLoadConfig loads the first config file in dir, or defaults when
// there is none.
func FindAndLoadConfig(dir string) (*Config, error) {
	path, err := Find(dir)
	if errors.Is(err, ErrNoConfig) {
		return DefaultConfig(), nil
	}
	return loadConfigFromFile(path)
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse expands environment references in data, validates it against the
// config schema and decodes it over the defaults. JSON is accepted as YAML.
func Parse(data []byte) (*Config, error) {
	expanded := []byte(env.Expand(string(data)))

	var doc any
	if err := yaml.Unmarshal(expanded, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if doc == nil {
		return DefaultConfig(), nil
	}
	if err := Validate(doc); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return DefaultConfig().Merge(cfg), nil
}

// ValidationError lists every schema violation in a config document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid config: " + strings.Join(e.Problems, "; ")
}

// Validate checks a decoded document against the embedded schema.
func Validate(doc any) error {
	// round-trip through JSON so the loader sees plain JSON types
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{}
	for _, re := range result.Errors() {
		verr.Problems = append(verr.Problems, re.String())
	}
	return verr
}

// Merge returns c overlaid with the fields other sets explicitly.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.Source != "" {
		result.Source = other.Source
	}
	if other.Destination != "" {
		result.Destination = other.Destination
	}
	if other.Timeout != "" {
		result.Timeout = other.Timeout
	}
	if other.UserAgent != "" {
		result.UserAgent = other.UserAgent
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.MetadataFile != "" {
		result.MetadataFile = other.MetadataFile
	}

	if other.Clean != nil {
		result.Clean = other.Clean
	}
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.AllowFile != nil {
		result.AllowFile = other.AllowFile
	}

	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(c.Headers)+len(other.Headers))
		for k, v := range c.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	if len(other.Requests) > 0 {
		result.Requests = append(append(requests.Specs{}, c.Requests...), other.Requests...)
	}

	return &result
}

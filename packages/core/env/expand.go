package env

import (
	"os"
	"regexp"
	"strings"
	"sync"
)

// ${NAME} or ${NAME:-default}
var refPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// Expander replaces ${VAR} references from its own variables first and the
// process environment second. Unresolved references without a default are
// left as written.
type Expander struct {
	mu       sync.RWMutex
	vars     map[string]string
	warnFunc WarnFunc
}

func NewExpander() *Expander {
	return &Expander{vars: make(map[string]string)}
}

// SetWarnFunc sets a function to be called for unresolved references
func (e *Expander) SetWarnFunc(fn WarnFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.warnFunc = fn
}

func (e *Expander) SetVariables(vars map[string]string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for k, v := range vars {
		e.vars[k] = v
	}
}

func (e *Expander) Lookup(name string) (string, bool) {
	e.mu.RLock()
	v, ok := e.vars[name]
	e.mu.RUnlock()
	if ok {
		return v, true
	}
	return os.LookupEnv(name)
}

func (e *Expander) Expand(input string) string {
	if !strings.Contains(input, "${") {
		return input
	}
	return refPattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := refPattern.FindStringSubmatch(match)
		name, hasDefault, def := sub[1], sub[2] != "", sub[3]

		if v, ok := e.Lookup(name); ok && v != "" {
			return v
		}
		if hasDefault {
			return def
		}
		e.warn("unresolved environment variable: %s", name)
		return match
	})
}

func (e *Expander) warn(format string, args ...any) {
	e.mu.RLock()
	fn := e.warnFunc
	e.mu.RUnlock()
	if fn != nil {
		fn(format, args...)
	}
}

// Expand expands references against the process environment.
func Expand(input string) string {
	return NewExpander().Expand(input)
}

package inject

import (
	"fmt"
	"regexp"
	"sync"
)

// tokenPattern matches :name where name starts with a letter or underscore.
// Ports such as host:8080 never match.
var tokenPattern = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)

// Params is one set of placeholder substitutions.
type Params map[string]any

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// Injector replaces :name tokens in templates. It is safe for concurrent use.
type Injector struct {
	mu       sync.RWMutex
	warnFunc WarnFunc
}

func New() *Injector {
	return &Injector{}
}

// SetWarnFunc sets a function to be called for tokens a parameter set cannot resolve
func (in *Injector) SetWarnFunc(fn WarnFunc) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.warnFunc = fn
}

func (in *Injector) warn(format string, args ...any) {
	in.mu.RLock()
	fn := in.warnFunc
	in.mu.RUnlock()
	if fn != nil {
		fn(format, args...)
	}
}

// Inject returns template with every resolvable :name token replaced by
// params[name]. A nil or empty params returns template unchanged.
func (in *Injector) Inject(template string, params Params) string {
	if len(params) == 0 {
		return template
	}
	return tokenPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1:]
		val, ok := params[name]
		if !ok || val == nil {
			in.warn("unresolved placeholder :%s in %q", name, template)
			return match
		}
		return fmt.Sprintf("%v", val)
	})
}

// Inject substitutes with a default Injector that does not warn.
func Inject(template string, params Params) string {
	return New().Inject(template, params)
}

// Tokens returns the placeholder names in template, in order of appearance,
// without duplicates.
func Tokens(template string) []string {
	matches := tokenPattern.FindAllStringSubmatch(template, -1)
	seen := make(map[string]bool, len(matches))
	var names []string
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		names = append(names, m[1])
	}
	return names
}

// Unresolved returns the tokens of template that params does not provide.
func Unresolved(template string, params Params) []string {
	var missing []string
	for _, name := range Tokens(template) {
		if v, ok := params[name]; !ok || v == nil {
			missing = append(missing, name)
		}
	}
	return missing
}

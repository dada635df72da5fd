package route

import (
	"strings"

	"dario.cat/mergo"
)

// SetPath merges value into root at a dotted key path. Missing or non-map
// intermediate values are replaced by maps. When both the existing value and
// value are maps they are deep-merged, keeping sibling keys; otherwise value
// replaces what was there.
func SetPath(root map[string]any, dotted string, value any) error {
	keys := splitPath(dotted)
	if len(keys) == 0 {
		return nil
	}

	node := root
	for _, k := range keys[:len(keys)-1] {
		next, ok := node[k].(map[string]any)
		if !ok {
			next = make(map[string]any)
			node[k] = next
		}
		node = next
	}

	leaf := keys[len(keys)-1]
	existing, existingIsMap := node[leaf].(map[string]any)
	incoming, incomingIsMap := value.(map[string]any)
	if existingIsMap && incomingIsMap {
		return mergo.Merge(&existing, incoming, mergo.WithOverride)
	}

	node[leaf] = value
	return nil
}

func splitPath(dotted string) []string {
	parts := strings.Split(dotted, ".")
	keys := parts[:0]
	for _, p := range parts {
		if p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}

package archive

import (
	"fmt"
	"strings"
)

// Backends are compiled in and selected by configuration key; there is no
// dynamic loading of strategy classes.
var registry = map[string]func(root string) Backend{
	"never": func(string) Backend { return &NeverBackend{} },
	"local": func(root string) Backend { return NewLocalBackend(root) },
}

// Keys returns the registered backend names. Intended for internal
// inspection/tests.
func Keys() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	return out
}

func Select(name, root string) (Backend, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = "never"
	}
	if build, ok := registry[key]; ok {
		return build(root), nil
	}
	return nil, fmt.Errorf("unsupported archive backend %q", name)
}

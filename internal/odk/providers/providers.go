// Package providers builds an odk.Provider from the name of a server kind.
package providers

import (
	"fmt"
	"odk-pull/internal/odk"
	"odk-pull/internal/odk/central"
	"odk-pull/internal/odk/kobo"
	"odk-pull/internal/odk/ona"
	"sort"
	"strings"
)

type constructor func(opts odk.Options) odk.Provider

var registry = map[string]constructor{
	"ona": func(opts odk.Options) odk.Provider {
		return ona.NewClient(opts)
	},
	"kobo": func(opts odk.Options) odk.Provider {
		return kobo.NewClient(opts)
	},
	"central": func(opts odk.Options) odk.Provider {
		return central.NewClient(opts)
	},
}

var aliases = map[string]string{
	"getodk":      "central",
	"odk-central": "central",
	"kobotoolbox": "kobo",
}

// Kinds returns the canonical provider names.
func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Canonical resolves aliases and casing of a provider name.
func Canonical(kind string) (string, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if alias, ok := aliases[kind]; ok {
		kind = alias
	}
	if _, ok := registry[kind]; !ok {
		return "", fmt.Errorf(
			"%w: %q (expected one of %s)",
			odk.ErrUnknownProvider, kind, strings.Join(Kinds(), ", "),
		)
	}
	return kind, nil
}

// New creates the provider named by `kind`.
func New(kind string, opts odk.Options) (odk.Provider, error) {
	canonical, err := Canonical(kind)
	if err != nil {
		return nil, err
	}
	return registry[canonical](opts), nil
}

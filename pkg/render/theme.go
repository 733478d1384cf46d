package render

import (
	"fmt"

	theme "github.com/goliatone/go-theme"
)

// ThemeConfig is the resolved theme handed to renderers: merged tokens plus
// their CSS custom property form for HTML output.
type ThemeConfig struct {
	Theme   string
	Variant string
	Tokens  map[string]string
	CSSVars map[string]string
}

// DefaultThemeName selects the built-in light theme.
const DefaultThemeName = "classic"

// builtinManifests returns the themes shipped with the module. Token names
// are shared across renderers: accent, ok, bad, info, muted, surface, text.
func builtinManifests() map[string]*theme.Manifest {
	return map[string]*theme.Manifest{
		"classic": {
			Name:    "classic",
			Version: "1.0.0",
			Tokens: map[string]string{
				"accent":  "#2563eb",
				"ok":      "#16a34a",
				"bad":     "#dc2626",
				"info":    "#0ea5e9",
				"muted":   "#6b7280",
				"surface": "#ffffff",
				"text":    "#111827",
			},
			Variants: map[string]theme.Variant{
				"dark": {
					Tokens: map[string]string{
						"accent":  "#60a5fa",
						"ok":      "#4ade80",
						"bad":     "#f87171",
						"info":    "#38bdf8",
						"muted":   "#9ca3af",
						"surface": "#111827",
						"text":    "#f9fafb",
					},
				},
			},
		},
		"mono": {
			Name:    "mono",
			Version: "1.0.0",
			Tokens: map[string]string{
				"accent":  "#444444",
				"ok":      "#222222",
				"bad":     "#000000",
				"info":    "#666666",
				"muted":   "#999999",
				"surface": "#ffffff",
				"text":    "#000000",
			},
		},
	}
}

// ResolveTheme merges a variant's tokens over the base manifest and returns
// the renderer-facing configuration. Unknown names or variants are errors so
// configuration mistakes surface immediately.
func ResolveTheme(name, variant string) (*ThemeConfig, error) {
	if name == "" {
		name = DefaultThemeName
	}
	manifest, ok := builtinManifests()[name]
	if !ok {
		return nil, fmt.Errorf("render: theme %q not found", name)
	}

	tokens := make(map[string]string, len(manifest.Tokens))
	for key, value := range manifest.Tokens {
		tokens[key] = value
	}
	if variant != "" {
		v, ok := manifest.Variants[variant]
		if !ok {
			return nil, fmt.Errorf("render: theme %q has no variant %q", name, variant)
		}
		for key, value := range v.Tokens {
			tokens[key] = value
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	return &ThemeConfig{
		Theme:   manifest.Name,
		Variant: variant,
		Tokens:  tokens,
		CSSVars: cssVars,
	}, nil
}

// Token fetches a token with a fallback for renderers that tolerate a nil
// config.
func (c *ThemeConfig) Token(name, fallback string) string {
	if c == nil {
		return fallback
	}
	if value, ok := c.Tokens[name]; ok {
		return value
	}
	return fallback
}

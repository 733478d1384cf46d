package htmlcard

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html.tpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the built-in template bundle rooted at the templates
// directory so callers can override individual files.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		// Should never happen, but fall back to raw FS so templates stay usable.
		return embeddedTemplates
	}
	return sub
}

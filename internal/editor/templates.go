package editor

import (
	"embed"
	"io/fs"
)

//go:embed templates/codemirror/*.html
var embeddedTemplates embed.FS

// Templates exposes the default widget templates rooted so that TemplateID
// resolves to "codemirror/javascript.html".  Sites override them by placing
// a file at the same relative path in a higher-precedence view source.
func Templates() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

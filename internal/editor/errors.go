// internal/editor/errors.go
//
// Configuration errors raised while normalizing editor options.  Every
// error returned by this package wraps one of these sentinels, so callers
// test with errors.Is and still get a message naming the offending value.

package editor

import "errors"

var (
	// ErrUnsupportedModeShape is returned when a mode is supplied as a list.
	// Lists of mode names were removed; only the first entry was ever used.
	ErrUnsupportedModeShape = errors.New("editor: mode must be a name or a mapping, not a list")

	// ErrUnsupportedMimeType is returned when a mode name looks like a MIME
	// type but has no entry in the composite mode table.
	ErrUnsupportedMimeType = errors.New("editor: unsupported MIME type")

	// ErrInvalidConfiguration covers structurally malformed options: empty or
	// duplicate configuration keys, non-scalar YAML values, unknown profiles.
	ErrInvalidConfiguration = errors.New("editor: invalid configuration")
)

// errorReason maps an error to a short metrics label.
func errorReason(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedModeShape):
		return "mode_shape"
	case errors.Is(err, ErrUnsupportedMimeType):
		return "mime_type"
	default:
		return "invalid_configuration"
	}
}

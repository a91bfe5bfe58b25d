// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `Load` calls `validateStruct` immediately after it unmarshals the merged
// Koanf tree.  Any validation error aborts startup, so the binary never runs
// with a malformed configuration.
//
// Custom rules
// ------------
//   • cmmode – the value must be a mode the editor can resolve (a plain
//     mode name or a supported composite MIME type such as text/html).

package config

import (
	"github.com/go-playground/validator/v10"

	"github.com/yanizio/cmwidget/internal/editor"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	_ = val.RegisterValidation("cmmode", func(fl validator.FieldLevel) bool {
		_, err := editor.ModeNames(fl.Field().String())
		return err == nil
	})
	return val
}

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}

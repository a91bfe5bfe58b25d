// internal/form/submit.go
//
// Forms subsystem: consolidated Submit helper.
//
// Context
//   Most handlers want one call that: parses POST body, validates input,
//   executes configured actions, and returns the clean map or a validation
//   error.  HandleSubmit provides that convenience so handler code stays terse.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/cmwidget/internal/metrics"
)

// HandleSubmit parses r, validates against formID, executes default actions,
// and returns the sanitized data.  A wizard step other than the last only
// validates; callers move on to NextStep and actions run on the final step.
// On validation failure it returns a validation error (check with
// IsValidationError and FieldErrors).  On unexpected system failures it
// returns a generic error.  db may be nil.
func HandleSubmit(formID string, r *http.Request, db sqlx.ExtContext) (map[string]any, error) {
	if err := r.ParseForm(); err != nil {
		metrics.FormSubmissionsTotal.WithLabelValues(formID, "error").Inc()
		return nil, err
	}

	clean, errs := ValidateForm(formID, r.PostForm)
	if len(errs) > 0 {
		metrics.FormSubmissionsTotal.WithLabelValues(formID, "invalid").Inc()
		return nil, validationError{Fields: errs}
	}

	if NextStep(formID, r.PostForm) != "" {
		metrics.FormSubmissionsTotal.WithLabelValues(formID, "step").Inc()
		return clean, nil
	}

	outcome := "ok"
	if failed := ExecuteActions(formID, clean, ActionCtx{Ctx: r.Context(), DB: db}); failed > 0 {
		outcome = "action_failed"
	}
	metrics.FormSubmissionsTotal.WithLabelValues(formID, outcome).Inc()
	return clean, nil
}

// IsValidationError reports whether err came from failed ValidateForm.
func IsValidationError(err error) bool {
	var ve validationError
	return errors.As(err, &ve)
}

// FieldErrors returns the field-level failures carried by a validation
// error, or nil.
func FieldErrors(err error) []ErrorField {
	var ve validationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

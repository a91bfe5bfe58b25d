// internal/form/actions.go
//
// Forms subsystem: post-submit actions.
//
// Context
//   A FormDef may declare actions.  ExecuteActions dispatches to runStore or
//   runLog after validation.  Failures are logged, never returned, so a
//   broken action does not turn a valid submission into a user error.
//
//   store   inserts one row (form_id, submitted_at, data) where data is the
//           JSON-encoded clean map.  Param `table` defaults to
//           “form_submission” and must be a plain SQL identifier.
//   log     writes the submission to the request logger.  Param `fields`
//           (bool) includes the values, otherwise only field names.
//
//------------------------------------------------------------------------------

package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/cmwidget/internal/database"
	"github.com/yanizio/cmwidget/internal/logger"
)

// knownActions is consulted at load time; unknown types only warn.
var knownActions = map[string]bool{
	"store": true,
	"log":   true,
}

// DefaultTable receives store actions that do not name a table.
const DefaultTable = "form_submission"

// ActionCtx carries request-scoped helpers for action execution.  DB may be
// nil when no database is configured; store actions then fail and log.
type ActionCtx struct {
	Ctx context.Context
	DB  sqlx.ExtContext
}

// ExecuteActions performs all YAML-declared actions.  Errors are logged but not
// returned, keeping user flow uninterrupted.  It reports how many actions
// failed.
func ExecuteActions(formID string, data map[string]any, actx ActionCtx) int {
	fd, ok := GetFormDef(formID)
	if !ok || len(fd.Actions) == 0 {
		return 0
	}
	if actx.Ctx == nil {
		actx.Ctx = context.Background()
	}

	failed := 0
	for _, ac := range fd.Actions {
		var err error
		switch ac.Type {
		case "store":
			err = runStore(fd, ac.Params, data, actx)
		case "log":
			runLog(fd, ac.Params, data, actx)
		default:
			logger.FromContext(actx.Ctx).Warnw("form action warning",
				"form", fd.ID, "action", ac.Type, "warning", "unsupported action")
			continue
		}
		if err != nil {
			failed++
			logger.FromContext(actx.Ctx).Errorw("form action failed",
				"form", fd.ID, "action", ac.Type, "err", err)
		}
	}
	return failed
}

// -----------------------------------------------------------------------------
// Store action
// -----------------------------------------------------------------------------

func runStore(fd *FormDef, p map[string]any, data map[string]any, actx ActionCtx) error {
	if actx.DB == nil {
		return errors.New("store: no database configured")
	}
	table, _ := p["table"].(string)
	if table == "" {
		table = DefaultTable
	}
	if !database.ValidIdentifier(table) {
		return fmt.Errorf("store: invalid table name %q", table)
	}

	j, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}

	q := fmt.Sprintf(`INSERT INTO %s (form_id, submitted_at, data) VALUES (:form_id, :submitted_at, :data)`, table)
	_, err = sqlx.NamedExecContext(actx.Ctx, actx.DB, q, map[string]any{
		"form_id":      fd.ID,
		"submitted_at": time.Now().UTC(),
		"data":         j,
	})
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Log action
// -----------------------------------------------------------------------------

func runLog(fd *FormDef, p map[string]any, data map[string]any, actx ActionCtx) {
	names := slices.Sorted(maps.Keys(data))
	l := logger.FromContext(actx.Ctx)
	if withValues, _ := p["fields"].(bool); withValues {
		l.Infow("form submitted", "form", fd.ID, "fields", names, "data", data)
		return
	}
	l.Infow("form submitted", "form", fd.ID, "fields", names)
}

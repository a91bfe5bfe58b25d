package metrics

import (
	"strings"
	"testing"
)

func TestFormSubmissionsHelpListsOutcomes(t *testing.T) {
	desc := FormSubmissionsTotal.WithLabelValues("f", "ok").Desc().String()
	for _, outcome := range []string{"ok", "invalid", "error", "action_failed", "step"} {
		if !strings.Contains(desc, outcome) {
			t.Errorf("help text misses outcome %q: %s", outcome, desc)
		}
	}
}

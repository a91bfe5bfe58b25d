// Package metrics holds Prometheus instruments that are used across the
// module.  All collectors are registered with the global registry, so
// importing this package is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	WidgetRendersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "editor_widget_renders_total",
			Help: "Cumulative number of editor widgets rendered.",
		})

	MediaResolveErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editor_media_resolve_errors_total",
			Help: "Editor configurations rejected while resolving media, by reason.",
		}, []string{"reason"})

	TemplateParseTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "view_template_parse_total",
			Help: "Cumulative number of template sets parsed (cache misses).",
		})

	FormSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_submissions_total",
			Help: "Form submissions by form ID and outcome (ok, invalid, error, action_failed, step).",
		}, []string{"form", "outcome"})
)

func init() {
	prometheus.MustRegister(
		WidgetRendersTotal,
		MediaResolveErrorsTotal,
		TemplateParseTotal,
		FormSubmissionsTotal,
	)
}

// Package metrics defines the custom Prometheus collectors of the marketplace.
// All collectors are registered with the default registry through promauto on
// package initialisation; HTTP request metrics come from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// Result label values shared by the counters below.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// ── Listing metrics ───────────────────────────────────────────────────────────

// PartsCreatedTotal counts listings persisted by the create form.
var PartsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "parts_created_total",
		Help:      "Total number of parts created.",
	},
)

// PartsUpdatedTotal counts listings persisted by the edit form.
var PartsUpdatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "parts_updated_total",
		Help:      "Total number of parts updated.",
	},
)

// MediaUploadsTotal counts image uploads to the media host.
// Labels:
//   - variant: "thumbnail" or "preview"
//   - result: "ok" or "error"
var MediaUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "media_uploads_total",
		Help:      "Total number of image uploads, by variant and result.",
	},
	[]string{"variant", "result"},
)

// ── Document store metrics ────────────────────────────────────────────────────

// DocumentStoreOpsTotal counts whole-document loads and saves.
// Labels:
//   - op: "load" or "save"
//   - result: "ok" or "error"
var DocumentStoreOpsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "document_store_operations_total",
		Help:      "Total number of document store operations, by operation and result.",
	},
	[]string{"op", "result"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok", "invalid" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AuthRateLimitedTotal counts login/register requests rejected by the limiter.
var AuthRateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rate_limited_total",
		Help:      "Total number of login or register requests rejected by rate limiting.",
	},
)

// Result maps an error to the result label value.
func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

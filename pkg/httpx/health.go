package httpx

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// HealthChecker is satisfied by any infrastructure dependency that exposes
// a Ping method (database.Database, cache.RedisClient, events.EventBus all qualify).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthChecks maps a dependency name (reported as a JSON key) to its probe.
// Nil probes are skipped, so optional dependencies can be left unset.
type HealthChecks map[string]HealthChecker

// HealthHandler returns an http.HandlerFunc that probes every registered
// HealthChecker and reports degraded status if any of them fail.
//
// Response shape: {"status":"ok|degraded","<name>":"ok|unreachable",...}
func HealthHandler(checks HealthChecks) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name, c := range checks {
		if c != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := map[string]string{"status": "ok"}
		for _, name := range names {
			resp[name] = "ok"
			if err := checks[name].Ping(ctx); err != nil {
				resp["status"] = "degraded"
				resp[name] = "unreachable"
			}
		}

		status := http.StatusOK
		if resp["status"] != "ok" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}

package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/fastkep/pkg/fastkepsdk"
	"github.com/aussiebroadwan/fastkep/pkg/httpx"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

const readinessTimeout = 2 * time.Second

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe endpoint returning basic service health status, uptime, and version information
//	@Description	This endpoint always returns 200 OK if the service is running
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	fastkepsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := fastkepsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		}
		httpx.WriteJSON(w, http.StatusOK, response)
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning the status of the database and the revocation store
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	fastkepsdk.HealthResponse	"status, checks"
//	@Failure		503	{object}	fastkepsdk.HealthResponse	"status, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		response := fastkepsdk.HealthResponse{
			Status: "ok",
			Checks: make(map[string]string, len(checks)),
		}
		statusCode := http.StatusOK

		for name, check := range checks {
			if err := check(ctx); err != nil {
				response.Checks[name] = "error: " + err.Error()
				response.Status = "degraded"
				statusCode = http.StatusServiceUnavailable
				continue
			}
			response.Checks[name] = "ok"
		}

		httpx.WriteJSON(w, statusCode, response)
	}
}

package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/documents"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/service"
	"github.com/aussiebroadwan/fastkep/pkg/httpx"
	"github.com/aussiebroadwan/fastkep/pkg/metricsx"
	"github.com/aussiebroadwan/fastkep/pkg/slogx"

	_ "github.com/aussiebroadwan/fastkep/api/docs" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	metrics      *metricsx.Metrics
	limits       httpx.RateLimitProfiles

	AuthService *service.AuthService
	Verifier    *service.TokenVerifier
	Registry    *documents.Registry
	Renderer    *documents.Renderer

	// ReadinessChecks are run by /readyz, keyed by component name.
	ReadinessChecks map[string]HealthCheck
}

func NewRouter(buildVersion string, logger *slog.Logger, metrics *metricsx.Metrics, limits httpx.RateLimitProfiles) *Router {
	r := &Router{
		Mux:             http.NewServeMux(),
		buildVersion:    buildVersion,
		startTime:       time.Now(),
		logger:          logger,
		metrics:         metrics,
		limits:          limits,
		ReadinessChecks: map[string]HealthCheck{},
	}

	// Outermost first: access log, then request metrics.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}
	if metrics != nil {
		r.middlewares = append(r.middlewares, metrics.Instrument)
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerDocuments()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			FastKEP API
//	@version		0.1.0
//	@description	Account registration, JWT session management and generation of Greek declaration documents.
//	@description
//	@description				Access and refresh tokens are JWTs; logout revokes the presented access token.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/fastkep
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// Credential endpoints are limited by IP and submitted email to slow
	// password guessing against one account from many addresses.
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIPAndJSONField(r.limits.Strict, "email"),
		),
	)
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(r.limits.Strict, "email"),
		),
	)
	r.Mux.Handle("POST /auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(r.limits.Moderate),
		),
	)

	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			AuthnMiddleware(r.Verifier),
			httpx.RateLimitByUser(r.limits.Moderate),
		),
	)
	r.Mux.Handle("GET /auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			AuthnMiddleware(r.Verifier),
			httpx.RateLimitByUser(r.limits.Lenient),
		),
	)
}

func (r *Router) registerDocuments() {
	h := &DocumentsHandler{Registry: r.Registry, Renderer: r.Renderer}

	r.Mux.Handle("GET /documents/templates",
		httpx.Chain(http.HandlerFunc(h.HandleTemplates),
			httpx.RateLimitByIP(r.limits.Public),
		),
	)
	r.Mux.Handle("POST /documents/generate/{doc_type}",
		httpx.Chain(http.HandlerFunc(h.HandleGenerate),
			AuthnMiddleware(r.Verifier),
			httpx.RateLimitByUser(r.limits.Moderate),
		),
	)
}

func (r *Router) registerSystem() {
	// Probes poll frequently.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.limits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.ReadinessChecks),
			httpx.RateLimitByIP(r.limits.Lenient),
		),
	)

	if r.metrics != nil {
		r.Mux.Handle("GET /metrics", r.metrics.Handler())
	}
}

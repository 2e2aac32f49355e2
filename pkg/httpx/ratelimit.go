package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/fastkep/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig is a token bucket refilled at RequestsPerWindow per Window.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// RateLimitProfiles groups the limits applied to each class of route.
type RateLimitProfiles struct {
	// Strict guards credential endpoints (register, login).
	Strict RateLimitConfig
	// Moderate guards authenticated work (refresh, logout, generate).
	Moderate RateLimitConfig
	// Lenient guards cheap authenticated reads and probes.
	Lenient RateLimitConfig
	// Public guards anonymous catalogue reads.
	Public RateLimitConfig
}

func DefaultRateLimitProfiles() RateLimitProfiles {
	return RateLimitProfiles{
		Strict:   RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5},
		Moderate: RateLimitConfig{RequestsPerWindow: 20, Window: time.Minute, Burst: 20},
		Lenient:  RateLimitConfig{RequestsPerWindow: 100, Window: time.Minute, Burst: 100},
		Public:   RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000},
	}
}

// RateLimitProfilesFromEnv applies RATELIMIT_{STRICT,MODERATE,LENIENT,PUBLIC}_
// {REQUESTS,WINDOW_SEC,BURST} overrides on top of the defaults.
func RateLimitProfilesFromEnv() RateLimitProfiles {
	p := DefaultRateLimitProfiles()
	p.Strict = ParseRateLimitFromEnv("STRICT", p.Strict)
	p.Moderate = ParseRateLimitFromEnv("MODERATE", p.Moderate)
	p.Lenient = ParseRateLimitFromEnv("LENIENT", p.Lenient)
	p.Public = ParseRateLimitFromEnv("PUBLIC", p.Public)
	return p
}

// ParseRateLimitFromEnv overrides def with RATELIMIT_<prefix>_* variables.
// Values that are missing, unparsable or not positive are ignored.
func ParseRateLimitFromEnv(prefix string, def RateLimitConfig) RateLimitConfig {
	positive := func(name string) (int, bool) {
		n, err := strconv.Atoi(os.Getenv("RATELIMIT_" + prefix + "_" + name))
		return n, err == nil && n > 0
	}

	if n, ok := positive("REQUESTS"); ok {
		def.RequestsPerWindow = n
	}
	if n, ok := positive("WINDOW_SEC"); ok {
		def.Window = time.Duration(n) * time.Second
	}
	if n, ok := positive("BURST"); ok {
		def.Burst = n
	}
	return def
}

// KeyExtractor picks the bucket a request is charged against. An empty key
// lets the request through unmetered.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor prefers the first X-Forwarded-For hop, then X-Real-IP, then
// the socket address.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// UserIDKeyExtractor keys on the authenticated subject, so it only makes
// sense behind the authentication middleware.
func UserIDKeyExtractor(r *http.Request) string {
	id, _ := UserIDFromContext(r.Context())
	return id
}

// JSONFieldKeyExtractor keys on a string field of a JSON request body, lower
// cased. The body is restored for the handler.
func JSONFieldKeyExtractor(field string) KeyExtractor {
	return func(r *http.Request) string {
		if r.Body == nil {
			return ""
		}

		raw, err := io.ReadAll(io.LimitReader(r.Body, MaxJSONBodyBytes))
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(raw))
		if err != nil {
			return ""
		}

		var body map[string]any
		if json.Unmarshal(raw, &body) != nil {
			return ""
		}
		v, _ := body[field].(string)
		return strings.ToLower(strings.TrimSpace(v))
	}
}

// CompositeKeyExtractor joins the non-empty keys of extractors with sep.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(extractors))
		for _, extract := range extractors {
			if k := extract(r); k != "" {
				parts = append(parts, k)
			}
		}
		return strings.Join(parts, sep)
	}
}

type limiterSet struct {
	limit rate.Limit
	burst int

	limiters sync.Map // string -> *rate.Limiter

	mu        sync.Mutex
	lastSweep time.Time
}

const sweepInterval = 5 * time.Minute

func (s *limiterSet) get(key string) *rate.Limiter {
	if l, ok := s.limiters.Load(key); ok {
		return l.(*rate.Limiter)
	}

	l, _ := s.limiters.LoadOrStore(key, rate.NewLimiter(s.limit, s.burst))
	s.maybeSweep()
	return l.(*rate.Limiter)
}

// maybeSweep drops buckets that have refilled completely. A full bucket
// behaves the same as a new one, so nothing is lost.
func (s *limiterSet) maybeSweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = time.Now()

	s.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(s.burst) {
			s.limiters.Delete(key)
		}
		return true
	})
}

// RateLimit meters requests per key and answers 429 with Retry-After once a
// bucket is empty.
func RateLimit(cfg RateLimitConfig, key KeyExtractor) Middleware {
	set := &limiterSet{
		limit:     rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()),
		burst:     cfg.Burst,
		lastSweep: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				slogx.FromContext(r.Context()).Warn("rate limit: no key for request, skipping")
				next.ServeHTTP(w, r)
				return
			}

			limiter := set.get(k)
			if limiter.Allow() {
				next.ServeHTTP(w, r)
				return
			}

			res := limiter.Reserve()
			retryAfter := max(int(res.Delay().Seconds()), 1)
			res.Cancel()

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Window", cfg.Window.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"key", k,
				"path", r.URL.Path,
				"retry_after", retryAfter,
			)

			WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":             "rate_limit_exceeded",
				"error_description": "Too many requests. Please try again later.",
			})
		})
	}
}

// RateLimitByIP meters by client address.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return RateLimit(cfg, IPKeyExtractor)
}

// RateLimitByUser meters by authenticated subject plus address.
func RateLimitByUser(cfg RateLimitConfig) Middleware {
	return RateLimit(cfg, CompositeKeyExtractor(":", UserIDKeyExtractor, IPKeyExtractor))
}

// RateLimitByIPAndJSONField meters by address plus a JSON body field, e.g.
// the email on a login attempt.
func RateLimitByIPAndJSONField(cfg RateLimitConfig, field string) Middleware {
	return RateLimit(cfg, CompositeKeyExtractor(":", IPKeyExtractor, JSONFieldKeyExtractor(field)))
}

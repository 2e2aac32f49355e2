package httpx_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/fastkep/pkg/httpx"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestIPKeyExtractor(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"remote addr", nil, "192.168.1.1"},
		{"forwarded for", map[string]string{"X-Forwarded-For": "203.0.113.1, 192.168.1.1"}, "203.0.113.1"},
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.2"}, "203.0.113.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.168.1.1:12345"
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tt.want, httpx.IPKeyExtractor(req))
		})
	}
}

func TestJSONFieldKeyExtractorRestoresBody(t *testing.T) {
	body := `{"email":"  A@B.com ","password":"x"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))

	require.Equal(t, "a@b.com", httpx.JSONFieldKeyExtractor("email")(req))

	rest, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	require.Equal(t, body, string(rest))
}

func TestJSONFieldKeyExtractorIgnoresBadBodies(t *testing.T) {
	for _, body := range []string{"", "not json", `{"email": 42}`, `[]`} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		require.Empty(t, httpx.JSONFieldKeyExtractor("email")(req), "body %q", body)
	}
}

func TestCompositeKeyExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1"
	req = req.WithContext(httpx.WithUserID(req.Context(), "user-1"))

	key := httpx.CompositeKeyExtractor(":", httpx.UserIDKeyExtractor, httpx.IPKeyExtractor)(req)
	require.Equal(t, "user-1:10.0.0.1", key)

	anon := httptest.NewRequest(http.MethodGet, "/", nil)
	anon.RemoteAddr = "10.0.0.1:1"
	require.Equal(t, "10.0.0.1", httpx.CompositeKeyExtractor(":", httpx.UserIDKeyExtractor, httpx.IPKeyExtractor)(anon))
}

func TestRateLimit(t *testing.T) {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}

	t.Run("blocks once the bucket is empty", func(t *testing.T) {
		h := httpx.RateLimitByIP(cfg)(okHandler)

		for i := range 3 {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.168.1.1:1"
			h.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:1"
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Contains(t, rec.Body.String(), "rate_limit_exceeded")
	})

	t.Run("keys are independent", func(t *testing.T) {
		h := httpx.RateLimitByIPAndJSONField(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}, "email")(okHandler)

		send := func(email string) int {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"`+email+`"}`))
			req.RemoteAddr = "192.168.1.1:1"
			h.ServeHTTP(rec, req)
			return rec.Code
		}

		require.Equal(t, http.StatusOK, send("a@b.com"))
		require.Equal(t, http.StatusTooManyRequests, send("a@b.com"))
		require.Equal(t, http.StatusOK, send("c@d.com"))
	})

	t.Run("empty key is not metered", func(t *testing.T) {
		h := httpx.RateLimit(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1},
			func(*http.Request) string { return "" })(okHandler)

		for range 3 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestRateLimitProfilesFromEnv(t *testing.T) {
	t.Setenv("RATELIMIT_STRICT_REQUESTS", "50")
	t.Setenv("RATELIMIT_STRICT_WINDOW_SEC", "10")
	t.Setenv("RATELIMIT_STRICT_BURST", "7")
	t.Setenv("RATELIMIT_PUBLIC_REQUESTS", "-4")

	p := httpx.RateLimitProfilesFromEnv()
	def := httpx.DefaultRateLimitProfiles()

	require.Equal(t, httpx.RateLimitConfig{RequestsPerWindow: 50, Window: 10 * time.Second, Burst: 7}, p.Strict)
	require.Equal(t, def.Moderate, p.Moderate)
	require.Equal(t, def.Public, p.Public)
}

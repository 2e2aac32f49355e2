package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/domain"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/service"
	"github.com/aussiebroadwan/fastkep/pkg/fastkepsdk"
	"github.com/aussiebroadwan/fastkep/pkg/httpx"
	"github.com/aussiebroadwan/fastkep/pkg/slogx"
)

type principalKey struct{}

func withPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the verified caller set by AuthnMiddleware.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}

// AuthnMiddleware requires a valid, unrevoked access token. The principal is
// stored on the context and the user id is exposed to the per-user rate
// limiter.
func AuthnMiddleware(v *service.TokenVerifier) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := httpx.BearerToken(r)
			if !ok {
				fastkepsdk.ErrInvalidToken.WithDescription("missing bearer token").WriteError(w)
				return
			}

			p, err := v.Verify(r.Context(), raw, domain.TokenKindAccess)
			if err != nil {
				slogx.FromContext(r.Context()).Debug("access token rejected", "err", err)
				writeError(w, r, err)
				return
			}

			ctx := withPrincipal(r.Context(), p)
			ctx = httpx.WithUserID(ctx, p.User.ID)
			ctx = slogx.With(ctx, "user_id", p.User.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package http

import (
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/domain"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/service"
	"github.com/aussiebroadwan/fastkep/pkg/fastkepsdk"
	"github.com/aussiebroadwan/fastkep/pkg/httpx"
	"github.com/aussiebroadwan/fastkep/pkg/slogx"
)

type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleRegister creates an account and signs it in.
//
//	@Summary		Register
//	@Description	Creates a user after checking the password policy and returns an access and refresh token pair.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		fastkepsdk.RegisterRequest	true	"Registration details"
//	@Success		201		{object}	fastkepsdk.AuthResponse
//	@Failure		400		{object}	fastkepsdk.APIError	"invalid_request or weak_password"
//	@Failure		409		{object}	fastkepsdk.APIError	"email_taken"
//	@Failure		429		{object}	fastkepsdk.APIError	"rate_limit_exceeded"
//	@Router			/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req fastkepsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		fastkepsdk.ErrInvalidRequest.WithDescription("invalid JSON body").WriteError(w)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validateRequest(req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, authResponse("User created successfully", res, time.Now()))
}

// HandleLogin exchanges credentials for a token pair.
//
//	@Summary		Login
//	@Description	Authenticates with email and password. Unknown email, wrong password and inactive account return the same error.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		fastkepsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	fastkepsdk.AuthResponse
//	@Failure		400		{object}	fastkepsdk.APIError	"invalid_request"
//	@Failure		401		{object}	fastkepsdk.APIError	"invalid_credentials"
//	@Failure		429		{object}	fastkepsdk.APIError	"rate_limit_exceeded"
//	@Router			/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req fastkepsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		fastkepsdk.ErrInvalidRequest.WithDescription("invalid JSON body").WriteError(w)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validateRequest(req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authResponse("Login successful", res, time.Now()))
}

// HandleRefresh issues a new access token from a refresh token.
//
//	@Summary		Refresh
//	@Description	Issues a new access token. The refresh token may be sent in the body or as a bearer token; it is not rotated.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		fastkepsdk.RefreshRequest	false	"Refresh token"
//	@Success		200		{object}	fastkepsdk.AccessTokenResponse
//	@Failure		400		{object}	fastkepsdk.APIError	"invalid_request"
//	@Failure		401		{object}	fastkepsdk.APIError	"invalid_token"
//	@Failure		503		{object}	fastkepsdk.APIError	"temporarily_unavailable"
//	@Router			/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req fastkepsdk.RefreshRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		fastkepsdk.ErrInvalidRequest.WithDescription("invalid JSON body").WriteError(w)
		return
	}
	if req.RefreshToken == "" {
		req.RefreshToken, _ = httpx.BearerToken(r)
	}
	if err := validateRequest(req); err != nil {
		writeError(w, r, err)
		return
	}

	tok, err := h.AuthService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, fastkepsdk.AccessTokenResponse{
		AccessToken: tok.Token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn(tok.ExpiresAt, time.Now()),
	})
}

// HandleLogout revokes the presented access token.
//
//	@Summary		Logout
//	@Description	Revokes the access token used to call this endpoint. The refresh token stays valid until it expires.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	fastkepsdk.MessageResponse
//	@Failure		401	{object}	fastkepsdk.APIError	"invalid_token"
//	@Failure		503	{object}	fastkepsdk.APIError	"temporarily_unavailable"
//	@Router			/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		fastkepsdk.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.AuthService.Logout(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("user logged out")
	httpx.WriteJSON(w, http.StatusOK, fastkepsdk.MessageResponse{Message: "Successfully logged out"})
}

// HandleMe returns the caller's identity.
//
//	@Summary		Current user
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	fastkepsdk.MeResponse
//	@Failure		401	{object}	fastkepsdk.APIError	"invalid_token"
//	@Router			/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		fastkepsdk.ErrInvalidToken.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, fastkepsdk.MeResponse{Identity: identity(p.User)})
}

func authResponse(msg string, res service.AuthResult, now time.Time) fastkepsdk.AuthResponse {
	return fastkepsdk.AuthResponse{
		Message:      msg,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn(res.Tokens.AccessExpiresAt, now),
		Identity:     identity(res.User),
	}
}

func identity(u domain.User) fastkepsdk.Identity {
	return fastkepsdk.Identity{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func expiresIn(exp, now time.Time) int {
	secs := math.Ceil(exp.Sub(now).Seconds())
	if secs < 0 {
		return 0
	}
	return int(secs)
}

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kopiteras/cafe/internal/account"
	"github.com/kopiteras/cafe/internal/api/middleware"
	"github.com/kopiteras/cafe/internal/api/response"
	"github.com/kopiteras/cafe/internal/api/validation"
	"github.com/kopiteras/cafe/internal/auth"
	"github.com/kopiteras/cafe/internal/metrics"
)

// FederatedProvider runs a browser redirect login against an external identity provider.
type FederatedProvider interface {
	Name() string
	Begin(w http.ResponseWriter, r *http.Request)
	Complete(w http.ResponseWriter, r *http.Request) (*auth.Profile, error)
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accountResponse struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	Name      *string `json:"name"`
	Role      string  `json:"role"`
	CreatedAt string  `json:"createdAt"`
}

func toAccountResponse(a *account.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Role:      string(a.Role),
		CreatedAt: formatTime(a.CreatedAt),
	}
}

type identityResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	IsAdmin   bool   `json:"isAdmin"`
	Image     string `json:"image"`
	ExpiresAt string `json:"expiresAt"`
}

func toIdentityResponse(id *auth.Identity) identityResponse {
	return identityResponse{
		ID:        id.AccountID,
		Email:     id.Email,
		Name:      id.Name,
		Role:      string(id.Role),
		IsAdmin:   id.IsAdmin(),
		Image:     id.AvatarURL(),
		ExpiresAt: formatTime(id.ExpiresAt),
	}
}

type sessionResponse struct {
	Token     string           `json:"token"`
	ExpiresAt string           `json:"expiresAt"`
	User      identityResponse `json:"user"`
}

// AuthHandler handles signup, login, session and federated login endpoints.
type AuthHandler struct {
	svc           *auth.Service
	provider      FederatedProvider
	metrics       *metrics.Metrics
	secureCookies bool
	loginRedirect string
}

// AuthOption configures an AuthHandler.
type AuthOption func(*AuthHandler)

// WithFederatedProvider enables the /auth/oidc endpoints.
func WithFederatedProvider(p FederatedProvider) AuthOption {
	return func(h *AuthHandler) { h.provider = p }
}

// WithSecureCookies sets the Secure flag on session cookies.
func WithSecureCookies(secure bool) AuthOption {
	return func(h *AuthHandler) { h.secureCookies = secure }
}

// WithAuthMetrics records login outcomes.
func WithAuthMetrics(m *metrics.Metrics) AuthOption {
	return func(h *AuthHandler) { h.metrics = m }
}

// WithLoginRedirect sets where the browser lands after a federated login.
func WithLoginRedirect(path string) AuthOption {
	return func(h *AuthHandler) { h.loginRedirect = path }
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *auth.Service, opts ...AuthOption) *AuthHandler {
	h := &AuthHandler{svc: svc, loginRedirect: "/"}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// FederatedEnabled reports whether a federated provider is configured.
func (h *AuthHandler) FederatedEnabled() bool {
	return h.provider != nil
}

// SignUp handles POST /auth/signup. Public signups always receive the user role.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req signUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if errs := validation.ValidateSignUpRequest(validation.SignUpRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	}); len(errs) > 0 {
		h.metrics.RecordAuth("signup", errors.New("validation"))
		validationFailed(w, r, errs)
		return
	}

	a, err := h.svc.SignUp(r.Context(), auth.SignUpRequest{Email: req.Email, Password: req.Password, Name: req.Name})
	h.metrics.RecordAuth("signup", err)
	if err != nil {
		if errors.Is(err, auth.ErrConflict) {
			response.Err(w, http.StatusConflict, "CONFLICT", "An account with this email already exists", requestID)
			return
		}
		slog.Error("failed to sign up", "error", err, "requestId", requestID)
		response.Internal(w, "Failed to create account", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toAccountResponse(a), requestID)
}

// Login handles POST /auth/login. Unknown emails, password-less accounts and
// wrong passwords produce the same response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	snap, err := h.svc.AuthenticateWithCredentials(r.Context(), strings.TrimSpace(req.Email), req.Password)
	h.metrics.RecordAuth("credentials", err)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Err(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", requestID)
			return
		}
		slog.Error("credential login failed", "error", err, "requestId", requestID)
		response.Internal(w, "Login failed", requestID)
		return
	}

	h.startSession(w, r, *snap)
}

// Refresh handles POST /auth/session/refresh. It re-issues the token so that
// role and name changes made since the last issuance take effect.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	h.startSession(w, r, identity.Snapshot())
}

// Logout handles POST /auth/logout. Tokens are stateless, so signing out only
// expires the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w)
	response.NoStore(w)
	response.NoContent(w)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	response.NoStore(w)
	response.Success(w, http.StatusOK, toIdentityResponse(identity), middleware.GetRequestID(r.Context()))
}

// FederatedBegin handles GET /auth/oidc/login.
func (h *AuthHandler) FederatedBegin(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Federated login is not enabled", middleware.GetRequestID(r.Context()))
		return
	}
	h.provider.Begin(w, r)
}

// FederatedCallback handles GET /auth/oidc/callback. On success the session
// cookie is set and the browser is redirected.
func (h *AuthHandler) FederatedCallback(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if h.provider == nil {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Federated login is not enabled", requestID)
		return
	}

	profile, err := h.provider.Complete(w, r)
	if err != nil {
		h.metrics.RecordAuth("federated", err)
		slog.Warn("federated login rejected", "provider", h.provider.Name(), "error", err, "requestId", requestID)
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Federated sign-in failed", requestID)
		return
	}

	snap, err := h.svc.AuthenticateWithFederatedProvider(r.Context(), *profile)
	h.metrics.RecordAuth("federated", err)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Federated sign-in failed", requestID)
			return
		}
		slog.Error("federated login failed", "error", err, "requestId", requestID)
		response.Internal(w, "Login failed", requestID)
		return
	}

	sess, ok := h.issue(w, r, *snap)
	if !ok {
		return
	}
	h.setCookie(w, sess.Token, sess.ExpiresAt)
	http.Redirect(w, r, h.loginRedirect, http.StatusFound)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, snap auth.Snapshot) {
	sess, ok := h.issue(w, r, snap)
	if !ok {
		return
	}

	h.setCookie(w, sess.Token, sess.ExpiresAt)
	response.NoStore(w)
	response.Success(w, http.StatusOK, sessionResponse{
		Token:     sess.Token,
		ExpiresAt: formatTime(sess.ExpiresAt),
		User:      toIdentityResponse(sess.Identity),
	}, middleware.GetRequestID(r.Context()))
}

func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, snap auth.Snapshot) (*auth.Session, bool) {
	requestID := middleware.GetRequestID(r.Context())

	sess, err := h.svc.IssueSessionToken(r.Context(), snap)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			h.clearCookie(w)
			response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Account no longer exists", requestID)
			return nil, false
		}
		slog.Error("failed to issue session", "error", err, "accountId", snap.ID, "requestId", requestID)
		response.Internal(w, "Failed to start session", requestID)
		return nil, false
	}
	return sess, true
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

package api

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	idmerrors "github.com/authsafe/authsafe/pkg/errors"
	"github.com/authsafe/authsafe/pkg/jwks"
	"github.com/authsafe/authsafe/pkg/oauth2"
)

// Handle exposes the OAuth2/OIDC HTTP surface
type Handle struct {
	service   *oauth2.AuthorizationService
	publisher *jwks.Publisher
}

// NewHandle creates a new OAuth2 API handler
func NewHandle(service *oauth2.AuthorizationService, publisher *jwks.Publisher) *Handle {
	return &Handle{
		service:   service,
		publisher: publisher,
	}
}

// Routes returns the /oauth2 router
func (h *Handle) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/authorize", h.Authorize)
	r.Post("/token", h.Token)
	r.Get("/userinfo", h.Userinfo)
	r.Get("/.well-known/jwks", h.JWKS)
	return r
}

// AuthorizeRequest is the authorize endpoint's JSON body
type AuthorizeRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthorizeResponse returns the issued code for the redirect leg
type AuthorizeResponse struct {
	AuthorizationCode string `json:"authorization_code"`
	State             string `json:"state,omitempty"`
	RedirectURI       string `json:"redirect_uri"`
}

// TokenRequest is the token endpoint's JSON body
type TokenRequest struct {
	GrantType    string `json:"grant_type"`
	Code         string `json:"code"`
	RedirectURI  string `json:"redirect_uri"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// TokenResponse carries the signed tokens
type TokenResponse struct {
	IDToken     string `json:"id_token"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// ErrorResponse represents an OAuth2 error response
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// Authorize handles POST /oauth2/authorize
func (h *Handle) Authorize(w http.ResponseWriter, r *http.Request) {
	var body AuthorizeRequest
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		renderError(w, r, idmerrors.New(idmerrors.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	query := r.URL.Query()
	params := oauth2.AuthorizeParams{
		Email:          body.Email,
		Password:       body.Password,
		ClientID:       query.Get("client_id"),
		OrganizationID: query.Get("organization_id"),
		RedirectURI:    query.Get("redirect_uri"),
		ResponseType:   query.Get("response_type"),
		Scopes:         splitScope(query.Get("scope")),
		State:          query.Get("state"),
		Nonce:          query.Get("nonce"),
		IP:             remoteIP(r),
	}

	result, err := h.service.Authorize(r.Context(), params)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, AuthorizeResponse{
		AuthorizationCode: result.Code,
		State:             result.State,
		RedirectURI:       result.RedirectURI,
	})
}

// Token handles POST /oauth2/token
func (h *Handle) Token(w http.ResponseWriter, r *http.Request) {
	var body TokenRequest
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		renderError(w, r, idmerrors.New(idmerrors.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	result, err := h.service.Exchange(r.Context(), oauth2.ExchangeParams{
		GrantType:    body.GrantType,
		Code:         body.Code,
		RedirectURI:  body.RedirectURI,
		ClientID:     body.ClientID,
		ClientSecret: body.ClientSecret,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, TokenResponse{
		IDToken:     result.IDToken,
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		ExpiresIn:   result.ExpiresIn,
	})
}

// Userinfo handles GET /oauth2/userinfo
func (h *Handle) Userinfo(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		renderError(w, r, idmerrors.Unauthorized("authorization header is missing or malformed"))
		return
	}

	claims, err := h.service.Userinfo(r.Context(), strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, claims)
}

// JWKS handles GET /oauth2/.well-known/jwks
func (h *Handle) JWKS(w http.ResponseWriter, r *http.Request) {
	organizationID := r.URL.Query().Get("organization_id")
	if organizationID == "" {
		renderError(w, r, idmerrors.New(idmerrors.ErrCodeInvalidInput, "organization_id is required"))
		return
	}

	document, err := h.publisher.GetJWKS(r.Context(), organizationID)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, document)
}

// renderError maps a service error to its HTTP status and a stable OAuth2
// error body. Internal and tenant-misconfiguration errors are logged with
// full context and surfaced without detail.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	code := idmerrors.GetCode(err)
	status := idmerrors.MapErrorCodeToHTTPStatus(code)

	description := err.Error()
	var structured *idmerrors.Error
	if errors.As(err, &structured) {
		description = structured.Message
	}

	if status >= http.StatusInternalServerError {
		slog.Error("OAuth2 request failed",
			"path", r.URL.Path, "code", code, "err", err)
		description = "internal server error"
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{
		Error:            strings.ToLower(string(code)),
		ErrorDescription: description,
	})
}

func splitScope(scope string) []string {
	if scope == "" {
		return nil
	}
	return strings.Fields(scope)
}

// remoteIP extracts the caller IP for audit records, preferring the
// X-Forwarded-For header set by the load balancer
func remoteIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

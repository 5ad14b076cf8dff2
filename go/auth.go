package adoptionserver

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/pet-adoption-api/internal/platform/auth"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
)

// Development identity headers, honoured only when no token verifier is configured.
const (
	HeaderDebugUserID    = "X-Debug-User-ID"
	HeaderDebugUserEmail = "X-Debug-User-Email"
)

// SessionResolver maps an opaque session token to its principal.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (identity.Principal, error)
}

// Authenticator resolves the principal of each request from a bearer JWT, a
// session token, or (in development) the debug headers.
type Authenticator struct {
	verifier *auth.Verifier
	sessions SessionResolver
	logger   *slog.Logger
}

// NewAuthenticator wires token verification. A nil verifier enables the debug headers.
func NewAuthenticator(verifier *auth.Verifier, sessions SessionResolver, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Authenticator{verifier: verifier, sessions: sessions, logger: logger}
}

// Middleware stores the resolved principal on the request context. Anonymous
// requests pass through; RequirePrincipal gates the routes that need a user.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if principal, ok := a.resolve(c); ok {
			ctx := identity.WithPrincipal(c.Request.Context(), principal)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

func (a *Authenticator) resolve(c *gin.Context) (identity.Principal, bool) {
	ctx := c.Request.Context()
	if token := bearerToken(c); token != "" {
		if a.verifier != nil {
			principal, err := a.verifier.Verify(token)
			if err == nil {
				return principal, true
			}
			a.logger.LogAttrs(ctx, slog.LevelDebug, "bearer token rejected", slog.String("error", err.Error()))
		}
		if a.sessions != nil {
			principal, err := a.sessions.ResolveSession(ctx, token)
			if err == nil {
				return principal, true
			}
			a.logger.LogAttrs(ctx, slog.LevelDebug, "session token rejected", slog.String("error", err.Error()))
		}
		return identity.Principal{}, false
	}
	if a.verifier != nil {
		return identity.Principal{}, false
	}
	principal := identity.Principal{
		UserID: strings.TrimSpace(c.GetHeader(HeaderDebugUserID)),
		Email:  strings.TrimSpace(c.GetHeader(HeaderDebugUserEmail)),
	}
	if principal.Anonymous() {
		return identity.Principal{}, false
	}
	return principal, true
}

// bearerToken reads the Authorization header, then the access_token query parameter used by websocket clients.
func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return strings.TrimSpace(c.Query("access_token"))
}

// RequirePrincipal aborts with 401 when the request carries no principal.
func RequirePrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := identity.Require(c.Request.Context()); err != nil {
			respondServiceError(c, err)
			return
		}
		c.Next()
	}
}

func currentPrincipal(c *gin.Context) identity.Principal {
	principal, _ := identity.FromContext(c.Request.Context())
	return principal
}

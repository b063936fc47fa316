package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"hotel-backoffice/internal/core/auth"
	"hotel-backoffice/internal/domain"
	resp "hotel-backoffice/internal/transport/http/response"
)

const (
	KeyCaller  = "caller"
	KeyClaims  = "claims"
	keyAuthErr = "authErr"
)

// Resolver turns a bearer token into the caller it was issued to.
type Resolver interface {
	Resolve(ctx context.Context, token string) (domain.Caller, *auth.Claims, error)
}

// AdminChecker reports Forbidden unless caller holds the admin role.
type AdminChecker interface {
	RequireAdmin(ctx context.Context, caller domain.Caller) error
}

// Authenticate resolves the bearer token when one is presented. It never aborts:
// routes that need a caller call Authenticated (or mount RequireAuth), public routes
// ignore the outcome.
func Authenticate(r Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if ah == "" {
			c.Next()
			return
		}
		scheme, token, ok := strings.Cut(ah, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.Set(keyAuthErr, domain.Unauthorized("malformed authorization header"))
			c.Next()
			return
		}
		caller, claims, err := r.Resolve(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			c.Set(keyAuthErr, err)
			c.Next()
			return
		}
		c.Set(KeyCaller, caller)
		c.Set(KeyClaims, claims)
		c.Next()
	}
}

// RequireAuth aborts unless Authenticate produced a caller.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := Authenticated(c); err != nil {
			resp.Fail(c, err)
			return
		}
		c.Next()
	}
}

// RequireAdmin aborts unless the authenticated caller is an admin.
func RequireAdmin(a AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := Authenticated(c); err != nil {
			resp.Fail(c, err)
			return
		}
		if err := a.RequireAdmin(c.Request.Context(), CallerFrom(c)); err != nil {
			resp.Fail(c, err)
			return
		}
		c.Next()
	}
}

// Authenticated returns nil when the request carries a resolved caller, otherwise
// the resolution error or Unauthorized.
func Authenticated(c *gin.Context) error {
	if !CallerFrom(c).Anonymous() {
		return nil
	}
	if v, ok := c.Get(keyAuthErr); ok {
		if err, ok := v.(error); ok {
			return err
		}
	}
	return domain.Unauthorized("not authenticated")
}

// CallerFrom returns the resolved caller, or the anonymous zero value.
func CallerFrom(c *gin.Context) domain.Caller {
	if v, ok := c.Get(KeyCaller); ok {
		if caller, ok := v.(domain.Caller); ok {
			return caller
		}
	}
	return domain.Caller{}
}

func ClaimsFrom(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(KeyClaims); ok {
		if cl, ok := v.(*auth.Claims); ok {
			return cl
		}
	}
	return nil
}

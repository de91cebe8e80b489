// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements Identity(), the middleware that resolves the caller's
// tenant and user for every request. The platform is multi-tenant: every
// storage query is partitioned by tenant ID, so the resolved tenant is the
// single most security-sensitive value in the request context.
//
// Resolution order:
//  1. Bearer token (Authorization header) signed with the configured HS256
//     secret; tenant and user come from the "tenant_id" and "sub" claims.
//  2. Demo headers X-Tenant-ID / X-User-ID, accepted only when no JWT secret
//     is configured (local development and tests).
//
// When a secret is configured, requests with a missing or invalid token are
// rejected with 401 before reaching any handler.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys populated by Identity for downstream handlers.
const (
	ctxKeyTenantID = "tenantID"
	ctxKeyUserID   = "userID"
)

// IdentityClaims is the JWT claim set issued to API clients. TenantID scopes
// every operation; Subject identifies the acting user.
type IdentityClaims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// Identity returns a Gin middleware that authenticates the request and stores
// tenantID / userID in the Gin context.
//
// With an empty secret the middleware runs in demo mode: identity comes from
// the X-Tenant-ID and X-User-ID headers and no request is rejected. With a
// secret set, a valid HS256 bearer token is mandatory.
func Identity(secret string) gin.HandlerFunc {
	demoMode := secret == ""

	return func(c *gin.Context) {
		if demoMode {
			if t := strings.TrimSpace(c.GetHeader("X-Tenant-ID")); t != "" {
				c.Set(ctxKeyTenantID, t)
			}
			if u := strings.TrimSpace(c.GetHeader("X-User-ID")); u != "" {
				c.Set(ctxKeyUserID, u)
			}
			c.Next()
			return
		}

		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			unauthorized(c, "missing bearer token")
			return
		}

		claims := &IdentityClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			unauthorized(c, "invalid or expired token")
			return
		}
		if claims.TenantID == "" || claims.Subject == "" {
			unauthorized(c, "token missing tenant_id or sub claim")
			return
		}

		c.Set(ctxKeyTenantID, claims.TenantID)
		c.Set(ctxKeyUserID, claims.Subject)
		c.Next()
	}
}

// bearerToken extracts the raw token from an "Authorization: Bearer <tok>"
// header value, returning "" when the scheme doesn't match.
func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// unauthorized aborts the request with the standard error envelope.
func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       "unauthorized",
		"message":    msg,
	})
}

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mentorhub/go-services/internal/resource"
)

// Context keys populated for authenticated requests.
const (
	ClaimsKey     = "claims"
	TokenKey      = "token"
	BreadcrumbKey = "breadcrumb"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// AuthMiddleware returns a Gin middleware that verifies Bearer tokens
// using the provided verifier, then stores the caller identity and a
// fresh audit breadcrumb on the request context for the resource
// handlers.
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		// Expect 'Bearer <token>'
		var raw string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &raw); n != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		idToken, err := ver.Verify(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var claims map[string]interface{}
		if err := idToken.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "failed to parse claims"})
			return
		}

		tok := tokenFromClaims(claims)
		bc := resource.Breadcrumb{
			AtTime:        time.Now().UTC(),
			ByUser:        tok.UserID,
			FromIP:        c.ClientIP(),
			CorrelationID: correlationID(c),
		}

		c.Set(ClaimsKey, claims)
		c.Set(TokenKey, tok)
		c.Set(BreadcrumbKey, bc)
		c.Next()
	}
}

// tokenFromClaims extracts subject and roles. Roles come from a flat
// "roles" claim or, for Keycloak tokens, from realm_access.roles.
func tokenFromClaims(claims map[string]interface{}) resource.Token {
	tok := resource.Token{}
	tok.UserID, _ = claims["sub"].(string)
	if rs, ok := claims["roles"].([]interface{}); ok {
		tok.Roles = toStrings(rs)
		return tok
	}
	if ra, ok := claims["realm_access"].(map[string]interface{}); ok {
		if rs, ok := ra["roles"].([]interface{}); ok {
			tok.Roles = toStrings(rs)
		}
	}
	return tok
}

func toStrings(vs []interface{}) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// correlationID honors a caller-supplied X-Correlation-Id so related
// requests can be traced end to end; otherwise a fresh id is minted.
func correlationID(c *gin.Context) string {
	if h := c.GetHeader("X-Correlation-Id"); h != "" {
		return h
	}
	return uuid.NewString()
}

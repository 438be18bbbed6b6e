// Package jwt authenticates requests carrying a bearer token issued by the
// backend-as-a-service auth provider. Tokens are HMAC signed with the shared
// project secret and identify the user in the "sub" claim.
package jwt

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jonesrussell/quillglow/infrastructure/logger"
)

const (
	claimsKey    = "claims"
	bearerPrefix = "Bearer "
)

var (
	errMissingToken  = errors.New("missing bearer token")
	errSigningMethod = errors.New("unexpected signing method")
	errNoSubject     = errors.New("token has no subject")
)

// Claims are the token claims the service relies on.
type Claims struct {
	Sub   string `json:"sub"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Middleware rejects requests without a valid token. Every failure produces
// the same 401 body so callers cannot probe which check failed. Accepted
// requests get user_id attached to their context logger.
func Middleware(secret string) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		claims, err := parse(c.GetHeader("Authorization"), key)
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(claimsKey, claims)
		c.Request = c.Request.WithContext(
			logger.AddFields(c.Request.Context(), logger.String("user_id", claims.Sub)),
		)
		c.Next()
	}
}

func parse(header string, key []byte) (*Claims, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil, errMissingToken
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if tokenString == "" {
		return nil, errMissingToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errSigningMethod
		}
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	if claims.Sub == "" {
		return nil, errNoSubject
	}

	return claims, nil
}

// GetClaims returns the claims stored by Middleware.
func GetClaims(c *gin.Context) (*Claims, bool) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	cl, ok := v.(*Claims)
	return cl, ok
}

// UserID returns the authenticated user id, or "" when the request is anonymous.
func UserID(c *gin.Context) string {
	if cl, ok := GetClaims(c); ok {
		return cl.Sub
	}
	return ""
}

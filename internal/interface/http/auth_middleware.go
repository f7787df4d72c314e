package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/projecthub/internal/domain/auth"
	"github.com/yanqian/projecthub/pkg/metrics"
)

const bearerPrefix = "Bearer "

// TokenVerifier validates a bearer token and returns its identity.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// authMiddleware rejects requests without a valid bearer token.
func authMiddleware(verifier TokenVerifier, m *metrics.Auth) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			m.ObserveGateRejection(auth.CodeMissingToken)
			abortWithError(c, fromDomainError(auth.ErrMissingToken()))
			return
		}
		claims, err := verifier.Verify(token)
		if err != nil {
			m.ObserveGateRejection(auth.CodeInvalidToken)
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, auth.CodeInvalidToken, "invalid or expired token", err))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// optionalAuthMiddleware attaches the identity when a valid token is present and
// otherwise lets the request through anonymously.
func optionalAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if claims, err := verifier.Verify(token); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// bearerToken requires the literal "Bearer " prefix followed by a non-empty token.
func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

package http

import (
	"github.com/gin-gonic/gin"

	"github.com/yanqian/projecthub/internal/domain/auth"
)

const authClaimsKey = "auth_claims"

// setClaims stores the identity on the gin context and on the request context so
// domain services can read it through auth.ClaimsFrom.
func setClaims(c *gin.Context, claims auth.Claims) {
	c.Set(authClaimsKey, claims)
	c.Request = c.Request.WithContext(auth.WithClaims(c.Request.Context(), claims))
}

func getClaims(c *gin.Context) (auth.Claims, bool) {
	value, ok := c.Get(authClaimsKey)
	if !ok {
		return auth.Claims{}, false
	}
	claims, ok := value.(auth.Claims)
	return claims, ok
}

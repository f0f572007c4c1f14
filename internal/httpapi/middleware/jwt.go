// Package middleware carries the gin request-level collaborators: bearer
// token verification, grounded on the api-gateway's JWTAuth middleware but
// trimmed to the thin claims this core actually reads (spec §6's JWT
// external-collaborator contract).
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/padelhub/reservation-core/pkg/auth"
)

const contextUserIDKey = "sub"

func JWTAuth(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		tok := strings.TrimPrefix(h, "Bearer ")
		claims, err := verifier.ParseValidate(tok)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set(contextUserIDKey, claims.Sub)
		c.Next()
	}
}

// UserID reads the subject claim set by JWTAuth.
func UserID(c *gin.Context) string {
	v, _ := c.Get(contextUserIDKey)
	id, _ := v.(string)
	return id
}

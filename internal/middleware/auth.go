package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quad400/kaydee-boutique/internal/domain"
	"github.com/sirupsen/logrus"
)

const principalKey = "principal"

// Authenticate resolves the bearer token to a principal and stores it on the
// context. Requests without a live session never reach the handler.
func Authenticate(resolver domain.SessionRepository, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Middleware: Authorization header is missing")
			abort(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Middleware: Invalid Authorization header format")
			abort(c, http.StatusUnauthorized, "Invalid Authorization header format")
			return
		}

		token, err := uuid.Parse(parts[1])
		if err != nil {
			log.Warn("Middleware: Bearer token is not a valid token")
			abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		principal, err := resolver.ResolveSession(c.Request.Context(), token.String())
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				abort(c, http.StatusUnauthorized, err.Error())
				return
			}
			log.Errorf("Middleware: Failed to resolve session: %v", err)
			abort(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		log.Debugf("Middleware: Authenticated user %s (%s)", principal.ID, principal.Role)
		c.Set(principalKey, principal)
		c.Next()
	}
}

// PrincipalFrom returns the principal set by Authenticate, or nil.
func PrincipalFrom(c *gin.Context) *domain.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*domain.Principal)
	return p
}

func abort(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{"Status": "Fail", "Message": message})
}

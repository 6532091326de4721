package auth

import (
	"net/http"
	"strings"

	"outbound-caller/internal/apierrors"
	"outbound-caller/internal/observability"

	"github.com/gin-gonic/gin"
)

// SubjectKey is the gin context key holding the authenticated subject.
const SubjectKey = "Subject"

// Middleware rejects requests without a valid bearer token.
func (a *Authenticator) Middleware(c *gin.Context) {
	ctx := c.Request.Context()
	header := c.GetHeader("Authorization")

	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, apierrors.ErrorResponse{
			Error: "Authorization token is missing or invalid",
			Code:  apierrors.CodeUnauthorized,
		})
		return
	}

	claims, err := a.ValidateToken(ctx, strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, apierrors.ErrorResponse{
			Error: err.Error(),
			Code:  apierrors.CodeUnauthorized,
		})
		return
	}

	c.Set(SubjectKey, claims.Subject)
	ctx = observability.WithFields(ctx, observability.Field{Key: "subject", Value: claims.Subject})
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

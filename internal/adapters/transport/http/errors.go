package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	customErrors "github.com/okravchenko/contactbook/internal/domain/errors"
)

// handleError is the single place where domain errors become client-visible
// status codes. Infrastructure failures never leak detail.
func handleError(c *gin.Context, err error) {
	switch {
	case customErrors.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case customErrors.IsInvalidCredentials(err):
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
	case customErrors.IsEmailNotConfirmed(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email is not confirmed"})
	case customErrors.IsInvalidRefreshToken(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
	case customErrors.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case customErrors.IsTokenMalformed(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Token is not correct"})
	case customErrors.IsVerification(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Verification error"})
	case customErrors.IsForbidden(err):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case customErrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case customErrors.IsInvalidToken(err):
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

package controllers

import (
    "errors"
    "net/http"

    "github.com/gin-gonic/gin"

    "github.com/olehb/contactly/internal/auth"
)

// respondAuthError maps the auth service's error kinds onto HTTP statuses.
// Raw store errors never reach here; the service folds them into
// ErrStoreUnavailable.
func respondAuthError(c *gin.Context, err error) {
    switch {
    case errors.Is(err, auth.ErrInvalidCredentials):
        c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
    case errors.Is(err, auth.ErrNotVerified):
        c.JSON(http.StatusUnauthorized, gin.H{"error": "email not verified"})
    case errors.Is(err, auth.ErrInvalidToken):
        c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
    case errors.Is(err, auth.ErrRevoked):
        c.JSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
    case errors.Is(err, auth.ErrUnauthenticated):
        c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
    case errors.Is(err, auth.ErrUsernameTaken):
        c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
    case errors.Is(err, auth.ErrEmailTaken):
        c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
    case errors.Is(err, auth.ErrStoreUnavailable):
        c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
    default:
        c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
    }
}

package middleware

import (
    "errors"
    "net/http"
    "strings"

    "github.com/gin-gonic/gin"

    "github.com/olehb/contactly/internal/auth"
    "github.com/olehb/contactly/internal/models"
)

const userKey = "user"

// Auth checks the bearer token on every protected endpoint and attaches the
// resolved user to the request context.
func Auth(authenticator *auth.Authenticator) gin.HandlerFunc {
    return func(c *gin.Context) {
        header := c.GetHeader("Authorization")
        if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
            c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization header"})
            return
        }
        tokenStr := strings.TrimSpace(header[len("Bearer "):])

        user, err := authenticator.Authenticate(c.Request.Context(), tokenStr)
        if err != nil {
            if errors.Is(err, auth.ErrStoreUnavailable) {
                c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
                return
            }
            c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
            return
        }
        c.Set(userKey, *user)
        c.Next()
    }
}

// CurrentUser returns the user attached by Auth.
func CurrentUser(c *gin.Context) (models.User, bool) {
    val, ok := c.Get(userKey)
    if !ok {
        return models.User{}, false
    }
    user, ok := val.(models.User)
    return user, ok
}

func RequireRoles(roles ...string) gin.HandlerFunc {
    allowed := map[string]struct{}{}
    for _, r := range roles {
        allowed[r] = struct{}{}
    }
    return func(c *gin.Context) {
        user, ok := CurrentUser(c)
        if !ok {
            c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
            return
        }
        if _, ok := allowed[user.Role]; !ok {
            // admin passes any role-gate
            if user.Role != models.RoleAdmin {
                c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
                return
            }
        }
        c.Next()
    }
}

package controllers

import (
    "net/http"

    "github.com/gin-gonic/gin"

    "github.com/olehb/contactly/internal/auth"
)

type AuthController struct {
    Auth *auth.Service
}

type registerRequest struct {
    Username string `json:"username" binding:"required,min=3,max=50"`
    Email    string `json:"email" binding:"required,email"`
    Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
    Email    string `json:"email" binding:"required,email"`
    Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
    RefreshToken string `json:"refresh_token" binding:"required"`
}

type logoutRequest struct {
    RefreshToken string `json:"refresh_token" binding:"required"`
}

type requestEmailRequest struct {
    Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
    Token       string `json:"token" binding:"required"`
    NewPassword string `json:"new_password" binding:"required,min=6"`
}

func clientMeta(c *gin.Context) auth.ClientMeta {
    return auth.ClientMeta{
        IPAddress: c.ClientIP(),
        UserAgent: c.Request.UserAgent(),
    }
}

func tokenPairResponse(pair *auth.TokenPair) gin.H {
    return gin.H{
        "access_token":       pair.AccessToken,
        "token_type":         "Bearer",
        "expires_in":         pair.ExpiresIn,
        "refresh_token":      pair.RefreshToken,
        "refresh_expires_in": pair.RefreshExpiresIn,
    }
}

func (a *AuthController) Register(c *gin.Context) {
    var req registerRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    user, err := a.Auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
    if err != nil {
        respondAuthError(c, err)
        return
    }
    c.JSON(http.StatusCreated, gin.H{
        "id":       user.ID,
        "username": user.Username,
        "email":    user.Email,
        "avatar":   user.Avatar,
        "role":     user.Role,
    })
}

func (a *AuthController) Login(c *gin.Context) {
    var req loginRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    pair, err := a.Auth.Login(c.Request.Context(), req.Email, req.Password, clientMeta(c))
    if err != nil {
        respondAuthError(c, err)
        return
    }
    c.JSON(http.StatusOK, tokenPairResponse(pair))
}

func (a *AuthController) Refresh(c *gin.Context) {
    var req refreshRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    pair, err := a.Auth.Refresh(c.Request.Context(), req.RefreshToken, clientMeta(c))
    if err != nil {
        respondAuthError(c, err)
        return
    }
    c.JSON(http.StatusOK, tokenPairResponse(pair))
}

func (a *AuthController) Logout(c *gin.Context) {
    var req logoutRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    accessToken := bearerToken(c)
    if err := a.Auth.Logout(c.Request.Context(), accessToken, req.RefreshToken); err != nil {
        respondAuthError(c, err)
        return
    }
    c.Status(http.StatusNoContent)
}

func (a *AuthController) ConfirmEmail(c *gin.Context) {
    alreadyConfirmed, err := a.Auth.ConfirmEmail(c.Request.Context(), c.Param("token"))
    if err != nil {
        respondAuthError(c, err)
        return
    }
    if alreadyConfirmed {
        c.JSON(http.StatusOK, gin.H{"message": "email already confirmed"})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "email confirmed"})
}

func (a *AuthController) RequestEmail(c *gin.Context) {
    var req requestEmailRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    if err := a.Auth.ResendVerification(c.Request.Context(), req.Email); err != nil {
        respondAuthError(c, err)
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "check your email for confirmation"})
}

func (a *AuthController) RequestPasswordReset(c *gin.Context) {
    var req requestEmailRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    if err := a.Auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
        respondAuthError(c, err)
        return
    }
    // Same shape whether or not the account exists.
    c.JSON(http.StatusOK, gin.H{"message": "check your email for reset instructions"})
}

func (a *AuthController) ResetPassword(c *gin.Context) {
    var req resetPasswordRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    if err := a.Auth.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
        respondAuthError(c, err)
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func bearerToken(c *gin.Context) string {
    header := c.GetHeader("Authorization")
    if len(header) > len("Bearer ") {
        return header[len("Bearer "):]
    }
    return ""
}

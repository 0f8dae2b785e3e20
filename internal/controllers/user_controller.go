package controllers

import (
    "fmt"
    "net/http"
    "path/filepath"
    "strconv"

    "github.com/gin-gonic/gin"

    "github.com/olehb/contactly/internal/middleware"
    "github.com/olehb/contactly/internal/models"
    "github.com/olehb/contactly/internal/repository"
    "github.com/olehb/contactly/internal/upload"
)

type UserController struct {
    Users   *repository.UserRepository
    Avatars upload.Storage
}

func userResponse(user models.User) gin.H {
    return gin.H{
        "id":         user.ID,
        "username":   user.Username,
        "email":      user.Email,
        "avatar":     user.Avatar,
        "role":       user.Role,
        "confirmed":  user.Confirmed,
        "created_at": user.CreatedAt,
    }
}

func (u *UserController) Me(c *gin.Context) {
    user, _ := middleware.CurrentUser(c)
    c.JSON(http.StatusOK, userResponse(user))
}

func (u *UserController) UpdateAvatar(c *gin.Context) {
    user, _ := middleware.CurrentUser(c)

    file, err := c.FormFile("file")
    if err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
        return
    }
    src, err := file.Open()
    if err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
        return
    }
    defer src.Close()

    name := fmt.Sprintf("avatar_%d%s", user.ID, filepath.Ext(file.Filename))
    url, err := u.Avatars.Save(name, src)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
        return
    }
    if err := u.Users.UpdateAvatar(c.Request.Context(), user.ID, url); err != nil {
        c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
        return
    }
    user.Avatar = url
    c.JSON(http.StatusOK, userResponse(user))
}

func (u *UserController) ListUsers(c *gin.Context) {
    limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
    offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
    if limit <= 0 || limit > 100 {
        limit = 50
    }
    users, err := u.Users.List(c.Request.Context(), limit, offset)
    if err != nil {
        c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
        return
    }
    out := make([]gin.H, 0, len(users))
    for _, user := range users {
        out = append(out, userResponse(user))
    }
    c.JSON(http.StatusOK, out)
}

func (u *UserController) ModeratorPanel(c *gin.Context) {
    user, _ := middleware.CurrentUser(c)
    c.JSON(http.StatusOK, gin.H{"message": "welcome, moderator " + user.Username})
}

func (u *UserController) AdminPanel(c *gin.Context) {
    user, _ := middleware.CurrentUser(c)
    c.JSON(http.StatusOK, gin.H{"message": "welcome, admin " + user.Username})
}

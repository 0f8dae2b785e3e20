package routes

import (
    "github.com/gin-gonic/gin"
    "gorm.io/gorm"

    "github.com/olehb/contactly/internal/auth"
    "github.com/olehb/contactly/internal/cache"
    "github.com/olehb/contactly/internal/config"
    "github.com/olehb/contactly/internal/controllers"
    "github.com/olehb/contactly/internal/mail"
    "github.com/olehb/contactly/internal/middleware"
    "github.com/olehb/contactly/internal/models"
    "github.com/olehb/contactly/internal/repository"
    "github.com/olehb/contactly/internal/token"
    "github.com/olehb/contactly/internal/upload"
)

type Deps struct {
    DB          *gorm.DB
    Revocations cache.RevocationStore
    UserCache   cache.UserCache
    Mailer      mail.Mailer
    Avatars     upload.Storage
}

func Register(r *gin.Engine, cfg *config.Config, deps Deps) {
    codec := token.NewCodec(cfg.JWTSecret, "contactly", token.TTLPolicy{
        Access:        cfg.AccessTokenTTL(),
        Refresh:       cfg.RefreshTokenTTL(),
        EmailVerify:   cfg.VerifyTokenTTL(),
        PasswordReset: cfg.VerifyTokenTTL(),
    })

    users := repository.NewUserRepository(deps.DB)
    refreshToks := repository.NewRefreshTokenRepository(deps.DB)
    contacts := repository.NewContactRepository(deps.DB)

    authSvc := auth.NewService(users, refreshToks, deps.Revocations, deps.UserCache,
        codec, auth.BcryptHasher{}, deps.Mailer, cfg.BaseURL)
    authenticator := auth.NewAuthenticator(codec, deps.Revocations, deps.UserCache, users)

    authCtrl := &controllers.AuthController{Auth: authSvc}
    userCtrl := &controllers.UserController{Users: users, Avatars: deps.Avatars}
    contactCtrl := &controllers.ContactController{Contacts: contacts}

    limited := middleware.RateLimit(cfg.LoginRate())
    authMW := middleware.Auth(authenticator)

    r.Static("/uploads", cfg.UploadDir)

    // Public
    authGroup := r.Group("/api/auth")
    {
        authGroup.POST("/register", authCtrl.Register)
        authGroup.POST("/login", limited, authCtrl.Login)
        authGroup.POST("/refresh", limited, authCtrl.Refresh)
        authGroup.GET("/confirm/:token", authCtrl.ConfirmEmail)
        authGroup.POST("/request-email", limited, authCtrl.RequestEmail)
        authGroup.POST("/request-password-reset", limited, authCtrl.RequestPasswordReset)
        authGroup.POST("/reset-password", limited, authCtrl.ResetPassword)
    }

    // Protected
    api := r.Group("/api", authMW)
    {
        api.POST("/auth/logout", authCtrl.Logout)

        userGroup := api.Group("/users")
        {
            userGroup.GET("/me", userCtrl.Me)
            userGroup.PATCH("/avatar", userCtrl.UpdateAvatar)
            userGroup.GET("/moderator", middleware.RequireRoles(models.RoleModerator), userCtrl.ModeratorPanel)
            userGroup.GET("/admin", middleware.RequireRoles(models.RoleAdmin), userCtrl.AdminPanel)
            userGroup.GET("", middleware.RequireRoles(models.RoleAdmin), userCtrl.ListUsers)
        }

        contactGroup := api.Group("/contacts")
        {
            contactGroup.GET("", contactCtrl.List)
            contactGroup.POST("", contactCtrl.Create)
            contactGroup.GET("/search", contactCtrl.Search)
            contactGroup.GET("/birthdays", contactCtrl.UpcomingBirthdays)
            contactGroup.GET("/:id", contactCtrl.Get)
            contactGroup.PUT("/:id", contactCtrl.Update)
            contactGroup.DELETE("/:id", contactCtrl.Delete)
        }
    }
}

package main

import (
    "context"
    "log"
    "os"

    "github.com/joho/godotenv"

    "github.com/gin-gonic/gin"

    "github.com/olehb/contactly/internal/cache"
    "github.com/olehb/contactly/internal/config"
    "github.com/olehb/contactly/internal/database"
    "github.com/olehb/contactly/internal/mail"
    "github.com/olehb/contactly/internal/routes"
    "github.com/olehb/contactly/internal/upload"
)

func main() {
    // Load .env (non-fatal if missing in production)
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := database.Connect(cfg)
    if err != nil {
        log.Fatalf("database connection failed: %v", err)
    }

    if err := database.Migrate(db); err != nil {
        log.Fatalf("database migration failed: %v", err)
    }

    if err := database.SeedAdmin(db, cfg); err != nil {
        log.Fatalf("admin seed failed: %v", err)
    }

    var (
        revocations cache.RevocationStore
        userCache   cache.UserCache
    )
    if cfg.RedisURL != "" {
        store, err := cache.NewRedisStore(cfg.RedisURL, cfg.UserCacheTTL())
        if err != nil {
            log.Fatalf("redis connection failed: %v", err)
        }
        defer store.Close()
        revocations, userCache = store, store
    } else {
        log.Println("REDIS_URL not set, using in-process revocation cache")
        store := cache.NewMemoryStore(cfg.UserCacheTTL())
        revocations, userCache = store, store
    }

    var mailer mail.Mailer = mail.Noop{}
    if cfg.MailHost != "" {
        mailer = mail.NewSMTPMailer(mail.SMTPConfig{
            Host:     cfg.MailHost,
            Port:     cfg.MailPort,
            Username: cfg.MailUsername,
            Password: cfg.MailPassword,
            From:     cfg.MailFrom,
            FromName: cfg.MailFromName,
        })
    } else {
        log.Println("MAIL_HOST not set, outgoing mail disabled")
    }

    avatars, err := upload.NewLocalStorage(cfg.UploadDir, cfg.BaseURL)
    if err != nil {
        log.Fatalf("upload storage init failed: %v", err)
    }

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()
    database.StartTokenCleanup(ctx, db)

    r := gin.Default()
    routes.Register(r, cfg, routes.Deps{
        DB:          db,
        Revocations: revocations,
        UserCache:   userCache,
        Mailer:      mailer,
        Avatars:     avatars,
    })

    port := cfg.Port
    if port == "" {
        port = "8080"
    }

    if err := r.Run(":" + port); err != nil {
        log.Println("server exited with error:", err)
        os.Exit(1)
    }
}

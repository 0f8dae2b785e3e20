package database

import (
    "context"
    "fmt"
    "log"
    "time"

    "gorm.io/driver/postgres"
    "gorm.io/gorm"

    "github.com/olehb/contactly/internal/auth"
    "github.com/olehb/contactly/internal/config"
    "github.com/olehb/contactly/internal/models"
    "github.com/olehb/contactly/internal/repository"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
    dsn := fmt.Sprintf(
        "host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
        cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode,
    )
    return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

func Migrate(db *gorm.DB) error {
    return db.AutoMigrate(&models.User{}, &models.RefreshToken{}, &models.Contact{})
}

// SeedAdmin creates the initial admin account when no admin exists yet.
func SeedAdmin(db *gorm.DB, cfg *config.Config) error {
    var count int64
    if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
        return err
    }
    if count > 0 {
        return nil
    }

    hashed, err := auth.BcryptHasher{}.Hash(cfg.AdminPassword)
    if err != nil {
        return err
    }
    admin := models.User{
        Username:  cfg.AdminUsername,
        Email:     cfg.AdminEmail,
        Password:  hashed,
        Role:      models.RoleAdmin,
        Confirmed: true,
        Active:    true,
    }
    if err := db.Create(&admin).Error; err != nil {
        return err
    }
    log.Println("Seeded initial admin:", admin.Email)
    return nil
}

// StartTokenCleanup prunes expired and long-revoked refresh-token records
// every hour until ctx is cancelled.
func StartTokenCleanup(ctx context.Context, db *gorm.DB) {
    repo := repository.NewRefreshTokenRepository(db)
    ticker := time.NewTicker(time.Hour)
    go func() {
        defer ticker.Stop()
        for {
            select {
            case <-ctx.Done():
                return
            case <-ticker.C:
                now := time.Now().UTC()
                if err := repo.DeleteExpired(ctx, now, now.Add(-7*24*time.Hour)); err != nil {
                    log.Println("token cleanup failed:", err)
                } else {
                    log.Println("expired refresh tokens cleaned up")
                }
            }
        }
    }()
}

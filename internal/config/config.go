package config

import (
    "os"
    "strconv"
    "time"
)

type Config struct {
    Port      string
    DBHost    string
    DBPort    string
    DBUser    string
    DBPassword string
    DBName    string
    DBSSLMode string

    RedisURL string

    JWTSecret string
    AccessTokenTTLMinutes string // minutes
    RefreshTokenTTLDays   string // days
    VerifyTokenTTLHours   string // hours, email verification and password reset
    UserCacheTTLMinutes   string // minutes

    MailHost     string
    MailPort     string
    MailUsername string
    MailPassword string
    MailFrom     string
    MailFromName string

    AdminEmail    string
    AdminPassword string
    AdminUsername string

    UploadDir string
    BaseURL   string

    LoginRatePerMinute string
}

func Load() *Config {
    return &Config{
        Port:       getenv("PORT", "8080"),
        DBHost:     getenv("DB_HOST", "localhost"),
        DBPort:     getenv("DB_PORT", "5432"),
        DBUser:     getenv("DB_USER", "postgres"),
        DBPassword: getenv("DB_PASSWORD", "postgres"),
        DBName:     getenv("DB_NAME", "contactly_db"),
        DBSSLMode:  getenv("DB_SSLMODE", "disable"),

        RedisURL: getenv("REDIS_URL", ""),

        JWTSecret:             getenv("JWT_SECRET", "supersecret_change_me"),
        AccessTokenTTLMinutes: getenv("ACCESS_TOKEN_TTL_MINUTES", "15"),
        RefreshTokenTTLDays:   getenv("REFRESH_TOKEN_TTL_DAYS", "7"),
        VerifyTokenTTLHours:   getenv("VERIFY_TOKEN_TTL_HOURS", "24"),
        UserCacheTTLMinutes:   getenv("USER_CACHE_TTL_MINUTES", "15"),

        MailHost:     getenv("MAIL_HOST", ""),
        MailPort:     getenv("MAIL_PORT", "587"),
        MailUsername: getenv("MAIL_USERNAME", ""),
        MailPassword: getenv("MAIL_PASSWORD", ""),
        MailFrom:     getenv("MAIL_FROM", "noreply@contactly.local"),
        MailFromName: getenv("MAIL_FROM_NAME", "Contactly"),

        AdminEmail:    getenv("ADMIN_EMAIL", "admin@example.com"),
        AdminPassword: getenv("ADMIN_PASSWORD", "admin123"),
        AdminUsername: getenv("ADMIN_USERNAME", "admin"),

        UploadDir: getenv("UPLOAD_DIR", "./uploads"),
        BaseURL:   getenv("BASE_URL", "http://localhost:8080"),

        LoginRatePerMinute: getenv("LOGIN_RATE_PER_MINUTE", "10"),
    }
}

func (c *Config) AccessTokenTTL() time.Duration {
    return parseDuration(c.AccessTokenTTLMinutes, time.Minute, 15*time.Minute)
}

func (c *Config) RefreshTokenTTL() time.Duration {
    return parseDuration(c.RefreshTokenTTLDays, 24*time.Hour, 7*24*time.Hour)
}

func (c *Config) VerifyTokenTTL() time.Duration {
    return parseDuration(c.VerifyTokenTTLHours, time.Hour, 24*time.Hour)
}

func (c *Config) UserCacheTTL() time.Duration {
    return parseDuration(c.UserCacheTTLMinutes, time.Minute, 15*time.Minute)
}

func (c *Config) LoginRate() int {
    n, err := strconv.Atoi(c.LoginRatePerMinute)
    if err != nil || n <= 0 {
        return 10
    }
    return n
}

func parseDuration(value string, unit, fallback time.Duration) time.Duration {
    n, err := strconv.Atoi(value)
    if err != nil || n <= 0 {
        return fallback
    }
    return time.Duration(n) * unit
}

func getenv(key, fallback string) string {
    v := os.Getenv(key)
    if v == "" {
        return fallback
    }
    return v
}

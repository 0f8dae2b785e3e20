package models

import "time"

type RefreshToken struct {
    ID                uint   `gorm:"primaryKey"`
    TokenID           string `gorm:"index"` // jti of the refresh token
    AccessTokenID     string `gorm:"index"` // jti of the access token issued alongside
    UserID            uint   `gorm:"index"`
    TokenHash         string `gorm:"uniqueIndex"`
    ExpiresAt         time.Time `gorm:"index"`
    RevokedAt         *time.Time
    ReplacedByTokenID *string
    IPAddress         string `gorm:"size:50"`
    UserAgent         string
    CreatedAt         time.Time
}

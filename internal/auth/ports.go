package auth

import (
    "context"
    "time"

    "github.com/olehb/contactly/internal/models"
    "github.com/olehb/contactly/internal/token"
)

// Signer is the stateless token capability; *token.Codec satisfies it.
type Signer interface {
    Issue(userID uint, typ token.Type) (string, *token.Claims, error)
    Verify(tokenStr string, want token.Type) (*token.Claims, error)
}

// UserStore is the durable credential store.
type UserStore interface {
    FindByEmail(ctx context.Context, email string) (*models.User, error)
    FindByUsername(ctx context.Context, username string) (*models.User, error)
    FindByID(ctx context.Context, id uint) (*models.User, error)
    Create(ctx context.Context, user *models.User) error
    UpdatePassword(ctx context.Context, userID uint, hash string) error
    SetConfirmed(ctx context.Context, userID uint) error
}

// RefreshTokenStore persists refresh-token records. Rotate must be atomic:
// beforeCommit runs inside the same transaction that revokes the old record
// and creates its replacement.
type RefreshTokenStore interface {
    Create(ctx context.Context, rec *models.RefreshToken) error
    FindActiveByHash(ctx context.Context, tokenHash string, now time.Time) (*models.RefreshToken, error)
    Revoke(ctx context.Context, tokenID string, now time.Time) error
    Rotate(ctx context.Context, old *models.RefreshToken, replacement *models.RefreshToken, beforeCommit func() error) error
    RevokeAllForUser(ctx context.Context, userID uint, now time.Time) ([]models.RefreshToken, error)
}

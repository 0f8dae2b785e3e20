package repository

import (
    "context"
    "errors"
    "time"

    "gorm.io/gorm"

    "github.com/olehb/contactly/internal/auth"
    "github.com/olehb/contactly/internal/models"
)

type RefreshTokenRepository struct {
    DB *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
    return &RefreshTokenRepository{DB: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, rec *models.RefreshToken) error {
    return r.DB.WithContext(ctx).Create(rec).Error
}

func (r *RefreshTokenRepository) FindActiveByHash(ctx context.Context, tokenHash string, now time.Time) (*models.RefreshToken, error) {
    var rec models.RefreshToken
    err := r.DB.WithContext(ctx).
        Where("token_hash = ? AND revoked_at IS NULL AND expires_at > ?", tokenHash, now).
        First(&rec).Error
    if errors.Is(err, gorm.ErrRecordNotFound) {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    return &rec, nil
}

func (r *RefreshTokenRepository) Revoke(ctx context.Context, tokenID string, now time.Time) error {
    return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
        Where("token_id = ? AND revoked_at IS NULL", tokenID).
        Update("revoked_at", &now).Error
}

// Rotate revokes the old record and persists its replacement in one
// transaction. beforeCommit runs inside the transaction; if it fails (e.g. a
// revocation-cache write), the rotation is rolled back and no new token
// record survives.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, old *models.RefreshToken, replacement *models.RefreshToken, beforeCommit func() error) error {
    now := time.Now().UTC()
    return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
        res := tx.Model(&models.RefreshToken{}).
            Where("id = ? AND revoked_at IS NULL", old.ID).
            Updates(map[string]interface{}{
                "revoked_at":           &now,
                "replaced_by_token_id": replacement.TokenID,
            })
        if res.Error != nil {
            return res.Error
        }
        if res.RowsAffected == 0 {
            // Lost the race to a concurrent refresh of the same token.
            return auth.ErrRevoked
        }
        if err := tx.Create(replacement).Error; err != nil {
            return err
        }
        if beforeCommit != nil {
            return beforeCommit()
        }
        return nil
    })
}

// RevokeAllForUser revokes every active record of the user and returns them
// so the caller can denylist the paired token IDs as well.
func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uint, now time.Time) ([]models.RefreshToken, error) {
    var records []models.RefreshToken
    err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
        if err := tx.Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, now).
            Find(&records).Error; err != nil {
            return err
        }
        if len(records) == 0 {
            return nil
        }
        return tx.Model(&models.RefreshToken{}).
            Where("user_id = ? AND revoked_at IS NULL", userID).
            Update("revoked_at", &now).Error
    })
    if err != nil {
        return nil, err
    }
    return records, nil
}

// DeleteExpired prunes records past expiry and revoked records older than the
// cutoff. Run periodically from the server bootstrap.
func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time, revokedCutoff time.Time) error {
    return r.DB.WithContext(ctx).
        Where("expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)", now, revokedCutoff).
        Delete(&models.RefreshToken{}).Error
}

package auth

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"

    "github.com/olehb/contactly/internal/cache"
    "github.com/olehb/contactly/internal/models"
    "github.com/olehb/contactly/internal/token"
)

// Authenticator performs the per-request access-token check: signature and
// expiry via the codec, then the revocation denylist, then subject
// resolution. The common path costs one cache lookup and no database
// round-trip.
type Authenticator struct {
    signer      Signer
    revocations cache.RevocationStore
    userCache   cache.UserCache
    users       UserStore
}

func NewAuthenticator(signer Signer, revocations cache.RevocationStore, userCache cache.UserCache, users UserStore) *Authenticator {
    return &Authenticator{
        signer:      signer,
        revocations: revocations,
        userCache:   userCache,
        users:       users,
    }
}

func (a *Authenticator) Authenticate(ctx context.Context, tokenStr string) (*models.User, error) {
    claims, err := a.signer.Verify(tokenStr, token.TypeAccess)
    if err != nil {
        return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
    }

    revoked, err := a.revocations.IsRevoked(ctx, claims.ID)
    if err != nil {
        return nil, storeErr(err)
    }
    if revoked {
        return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, ErrRevoked)
    }

    userID, err := claims.UserID()
    if err != nil {
        return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
    }

    user, err := a.resolveUser(ctx, userID)
    if err != nil {
        return nil, err
    }
    if user == nil || !user.Active {
        return nil, fmt.Errorf("%w: unknown or inactive user", ErrUnauthenticated)
    }
    return user, nil
}

func (a *Authenticator) resolveUser(ctx context.Context, userID uint) (*models.User, error) {
    key := cacheKey(userID)
    if payload, err := a.userCache.Get(ctx, key); err == nil {
        var user models.User
        if err := json.Unmarshal(payload, &user); err == nil {
            return &user, nil
        }
    } else if !errors.Is(err, cache.ErrCacheMiss) {
        log.Printf("user cache read failed: %v", err)
    }

    user, err := a.users.FindByID(ctx, userID)
    if err != nil {
        return nil, storeErr(err)
    }
    if user != nil {
        if payload, err := json.Marshal(user); err == nil {
            if err := a.userCache.Put(ctx, key, payload); err != nil {
                log.Printf("user cache write failed: %v", err)
            }
        }
    }
    return user, nil
}

func cacheKey(userID uint) string {
    return fmt.Sprintf("id:%d", userID)
}

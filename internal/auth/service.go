package auth

import (
    "context"
    "crypto/md5"
    "crypto/sha256"
    "encoding/hex"
    "errors"
    "fmt"
    "log"
    "strings"
    "time"

    "github.com/olehb/contactly/internal/cache"
    "github.com/olehb/contactly/internal/mail"
    "github.com/olehb/contactly/internal/models"
    "github.com/olehb/contactly/internal/token"
)

type TokenPair struct {
    AccessToken      string
    RefreshToken     string
    ExpiresIn        int
    RefreshExpiresIn int
}

// ClientMeta is recorded alongside refresh-token records.
type ClientMeta struct {
    IPAddress string
    UserAgent string
}

// Service orchestrates login, refresh, logout and the email flows across the
// credential store, the token codec and the revocation cache. It holds no
// locks of its own; multi-write atomicity on refresh comes from the store's
// Rotate transaction.
type Service struct {
    users       UserStore
    refreshToks RefreshTokenStore
    revocations cache.RevocationStore
    userCache   cache.UserCache
    signer      Signer
    hasher      Hasher
    mailer      mail.Mailer
    baseURL     string
}

func NewService(users UserStore, refreshToks RefreshTokenStore, revocations cache.RevocationStore, userCache cache.UserCache, signer Signer, hasher Hasher, mailer mail.Mailer, baseURL string) *Service {
    return &Service{
        users:       users,
        refreshToks: refreshToks,
        revocations: revocations,
        userCache:   userCache,
        signer:      signer,
        hasher:      hasher,
        mailer:      mailer,
        baseURL:     baseURL,
    }
}

func storeErr(err error) error {
    return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func sha256Hex(s string) string {
    h := sha256.Sum256([]byte(s))
    return hex.EncodeToString(h[:])
}

func gravatarURL(email string) string {
    digest := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
    return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon", hex.EncodeToString(digest[:]))
}

func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
    if existing, err := s.users.FindByUsername(ctx, username); err != nil {
        return nil, storeErr(err)
    } else if existing != nil {
        return nil, ErrUsernameTaken
    }
    if existing, err := s.users.FindByEmail(ctx, email); err != nil {
        return nil, storeErr(err)
    } else if existing != nil {
        return nil, ErrEmailTaken
    }

    hashed, err := s.hasher.Hash(password)
    if err != nil {
        return nil, err
    }
    user := &models.User{
        Username: username,
        Email:    email,
        Password: hashed,
        Role:     models.RoleUser,
        Avatar:   gravatarURL(email),
        Active:   true,
    }
    if err := s.users.Create(ctx, user); err != nil {
        return nil, storeErr(err)
    }
    s.sendVerificationMail(user)
    return user, nil
}

func (s *Service) Login(ctx context.Context, email, password string, meta ClientMeta) (*TokenPair, error) {
    user, err := s.users.FindByEmail(ctx, email)
    if err != nil {
        return nil, storeErr(err)
    }
    if user == nil || !user.Active {
        return nil, ErrInvalidCredentials
    }
    if !s.hasher.Compare(user.Password, password) {
        return nil, ErrInvalidCredentials
    }
    if !user.Confirmed {
        return nil, ErrNotVerified
    }

    pair, rec, err := s.issuePair(user.ID, meta)
    if err != nil {
        return nil, err
    }
    if err := s.refreshToks.Create(ctx, rec); err != nil {
        return nil, storeErr(err)
    }
    return pair, nil
}

// issuePair mints an access+refresh pair and the refresh record that binds
// them. The record keeps the access JTI so a later refresh or logout can
// revoke both halves of the pair.
func (s *Service) issuePair(userID uint, meta ClientMeta) (*TokenPair, *models.RefreshToken, error) {
    accessStr, accessClaims, err := s.signer.Issue(userID, token.TypeAccess)
    if err != nil {
        return nil, nil, err
    }
    refreshStr, refreshClaims, err := s.signer.Issue(userID, token.TypeRefresh)
    if err != nil {
        return nil, nil, err
    }
    rec := &models.RefreshToken{
        TokenID:       refreshClaims.ID,
        AccessTokenID: accessClaims.ID,
        UserID:        userID,
        TokenHash:     sha256Hex(refreshStr),
        ExpiresAt:     refreshClaims.ExpiresAt.Time,
        IPAddress:     meta.IPAddress,
        UserAgent:     meta.UserAgent,
    }
    pair := &TokenPair{
        AccessToken:      accessStr,
        RefreshToken:     refreshStr,
        ExpiresIn:        int(time.Until(accessClaims.ExpiresAt.Time).Seconds()),
        RefreshExpiresIn: int(time.Until(refreshClaims.ExpiresAt.Time).Seconds()),
    }
    return pair, rec, nil
}

// Refresh rotates a refresh token. The old refresh record is revoked, the
// replacement persisted and both old JTIs written to the revocation cache in
// a single transaction; the new pair is only handed out once all of that is
// durable. A spent or denylisted token fails with ErrRevoked.
func (s *Service) Refresh(ctx context.Context, refreshToken string, meta ClientMeta) (*TokenPair, error) {
    claims, err := s.signer.Verify(refreshToken, token.TypeRefresh)
    if err != nil {
        return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
    }

    revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
    if err != nil {
        return nil, storeErr(err)
    }
    if revoked {
        return nil, ErrRevoked
    }

    now := time.Now().UTC()
    rec, err := s.refreshToks.FindActiveByHash(ctx, sha256Hex(refreshToken), now)
    if err != nil {
        return nil, storeErr(err)
    }
    if rec == nil {
        return nil, ErrRevoked
    }

    user, err := s.users.FindByID(ctx, rec.UserID)
    if err != nil {
        return nil, storeErr(err)
    }
    if user == nil || !user.Active {
        return nil, ErrRevoked
    }

    pair, replacement, err := s.issuePair(user.ID, meta)
    if err != nil {
        return nil, err
    }

    until := rec.ExpiresAt
    err = s.refreshToks.Rotate(ctx, rec, replacement, func() error {
        if err := s.revocations.Revoke(ctx, rec.TokenID, until); err != nil {
            return err
        }
        // The paired access token dies with its refresh token.
        return s.revocations.Revoke(ctx, rec.AccessTokenID, until)
    })
    if err != nil {
        if errors.Is(err, ErrRevoked) {
            return nil, ErrRevoked
        }
        return nil, storeErr(err)
    }
    return pair, nil
}

// Logout revokes both tokens of a session. It is idempotent: unknown,
// expired or already revoked tokens are not errors.
func (s *Service) Logout(ctx context.Context, accessToken, refreshToken string) error {
    if claims, err := s.signer.Verify(accessToken, token.TypeAccess); err == nil {
        if err := s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
            return storeErr(err)
        }
    }
    claims, err := s.signer.Verify(refreshToken, token.TypeRefresh)
    if err != nil {
        return nil
    }
    if err := s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
        return storeErr(err)
    }
    if err := s.refreshToks.Revoke(ctx, claims.ID, time.Now().UTC()); err != nil {
        return storeErr(err)
    }
    return nil
}

func (s *Service) ConfirmEmail(ctx context.Context, verifyToken string) (alreadyConfirmed bool, err error) {
    claims, err := s.signer.Verify(verifyToken, token.TypeEmailVerify)
    if err != nil {
        return false, fmt.Errorf("%w: %v", ErrInvalidToken, err)
    }
    userID, err := claims.UserID()
    if err != nil {
        return false, ErrInvalidToken
    }
    user, err := s.users.FindByID(ctx, userID)
    if err != nil {
        return false, storeErr(err)
    }
    if user == nil {
        return false, ErrInvalidToken
    }
    if user.Confirmed {
        return true, nil
    }
    if err := s.users.SetConfirmed(ctx, user.ID); err != nil {
        return false, storeErr(err)
    }
    return false, nil
}

// ResendVerification re-sends the confirmation mail. The response shape is
// identical whether or not the account exists.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
    user, err := s.users.FindByEmail(ctx, email)
    if err != nil {
        return storeErr(err)
    }
    if user == nil || user.Confirmed {
        return nil
    }
    s.sendVerificationMail(user)
    return nil
}

// RequestPasswordReset mails a reset token. It reports success for unknown
// addresses as well, so the endpoint cannot be used to enumerate accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
    user, err := s.users.FindByEmail(ctx, email)
    if err != nil {
        return storeErr(err)
    }
    if user == nil {
        return nil
    }
    resetStr, _, err := s.signer.Issue(user.ID, token.TypePasswordReset)
    if err != nil {
        return err
    }
    s.sendMail(user.Email, "Reset your password", mail.TemplatePasswordReset, map[string]string{
        "username": user.Username,
        "token":    resetStr,
        "host":     s.baseURL,
    })
    return nil
}

// ResetPassword sets a new password and kills every outstanding session for
// the user, forcing a re-login everywhere.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
    claims, err := s.signer.Verify(resetToken, token.TypePasswordReset)
    if err != nil {
        return fmt.Errorf("%w: %v", ErrInvalidToken, err)
    }
    userID, err := claims.UserID()
    if err != nil {
        return ErrInvalidToken
    }
    user, err := s.users.FindByID(ctx, userID)
    if err != nil {
        return storeErr(err)
    }
    if user == nil {
        return ErrInvalidToken
    }

    hashed, err := s.hasher.Hash(newPassword)
    if err != nil {
        return err
    }
    if err := s.users.UpdatePassword(ctx, user.ID, hashed); err != nil {
        return storeErr(err)
    }

    now := time.Now().UTC()
    records, err := s.refreshToks.RevokeAllForUser(ctx, user.ID, now)
    if err != nil {
        return storeErr(err)
    }
    for _, rec := range records {
        if err := s.revocations.Revoke(ctx, rec.TokenID, rec.ExpiresAt); err != nil {
            return storeErr(err)
        }
        if err := s.revocations.Revoke(ctx, rec.AccessTokenID, rec.ExpiresAt); err != nil {
            return storeErr(err)
        }
    }
    if err := s.userCache.Delete(ctx, cacheKey(user.ID)); err != nil && !errors.Is(err, cache.ErrCacheMiss) {
        log.Printf("user cache invalidation failed for user %d: %v", user.ID, err)
    }
    return nil
}

func (s *Service) sendVerificationMail(user *models.User) {
    verifyStr, _, err := s.signer.Issue(user.ID, token.TypeEmailVerify)
    if err != nil {
        log.Printf("verification token issue failed for %s: %v", user.Email, err)
        return
    }
    s.sendMail(user.Email, "Confirm your email", mail.TemplateVerifyEmail, map[string]string{
        "username": user.Username,
        "token":    verifyStr,
        "host":     s.baseURL,
    })
}

// sendMail is fire-and-forget: the HTTP response never waits on SMTP, and
// delivery failures are logged, not surfaced.
func (s *Service) sendMail(to, subject, template string, vars map[string]string) {
    go func() {
        if err := s.mailer.Send(to, subject, template, vars); err != nil {
            log.Printf("mail delivery to %s failed: %v", to, err)
        }
    }()
}

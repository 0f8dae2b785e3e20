package auth

import (
    "context"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/olehb/contactly/internal/cache"
    "github.com/olehb/contactly/internal/models"
    "github.com/olehb/contactly/internal/token"
)

type fakeUserStore struct {
    mu     sync.Mutex
    users  map[uint]*models.User
    nextID uint
}

func newFakeUserStore() *fakeUserStore {
    return &fakeUserStore{users: make(map[uint]*models.User), nextID: 1}
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    for _, u := range s.users {
        if u.Email == email {
            copied := *u
            return &copied, nil
        }
    }
    return nil, nil
}

func (s *fakeUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    for _, u := range s.users {
        if u.Username == username {
            copied := *u
            return &copied, nil
        }
    }
    return nil, nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id uint) (*models.User, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if u, ok := s.users[id]; ok {
        copied := *u
        return &copied, nil
    }
    return nil, nil
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    user.ID = s.nextID
    s.nextID++
    copied := *user
    s.users[user.ID] = &copied
    return nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, userID uint, hash string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if u, ok := s.users[userID]; ok {
        u.Password = hash
    }
    return nil
}

func (s *fakeUserStore) SetConfirmed(_ context.Context, userID uint) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if u, ok := s.users[userID]; ok {
        u.Confirmed = true
    }
    return nil
}

type fakeRefreshStore struct {
    mu      sync.Mutex
    records []*models.RefreshToken
    nextID  uint
}

func newFakeRefreshStore() *fakeRefreshStore {
    return &fakeRefreshStore{nextID: 1}
}

func (s *fakeRefreshStore) Create(_ context.Context, rec *models.RefreshToken) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    rec.ID = s.nextID
    s.nextID++
    copied := *rec
    s.records = append(s.records, &copied)
    return nil
}

func (s *fakeRefreshStore) FindActiveByHash(_ context.Context, tokenHash string, now time.Time) (*models.RefreshToken, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    for _, rec := range s.records {
        if rec.TokenHash == tokenHash && rec.RevokedAt == nil && rec.ExpiresAt.After(now) {
            copied := *rec
            return &copied, nil
        }
    }
    return nil, nil
}

func (s *fakeRefreshStore) Revoke(_ context.Context, tokenID string, now time.Time) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    for _, rec := range s.records {
        if rec.TokenID == tokenID && rec.RevokedAt == nil {
            at := now
            rec.RevokedAt = &at
        }
    }
    return nil
}

func (s *fakeRefreshStore) Rotate(ctx context.Context, old *models.RefreshToken, replacement *models.RefreshToken, beforeCommit func() error) error {
    if beforeCommit != nil {
        if err := beforeCommit(); err != nil {
            return err
        }
    }
    now := time.Now().UTC()
    s.mu.Lock()
    for _, rec := range s.records {
        if rec.ID == old.ID && rec.RevokedAt == nil {
            at := now
            rec.RevokedAt = &at
            rec.ReplacedByTokenID = &replacement.TokenID
        }
    }
    s.mu.Unlock()
    return s.Create(ctx, replacement)
}

func (s *fakeRefreshStore) RevokeAllForUser(_ context.Context, userID uint, now time.Time) ([]models.RefreshToken, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var revoked []models.RefreshToken
    for _, rec := range s.records {
        if rec.UserID == userID && rec.RevokedAt == nil && rec.ExpiresAt.After(now) {
            at := now
            rec.RevokedAt = &at
            revoked = append(revoked, *rec)
        }
    }
    return revoked, nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) { return "h:" + plain, nil }

func (fakeHasher) Compare(hashed, plain string) bool { return hashed == "h:"+plain }

type sentMail struct {
    To       string
    Template string
    Vars     map[string]string
}

type recordingMailer struct {
    mu   sync.Mutex
    sent []sentMail
}

func (m *recordingMailer) Send(to, _, templateName string, vars map[string]string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.sent = append(m.sent, sentMail{To: to, Template: templateName, Vars: vars})
    return nil
}

func (m *recordingMailer) count() int {
    m.mu.Lock()
    defer m.mu.Unlock()
    return len(m.sent)
}

type testEnv struct {
    svc     *Service
    authn   *Authenticator
    users   *fakeUserStore
    refresh *fakeRefreshStore
    store   *cache.MemoryStore
    mailer  *recordingMailer
    codec   *token.Codec
}

func newTestEnv(t *testing.T) *testEnv {
    t.Helper()
    codec := token.NewCodec("test-secret", "contactly", token.TTLPolicy{
        Access:        15 * time.Minute,
        Refresh:       7 * 24 * time.Hour,
        EmailVerify:   24 * time.Hour,
        PasswordReset: time.Hour,
    })
    users := newFakeUserStore()
    refresh := newFakeRefreshStore()
    store := cache.NewMemoryStore(time.Minute)
    mailer := &recordingMailer{}
    svc := NewService(users, refresh, store, store, codec, fakeHasher{}, mailer, "http://localhost:8080")
    authn := NewAuthenticator(codec, store, store, users)
    return &testEnv{svc: svc, authn: authn, users: users, refresh: refresh, store: store, mailer: mailer, codec: codec}
}

func (e *testEnv) seedUser(t *testing.T, email, password string, confirmed bool) *models.User {
    t.Helper()
    user := &models.User{
        Username:  "user-" + email,
        Email:     email,
        Password:  "h:" + password,
        Role:      models.RoleUser,
        Confirmed: confirmed,
        Active:    true,
    }
    require.NoError(t, e.users.Create(context.Background(), user))
    return user
}

func TestLoginSuccess(t *testing.T) {
    env := newTestEnv(t)
    ctx := context.Background()
    env.seedUser(t, "alice@example.com", "secret", true)

    pair, err := env.svc.Login(ctx, "alice@example.com", "secret", ClientMeta{})
    require.NoError(t, err)

    accessClaims, err := env.codec.Verify(pair.AccessToken, token.TypeAccess)
    require.NoError(t, err)
    refreshClaims, err := env.codec.Verify(pair.RefreshToken, token.TypeRefresh)
    require.NoError(t, err)
    assert.NotEqual(t, accessClaims.ID, refreshClaims.ID)

    user, err := env.authn.Authenticate(ctx, pair.AccessToken)
    require.NoError(t, err)
    assert.Equal(t, "alice@example.com", user.Email)
}

func TestLoginInvalidCredentials(t *testing.T) {
    env := newTestEnv(t)
    ctx := context.Background()
    env.seedUser(t, "alice@example.com", "secret", true)

    _, err := env.svc.Login(ctx, "alice@example.com", "wrong", ClientMeta{})
    assert.ErrorIs(t, err, ErrInvalidCredentials)

    _, err = env.svc.Login(ctx, "nobody@example.com", "secret", ClientMeta{})
    assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginNotVerified(t *testing.T) {
    env := newTestEnv(t)
    env.seedUser(t, "bob@example.com", "secret", false)

    _, err := env.svc.Login(context.Background(), "bob@example.com", "secret", ClientMeta{})
    assert.ErrorIs(t, err, ErrNotVerified)
}

func TestLoginInactiveUser(t *testing.T) {
    env := newTestEnv(t)
    user := env.seedUser(t, "gone@example.com", "secret", true)
    env.users.users[user.ID].Active = false

    _, err := env.svc.Login(context.Background(), "gone@example.com", "secret", ClientMeta{})
    assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotatesAndRevokesOldPair(t *testing.T) {
    env := newTestEnv(t)
    ctx := context.Background()
    env.seedUser(t, "alice@example.com", "secret", true)

    pair, err := env.svc.Login(ctx, "alice@example.com", "secret", ClientMeta{})
    require.NoError(t, err)

    newPair, err := env.svc.Refresh(ctx, pair.RefreshToken, ClientMeta{})
    require.NoError(t, err)
    assert.NotEqual(t, pair.AccessToken, newPair.AccessToken)
    assert.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)

    // Old access token must not survive the refresh.
    _, err = env.authn.Authenticate(ctx, pair.AccessToken)
    assert.ErrorIs(t, err, ErrUnauthenticated)

    // Replay of the spent refresh token is rejected.
    _, err = env.svc.Refresh(ctx, pair.RefreshToken, ClientMeta{})
    assert.ErrorIs(t, err, ErrRevoked)

    // The new pair is fully usable.
    _, err = env.authn.Authenticate(ctx, newPair.AccessToken)
    require.NoError(t, err)
    _, err = env.svc.Refresh(ctx, newPair.RefreshToken, ClientMeta{})
    require.NoError(t, err)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
    env := newTestEnv(t)
    ctx := context.Background()
    env.seedUser(t, "alice@example.com", "secret", true)

    pair, err := env.svc.Login(ctx, "alice@example.com", "secret", ClientMeta{})
    require.NoError(t, err)

    _, err = env.svc.Refresh(ctx, pair.AccessToken, ClientMeta{})
    assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshRejectsGarbage(t *testing.T) {
    env := newTestEnv(t)

    _, err := env.svc.Refresh(context.Background(), "not-a-token", ClientMeta{})
    assert.ErrorIs(t, err, ErrInvalidToken)
}

type failingRevocations struct {
    *cache.MemoryStore
    fail bool
}

func (f *failingRevocations) Revoke(ctx context.Context, tokenID string, until time.Time) error {
    if f.fail {
        return assert.AnError
    }
    return f.MemoryStore.Revoke(ctx, tokenID, until)
}

func TestRefreshFailsWhenCacheWriteFails(t *testing.T) {
    env := newTestEnv(t)
    ctx := context.Background()
    env.seedUser(t, "alice@example.com", "secret", true)

    failing := &failingRevocations{MemoryStore: env.store}
    svc := NewService(env.users, env.refresh, failing, env.store, env.codec, fakeHasher{}, env.mailer, "http://localhost:8080")

    pair, err := svc.Login(ctx, "alice@example.com", "secret", ClientMeta{})
    require.NoError(t, err)

    failing.fail = true
    _, err = svc.Refresh(ctx, pair.RefreshToken, ClientMeta{})
    assert.ErrorIs(t, err, ErrStoreUnavailable)

    // The rotation was aborted, so the original refresh token still works.
    failing.fail = false
    _, err = svc.Refresh(ctx, pair.RefreshToken, ClientMeta{})
    require.NoError(t, err)
}

func TestLogoutRevokesBothTokens(t *testing.T) {
    env := newTestEnv(t)
    ctx := context.Background()
    env.seedUser(t, "alice@example.com", "secret", true)

    pair, err := env.svc.Login(ctx, "alice@example.com", "secret", ClientMeta{})
    require.NoError(t, err)

    require.NoError(t, env.svc.Logout(ctx, pair.AccessToken, pair.RefreshToken))

    _, err = env.authn.Authenticate(ctx, pair.AccessToken)
    assert.ErrorIs(t, err, ErrUnauthenticated)
    _, err = env.svc.Refresh(ctx, pair.RefreshToken, ClientMeta{})
    assert.ErrorIs(t, err, ErrRevoked)
}

func TestLogoutIsIdempotent(t *testing.T) {
    env := newTestEnv(t)
    ctx := context.Background()
    env.seedUser(t, "alice@example.com", "secret", true)

    pair, err := env.svc.Login(ctx, "alice@example.com", "secret", ClientMeta{})
    require.NoError(t, err)

    require.NoError(t, env.svc.Logout(ctx, pair.AccessToken, pair.RefreshToken))
    require.NoError(t, env.svc.Logout(ctx, pair.AccessToken, pair.RefreshToken))

    // Garbage tokens are not an error either.
    require.NoError(t, env.svc.Logout(ctx, "junk", "junk"))
}

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
    env := newTestEnv(t)

    err := env.svc.RequestPasswordReset(context.Background(), "nobody@example.com")
    require.NoError(t, err)

    time.Sleep(50 * time.Millisecond)
    assert.Equal(t, 0, env.mailer.count())
}

func TestRequestPasswordResetSendsMail(t *testing.T) {
    env := newTestEnv(t)
    env.seedUser(t, "alice@example.com", "secret", true)

    err := env.svc.RequestPasswordReset(context.Background(), "alice@example.com")
    require.NoError(t, err)

    assert.Eventually(t, func() bool { return env.mailer.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestResetPasswordRevokesAllSessions(t *testing.T) {
    env := newTestEnv(t)
    ctx := context.Background()
    user := env.seedUser(t, "alice@example.com", "secret", true)

    first, err := env.svc.Login(ctx, "alice@example.com", "secret", ClientMeta{})
    require.NoError(t, err)
    second, err := env.svc.Login(ctx, "alice@example.com", "secret", ClientMeta{})
    require.NoError(t, err)

    resetToken, _, err := env.codec.Issue(user.ID, token.TypePasswordReset)
    require.NoError(t, err)
    require.NoError(t, env.svc.ResetPassword(ctx, resetToken, "newsecret"))

    // Every outstanding session is dead, access and refresh alike.
    for _, pair := range []*TokenPair{first, second} {
        _, err = env.svc.Refresh(ctx, pair.RefreshToken, ClientMeta{})
        assert.ErrorIs(t, err, ErrRevoked)
        _, err = env.authn.Authenticate(ctx, pair.AccessToken)
        assert.ErrorIs(t, err, ErrUnauthenticated)
    }

    _, err = env.svc.Login(ctx, "alice@example.com", "secret", ClientMeta{})
    assert.ErrorIs(t, err, ErrInvalidCredentials)
    _, err = env.svc.Login(ctx, "alice@example.com", "newsecret", ClientMeta{})
    require.NoError(t, err)
}

func TestResetPasswordRejectsWrongTokenType(t *testing.T) {
    env := newTestEnv(t)
    user := env.seedUser(t, "alice@example.com", "secret", true)

    accessToken, _, err := env.codec.Issue(user.ID, token.TypeAccess)
    require.NoError(t, err)

    err = env.svc.ResetPassword(context.Background(), accessToken, "newsecret")
    assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRegisterAndConfirmEmail(t *testing.T) {
    env := newTestEnv(t)
    ctx := context.Background()

    user, err := env.svc.Register(ctx, "carol", "carol@example.com", "secret")
    require.NoError(t, err)
    assert.False(t, user.Confirmed)
    assert.Contains(t, user.Avatar, "gravatar.com")

    // Not confirmed yet, so login is refused.
    _, err = env.svc.Login(ctx, "carol@example.com", "secret", ClientMeta{})
    assert.ErrorIs(t, err, ErrNotVerified)

    verifyToken, _, err := env.codec.Issue(user.ID, token.TypeEmailVerify)
    require.NoError(t, err)

    already, err := env.svc.ConfirmEmail(ctx, verifyToken)
    require.NoError(t, err)
    assert.False(t, already)

    already, err = env.svc.ConfirmEmail(ctx, verifyToken)
    require.NoError(t, err)
    assert.True(t, already)

    _, err = env.svc.Login(ctx, "carol@example.com", "secret", ClientMeta{})
    require.NoError(t, err)
}

func TestRegisterDuplicate(t *testing.T) {
    env := newTestEnv(t)
    ctx := context.Background()

    _, err := env.svc.Register(ctx, "carol", "carol@example.com", "secret")
    require.NoError(t, err)

    _, err = env.svc.Register(ctx, "carol", "other@example.com", "secret")
    assert.ErrorIs(t, err, ErrUsernameTaken)

    _, err = env.svc.Register(ctx, "other", "carol@example.com", "secret")
    assert.ErrorIs(t, err, ErrEmailTaken)
}

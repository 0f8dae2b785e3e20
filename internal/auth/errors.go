package auth

import "errors"

// Stable error kinds surfaced to the route layer. Store and codec failures
// are folded into these so callers never see a raw gorm or redis error.
var (
    ErrInvalidCredentials = errors.New("invalid credentials")
    ErrNotVerified        = errors.New("email not verified")
    ErrInvalidToken       = errors.New("invalid token")
    ErrRevoked            = errors.New("token revoked")
    ErrUnauthenticated    = errors.New("unauthenticated")
    ErrEmailTaken         = errors.New("email already registered")
    ErrUsernameTaken      = errors.New("username already taken")
    ErrStoreUnavailable   = errors.New("store unavailable")
)

package token

import (
    "errors"
    "fmt"
    "strconv"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/google/uuid"
)

type Type string

const (
    TypeAccess        Type = "access"
    TypeRefresh       Type = "refresh"
    TypeEmailVerify   Type = "email_verify"
    TypePasswordReset Type = "password_reset"
)

var (
    ErrExpired          = errors.New("token expired")
    ErrInvalidSignature = errors.New("invalid token signature")
    ErrMalformed        = errors.New("malformed token")
    ErrWrongType        = errors.New("wrong token type")
)

type Claims struct {
    TokenType Type `json:"typ"`
    jwt.RegisteredClaims
}

// UserID parses the subject claim back into a user ID.
func (c *Claims) UserID() (uint, error) {
    id, err := strconv.ParseUint(c.Subject, 10, 64)
    if err != nil {
        return 0, fmt.Errorf("%w: bad subject", ErrMalformed)
    }
    return uint(id), nil
}

type TTLPolicy struct {
    Access        time.Duration
    Refresh       time.Duration
    EmailVerify   time.Duration
    PasswordReset time.Duration
}

// Codec signs and verifies bearer tokens. It never touches a store and is
// safe for concurrent use.
type Codec struct {
    secret []byte
    issuer string
    ttl    TTLPolicy
}

func NewCodec(secret, issuer string, ttl TTLPolicy) *Codec {
    return &Codec{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

func (c *Codec) lifetime(typ Type) time.Duration {
    switch typ {
    case TypeRefresh:
        return c.ttl.Refresh
    case TypeEmailVerify:
        return c.ttl.EmailVerify
    case TypePasswordReset:
        return c.ttl.PasswordReset
    default:
        return c.ttl.Access
    }
}

func (c *Codec) Issue(userID uint, typ Type) (string, *Claims, error) {
    now := time.Now().UTC()
    claims := &Claims{
        TokenType: typ,
        RegisteredClaims: jwt.RegisteredClaims{
            Issuer:    c.issuer,
            Subject:   strconv.FormatUint(uint64(userID), 10),
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(now.Add(c.lifetime(typ))),
            ID:        uuid.NewString(),
        },
    }
    tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := tok.SignedString(c.secret)
    if err != nil {
        return "", nil, err
    }
    return signed, claims, nil
}

// Verify checks signature, expiry and token type. Purely structural; callers
// are responsible for consulting the revocation cache.
func (c *Codec) Verify(tokenStr string, want Type) (*Claims, error) {
    claims := &Claims{}
    tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
        }
        return c.secret, nil
    })
    if err != nil {
        switch {
        case errors.Is(err, jwt.ErrTokenExpired):
            return nil, ErrExpired
        case errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrSignatureInvalid):
            return nil, ErrInvalidSignature
        default:
            return nil, ErrMalformed
        }
    }
    if !tok.Valid {
        return nil, ErrMalformed
    }
    if claims.TokenType != want {
        return nil, ErrWrongType
    }
    if claims.ID == "" || claims.Subject == "" {
        return nil, ErrMalformed
    }
    return claims, nil
}

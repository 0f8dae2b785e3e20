package auth

import "golang.org/x/crypto/bcrypt"

// Hasher abstracts password hashing so tests can swap in a fast fake.
type Hasher interface {
    Hash(plain string) (string, error)
    Compare(hashed, plain string) bool
}

type BcryptHasher struct{}

func (BcryptHasher) Hash(plain string) (string, error) {
    hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
    if err != nil {
        return "", err
    }
    return string(hashed), nil
}

func (BcryptHasher) Compare(hashed, plain string) bool {
    return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

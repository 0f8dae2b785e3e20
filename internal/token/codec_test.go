package token

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func testPolicy() TTLPolicy {
    return TTLPolicy{
        Access:        15 * time.Minute,
        Refresh:       7 * 24 * time.Hour,
        EmailVerify:   24 * time.Hour,
        PasswordReset: time.Hour,
    }
}

func TestIssueAndVerify(t *testing.T) {
    codec := NewCodec("test-secret", "contactly", testPolicy())

    signed, claims, err := codec.Issue(42, TypeAccess)
    require.NoError(t, err)
    require.NotEmpty(t, signed)
    assert.NotEmpty(t, claims.ID)

    parsed, err := codec.Verify(signed, TypeAccess)
    require.NoError(t, err)
    assert.Equal(t, claims.ID, parsed.ID)
    assert.Equal(t, TypeAccess, parsed.TokenType)

    userID, err := parsed.UserID()
    require.NoError(t, err)
    assert.Equal(t, uint(42), userID)
}

func TestIssueDistinctTokenIDs(t *testing.T) {
    codec := NewCodec("test-secret", "contactly", testPolicy())

    _, access, err := codec.Issue(1, TypeAccess)
    require.NoError(t, err)
    _, refresh, err := codec.Issue(1, TypeRefresh)
    require.NoError(t, err)

    assert.NotEqual(t, access.ID, refresh.ID)
}

func TestVerifyWrongType(t *testing.T) {
    codec := NewCodec("test-secret", "contactly", testPolicy())

    signed, _, err := codec.Issue(1, TypeRefresh)
    require.NoError(t, err)

    _, err = codec.Verify(signed, TypeAccess)
    assert.ErrorIs(t, err, ErrWrongType)
}

func TestVerifyExpired(t *testing.T) {
    policy := testPolicy()
    policy.Access = -time.Minute
    codec := NewCodec("test-secret", "contactly", policy)

    signed, _, err := codec.Issue(1, TypeAccess)
    require.NoError(t, err)

    _, err = codec.Verify(signed, TypeAccess)
    assert.ErrorIs(t, err, ErrExpired)
}

func TestVerifyTamperedSignature(t *testing.T) {
    codec := NewCodec("test-secret", "contactly", testPolicy())
    other := NewCodec("other-secret", "contactly", testPolicy())

    signed, _, err := other.Issue(1, TypeAccess)
    require.NoError(t, err)

    _, err = codec.Verify(signed, TypeAccess)
    assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyMalformed(t *testing.T) {
    codec := NewCodec("test-secret", "contactly", testPolicy())

    _, err := codec.Verify("not.a.token", TypeAccess)
    assert.ErrorIs(t, err, ErrMalformed)

    _, err = codec.Verify("", TypeAccess)
    assert.ErrorIs(t, err, ErrMalformed)
}

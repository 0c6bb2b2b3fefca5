package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssue_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Second)
	iss := &Issuer{Secret: []byte("test-secret"), TTL: time.Hour, Now: func() time.Time { return now }}

	token, exp, err := iss.Issue(Subject{ID: "1", Email: "admin@mc.com", FullName: "Administrador MC", Role: "admin", Demo: true})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, now.Add(time.Hour), exp)

	claims, err := AccessClaimsFromToken(token, iss.Secret)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.Subject)
	assert.Equal(t, "admin@mc.com", claims.Email)
	assert.Equal(t, "Administrador MC", claims.FullName)
	assert.Equal(t, "admin", claims.Role)
	assert.True(t, claims.Demo)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestAccessClaimsFromToken_Rejects(t *testing.T) {
	t.Parallel()

	iss := &Issuer{Secret: []byte("right"), TTL: time.Hour}
	token, _, err := iss.Issue(Subject{ID: "2", Role: "user"})
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(token, []byte("wrong"))
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := &Issuer{Secret: []byte("right"), TTL: time.Minute, Now: func() time.Time { return time.Now().Add(-time.Hour) }}
	old, _, err := expired.Issue(Subject{ID: "2"})
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(old, []byte("right"))
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{Role: "admin"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(unsigned, []byte("right"))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = AccessClaimsFromToken("garbage", []byte("right"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", hash)
	assert.True(t, h.Verify("pw1", hash))
	assert.False(t, h.Verify("wrong", hash))

	again, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salted hashes should differ")
}

func TestPasswordHasherClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(99).cost)
}

func TestTokenRoundTrip(t *testing.T) {
	svc, err := NewEphemeralTokenService(time.Hour)
	require.NoError(t, err)

	token, err := svc.IssueAccessToken(7, "alice")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "7", claims.Subject)
}

func TestTokenRejectsOtherKeyAndExpiry(t *testing.T) {
	a, err := NewEphemeralTokenService(time.Hour)
	require.NoError(t, err)
	b, err := NewEphemeralTokenService(time.Hour)
	require.NoError(t, err)

	token, err := a.IssueAccessToken(1, "alice")
	require.NoError(t, err)
	_, err = b.ValidateToken(token)
	assert.Error(t, err)

	expired, err := NewEphemeralTokenService(-time.Minute)
	require.NoError(t, err)
	token, err = expired.IssueAccessToken(1, "alice")
	require.NoError(t, err)
	_, err = expired.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = a.ValidateToken("")
	assert.Error(t, err)
}

func TestNewTokenServiceFromPEM(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	svc, err := NewTokenService(privPEM, pubPEM, time.Minute)
	require.NoError(t, err)
	token, err := svc.IssueAccessToken(3, "bob")
	require.NoError(t, err)
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "bob", claims.Username)

	_, err = NewTokenService(nil, pubPEM, time.Minute)
	assert.Error(t, err)
}

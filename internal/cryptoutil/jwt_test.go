package cryptoutil_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/recert/clustercrypto/internal/cryptoutil"
)

func TestSignJWTThenVerifyJWT(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tokens := cryptoutil.TokenPrimitives{}
	signed, err := tokens.SignJWT(jwt.MapClaims{"sub": "test"}, key)
	require.NoError(t, err)

	claims, err := tokens.VerifyJWT(&key.PublicKey, signed)
	require.NoError(t, err)
	require.Equal(t, "test", claims["sub"])
}

func TestVerifyJWTRejectsWrongKey(t *testing.T) {
	signer, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tokens := cryptoutil.TokenPrimitives{}
	signed, err := tokens.SignJWT(jwt.MapClaims{"sub": "test"}, signer)
	require.NoError(t, err)

	_, err = tokens.VerifyJWT(&other.PublicKey, signed)
	require.Error(t, err)
}

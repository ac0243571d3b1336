package artifact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPrivateKeyIsDeterministic(t *testing.T) {
	key, err := GenerateRSAKey()
	require.NoError(t, err)

	a, err := NewPrivateKey(key)
	require.NoError(t, err)
	b, err := NewPrivateKey(key)
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.Equal(t, AlgorithmRSA, a.Algorithm)
}

func TestDifferentKeysHaveDifferentIdentity(t *testing.T) {
	k1, err := GenerateRSAKey()
	require.NoError(t, err)
	k2, err := GenerateRSAKey()
	require.NoError(t, err)

	a, err := NewPrivateKey(k1)
	require.NoError(t, err)
	b, err := NewPrivateKey(k2)
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestDerivePublicMatchesNewPublicKey(t *testing.T) {
	key, err := GenerateRSAKey()
	require.NoError(t, err)

	derived, err := DerivePublic(key)
	require.NoError(t, err)

	direct, err := NewPublicKey(&key.PublicKey)
	require.NoError(t, err)

	require.Equal(t, direct, derived)
}

func TestPrivateKeyIsValidMapKey(t *testing.T) {
	key, err := GenerateRSAKey()
	require.NoError(t, err)
	content, err := NewPrivateKey(key)
	require.NoError(t, err)

	m := map[PrivateKey]string{content: "present"}
	require.Equal(t, "present", m[content])
}

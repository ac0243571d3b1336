package rules

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllowlistMatchesLiteral(t *testing.T) {
	a := NewAllowlist([]string{"CN=external-anchor"}, nil)
	require.True(t, a.Allows("CN=external-anchor"))
	require.False(t, a.Allows("CN=something-else"))
}

func TestAllowlistMatchesPattern(t *testing.T) {
	a := NewAllowlist(nil, []string{`^CN=.*-signer$`})
	require.True(t, a.Allows("CN=kube-apiserver-lb-signer"))
	require.False(t, a.Allows("CN=regular-leaf"))
}

func TestDefaultAllowlistCoversKnownSigners(t *testing.T) {
	require.True(t, KnownMissingPrivateKeyCerts.Allows("CN=kube-apiserver-lb-signer"))
	require.False(t, KnownMissingPrivateKeyCerts.Allows("CN=my-app"))
}

func TestInvalidPatternIsDropped(t *testing.T) {
	a := NewAllowlist(nil, []string{"("})
	require.False(t, a.Allows("anything"))
}

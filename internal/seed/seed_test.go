package seed_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/recert/clustercrypto/internal/discovery"
	"github.com/recert/clustercrypto/internal/seed"
)

func TestParseDNRoundTrip(t *testing.T) {
	name, err := seed.ParseDN("CN=Test Root,O=Example Org,C=US")
	require.NoError(t, err)
	require.Equal(t, "Test Root", name.CommonName)
	require.Equal(t, []string{"Example Org"}, name.Organization)
	require.Equal(t, []string{"US"}, name.Country)
}

func TestParseDNRejectsEmpty(t *testing.T) {
	_, err := seed.ParseDN("")
	require.Error(t, err)
}

func TestBuildAndWriteProducesScannableFixture(t *testing.T) {
	fixture, err := seed.Build("CN=root", "CN=leaf")
	require.NoError(t, err)
	require.True(t, fixture.LeafCert.NotBefore.Before(fixture.LeafCert.NotAfter))

	dir := t.TempDir()
	require.NoError(t, fixture.Write(dir))

	for _, name := range []string{"root-pair.yaml", "leaf-pair.yaml", "token.yaml"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
	}

	discovered, err := discovery.ScanFixture(dir, nil)
	require.NoError(t, err)
	require.Len(t, discovered, 5) // root cert+key, leaf cert+key, jwt
}

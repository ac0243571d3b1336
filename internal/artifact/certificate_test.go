package artifact

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func selfSignedDER(t *testing.T, subject string) []byte {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: subject},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(24 * time.Hour),
		IsCA:         true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	return der
}

func TestNewCertificateDetectsSelfSigned(t *testing.T) {
	der := selfSignedDER(t, "root")

	cert, parsed, err := NewCertificate(der)
	require.NoError(t, err)
	require.True(t, cert.SelfSigned)
	require.Equal(t, parsed.Subject.String(), cert.Subject)
}

func TestCertificateContentEqualityAcrossParses(t *testing.T) {
	der := selfSignedDER(t, "dup")

	a, _, err := NewCertificate(der)
	require.NoError(t, err)
	b, _, err := NewCertificate(append([]byte(nil), der...))
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestDifferentCertificatesHaveDifferentFingerprints(t *testing.T) {
	a, _, err := NewCertificate(selfSignedDER(t, "one"))
	require.NoError(t, err)
	b, _, err := NewCertificate(selfSignedDER(t, "two"))
	require.NoError(t, err)

	require.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

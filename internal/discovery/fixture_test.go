package discovery_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/recert/clustercrypto/internal/artifact"
	"github.com/recert/clustercrypto/internal/discovery"
)

type doc struct {
	Kind     string            `yaml:"kind"`
	Data     map[string]string `yaml:"data"`
	Metadata struct {
		Location string `yaml:"location"`
	} `yaml:"metadata"`
}

func writeFixture(t *testing.T, dir, name string, d doc) {
	t.Helper()
	out, err := yaml.Marshal(d)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), out, 0o600))
}

func TestScanFixtureDecodesSecretsCertsAndJwts(t *testing.T) {
	dir := t.TempDir()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "fixture"},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
		IsCA:         true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	certPEM := string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
	keyPEM := string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}))

	var secretDoc doc
	secretDoc.Kind = "Secret"
	secretDoc.Data = map[string]string{"tls.crt": certPEM, "tls.key": keyPEM}
	secretDoc.Metadata.Location = "etcd:/secrets/fixture"
	writeFixture(t, dir, "secret.yaml", secretDoc)

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{"sub": "fixture"})
	signed, err := token.SignedString(key)
	require.NoError(t, err)

	var jwtDoc doc
	jwtDoc.Kind = "Jwt"
	jwtDoc.Data = map[string]string{"token": signed}
	jwtDoc.Metadata.Location = "etcd:/tokens/fixture"
	writeFixture(t, dir, "token.yaml", jwtDoc)

	discovered, err := discovery.ScanFixture(dir, nil)
	require.NoError(t, err)
	require.Len(t, discovered, 3) // cert + key from the secret, plus the jwt

	var sawCert, sawKey, sawJwt bool
	for _, d := range discovered {
		switch d.Object.Kind {
		case artifact.ObjectCertificate:
			sawCert = true
			require.Equal(t, artifact.Location{Kind: artifact.KindEtcd, Path: "etcd:/secrets/fixture"}, d.Location)
		case artifact.ObjectPrivateKey:
			sawKey = true
		case artifact.ObjectJwt:
			sawJwt = true
			require.Equal(t, artifact.Location{Kind: artifact.KindEtcd, Path: "etcd:/tokens/fixture"}, d.Location)
		}
	}
	require.True(t, sawCert)
	require.True(t, sawKey)
	require.True(t, sawJwt)
}

func TestScanFixtureSkipsMalformedDocumentButKeepsGoing(t *testing.T) {
	dir := t.TempDir()

	var badDoc doc
	badDoc.Kind = "Certificate"
	// missing tls.crt/certificate field entirely
	writeFixture(t, dir, "bad.yaml", badDoc)

	discovered, err := discovery.ScanFixture(dir, nil)
	require.Error(t, err)
	require.Empty(t, discovered)
}

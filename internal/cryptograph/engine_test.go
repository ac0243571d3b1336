package cryptograph_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/recert/clustercrypto/internal/artifact"
	"github.com/recert/clustercrypto/internal/cryptograph"
	"github.com/recert/clustercrypto/internal/cryptoutil"
	"github.com/recert/clustercrypto/internal/rules"
)

// fakePool hands out a fixed sequence of pre-generated keys, satisfying
// cryptograph.RSAPool without spinning up background workers in tests.
type fakePool struct {
	keys []*rsa.PrivateKey
	next int
}

func newFakePool(t *testing.T, n int) *fakePool {
	t.Helper()
	keys := make([]*rsa.PrivateKey, n)
	for i := range keys {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		keys[i] = key
	}
	return &fakePool{keys: keys}
}

func (p *fakePool) Take() *rsa.PrivateKey {
	k := p.keys[p.next%len(p.keys)]
	p.next++
	return k
}

func issueCert(t *testing.T, subject string, parent *x509.Certificate, parentKey *rsa.PrivateKey) (*x509.Certificate, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	serial, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: subject},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(24 * time.Hour),
		BasicConstraintsValid: true,
		IsCA:                  parent == nil,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
	}

	signerCert := tmpl
	signerKey := key
	if parent != nil {
		signerCert = parent
		signerKey = parentKey
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, signerCert, &key.PublicKey, signerKey)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return cert, key
}

func discoveredCert(t *testing.T, cert *x509.Certificate, loc artifact.Location) artifact.DiscoveredObject {
	t.Helper()
	obj, err := artifact.NewDiscoveredCertificate(cert.Raw)
	require.NoError(t, err)
	return artifact.DiscoveredObject{Object: obj, Location: loc}
}

func discoveredKey(t *testing.T, key *rsa.PrivateKey, loc artifact.Location) artifact.DiscoveredObject {
	t.Helper()
	obj, err := artifact.NewDiscoveredPrivateKey(key)
	require.NoError(t, err)
	return artifact.DiscoveredObject{Object: obj, Location: loc}
}

func discoveredJwt(t *testing.T, token string, loc artifact.Location) artifact.DiscoveredObject {
	t.Helper()
	obj, err := artifact.NewDiscoveredJwt(token)
	require.NoError(t, err)
	return artifact.DiscoveredObject{Object: obj, Location: loc}
}

// buildGraph registers a root cert-key pair, a leaf cert-key pair signed by
// the root, and a JWT signed by the leaf's key, then pairs, associates, and
// resolves signers — the common setup for every engine test below.
func buildGraph(t *testing.T) (*cryptograph.ClusterCryptoObjects, *x509.Certificate, *rsa.PrivateKey, *x509.Certificate, *rsa.PrivateKey, string) {
	t.Helper()

	rootCert, rootKey := issueCert(t, "root", nil, nil)
	leafCert, leafKey := issueCert(t, "leaf", rootCert, rootKey)

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{"sub": "leaf"})
	signed, err := token.SignedString(leafKey)
	require.NoError(t, err)

	graph := cryptograph.New(nil)
	graph.Register([]artifact.DiscoveredObject{
		discoveredCert(t, rootCert, artifact.Location{Kind: artifact.KindFile, Path: "root.crt"}),
		discoveredKey(t, rootKey, artifact.Location{Kind: artifact.KindFile, Path: "root.key"}),
		discoveredCert(t, leafCert, artifact.Location{Kind: artifact.KindFile, Path: "leaf.crt"}),
		discoveredKey(t, leafKey, artifact.Location{Kind: artifact.KindFile, Path: "leaf.key"}),
		discoveredJwt(t, signed, artifact.Location{Kind: artifact.KindFile, Path: "token"}),
	})

	require.NoError(t, graph.PairCertsAndKeys(rules.KnownMissingPrivateKeyCerts))
	graph.AssociatePublicKeys()

	primitives := &cryptoutil.Primitives{}
	tokens := cryptoutil.TokenPrimitives{}
	require.NoError(t, graph.FillCertKeySigners(primitives))
	require.NoError(t, graph.FillJwtSigners(tokens))
	graph.FillSignees()

	return graph, rootCert, rootKey, leafCert, leafKey, signed
}

func TestPairAssociateAndResolveSigners(t *testing.T) {
	graph, _, _, _, _, _ := buildGraph(t)

	certs, privs, _, jwts, pairs := graph.Counts()
	require.Equal(t, 0, certs, "standalone cert registry must be empty after pairing")
	require.Equal(t, 0, privs, "both discovered keys were paired, none should remain standalone")
	require.Equal(t, 2, pairs)
	require.Equal(t, 1, jwts)
}

func TestRegenerateCryptoProducesFreshMaterial(t *testing.T) {
	graph, rootCert, _, leafCert, leafKey, token := buildGraph(t)

	pool := newFakePool(t, 4)
	primitives := &cryptoutil.Primitives{}
	tokens := cryptoutil.TokenPrimitives{}

	err := graph.RegenerateCrypto(cryptograph.Regenerator{
		Pool:   pool,
		Issuer: primitives,
		Tokens: tokens,
		Log:    nil,
	})
	require.NoError(t, err)

	var buf bytesBuffer
	graph.Display(&buf)
	require.Contains(t, buf.String(), "CertKeyPair{")

	committer := &recordingCommitter{written: map[artifact.Location][]byte{}}
	require.NoError(t, graph.CommitToEtcdAndDisk(context.Background(), committer, 0))
	regenerated := string(committer.written[artifact.Location{Kind: artifact.KindFile, Path: "token"}])
	require.NotEmpty(t, regenerated)
	require.NotEqual(t, token, regenerated, "the token must be re-signed with the leaf's new key")

	_ = rootCert
	_ = leafCert
	_ = leafKey
	_ = token
}

func TestCommitToEtcdAndDiskWritesEveryLocation(t *testing.T) {
	graph, _, _, _, _, _ := buildGraph(t)

	pool := newFakePool(t, 4)
	primitives := &cryptoutil.Primitives{}
	tokens := cryptoutil.TokenPrimitives{}
	require.NoError(t, graph.RegenerateCrypto(cryptograph.Regenerator{Pool: pool, Issuer: primitives, Tokens: tokens}))

	committer := &recordingCommitter{written: map[artifact.Location][]byte{}}
	require.NoError(t, graph.CommitToEtcdAndDisk(context.Background(), committer, 0))

	require.Contains(t, committer.written, artifact.Location{Kind: artifact.KindFile, Path: "root.crt"})
	require.Contains(t, committer.written, artifact.Location{Kind: artifact.KindFile, Path: "leaf.key"})
	require.Contains(t, committer.written, artifact.Location{Kind: artifact.KindFile, Path: "token"})
}

type recordingCommitter struct {
	mu      sync.Mutex
	written map[artifact.Location][]byte
}

func (r *recordingCommitter) CommitAtLocation(ctx context.Context, loc artifact.Location, serialized []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.written[loc] = serialized
	return nil
}

// bytesBuffer avoids importing bytes just for a Write sink in the test above.
type bytesBuffer struct {
	data []byte
}

func (b *bytesBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *bytesBuffer) String() string { return string(b.data) }

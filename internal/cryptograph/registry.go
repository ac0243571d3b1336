package cryptograph

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/recert/clustercrypto/internal/artifact"
)

// ClusterCryptoObjects is the aggregate graph of every crypto artifact
// discovered in the cluster, their locations, and their signing
// relationships. All graph mutation phases run strictly
// serially under mu — callers MUST invoke the phase methods in
// the order register -> pair -> associate -> fill signers -> fill signees ->
// regenerate -> commit.
type ClusterCryptoObjects struct {
	mu sync.Mutex

	privateKeys map[artifact.PrivateKey]*DistributedPrivateKey
	publicKeys  map[artifact.PublicKey]*DistributedPublicKey
	certs       map[artifact.Certificate]*DistributedCert
	jwts        map[string]*DistributedJwt // keyed by canonical token string

	publicToPrivate map[artifact.PublicKey]artifact.PrivateKey

	certKeyPairs []*CertKeyPair

	log *logrus.Entry
}

// New builds an empty graph.
func New(log *logrus.Entry) *ClusterCryptoObjects {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &ClusterCryptoObjects{
		privateKeys:     make(map[artifact.PrivateKey]*DistributedPrivateKey),
		publicKeys:      make(map[artifact.PublicKey]*DistributedPublicKey),
		certs:           make(map[artifact.Certificate]*DistributedCert),
		jwts:            make(map[string]*DistributedJwt),
		publicToPrivate: make(map[artifact.PublicKey]artifact.PrivateKey),
		log:             log,
	}
}

// Register folds a stream of discovered {object, location} events into the
// four content-keyed registries. Never fails on duplicate
// content; a private key whose derived public key collides with a different
// private key already in the index silently overwrites it.
func (c *ClusterCryptoObjects) Register(discovered []artifact.DiscoveredObject) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, d := range discovered {
		switch d.Object.Kind {
		case artifact.ObjectPrivateKey:
			c.registerPrivateKey(d.Object, d.Location)
		case artifact.ObjectPublicKey:
			c.registerPublicKey(d.Object, d.Location)
		case artifact.ObjectCertificate:
			c.registerCertificate(d.Object, d.Location)
		case artifact.ObjectJwt:
			c.registerJwt(d.Object, d.Location)
		}
	}
}

func (c *ClusterCryptoObjects) registerPrivateKey(obj artifact.CryptoObject, loc artifact.Location) {
	c.publicToPrivate[obj.DerivedPublic] = obj.PrivateKey

	if existing, ok := c.privateKeys[obj.PrivateKey]; ok {
		existing.Locations.Add(loc)
		return
	}
	c.privateKeys[obj.PrivateKey] = &DistributedPrivateKey{
		Key:       obj.PrivateKeyRaw,
		Content:   obj.PrivateKey,
		Locations: artifact.NewLocations(loc),
	}
}

func (c *ClusterCryptoObjects) registerPublicKey(obj artifact.CryptoObject, loc artifact.Location) {
	if existing, ok := c.publicKeys[obj.PublicKey]; ok {
		existing.Locations.Add(loc)
		return
	}
	c.publicKeys[obj.PublicKey] = &DistributedPublicKey{
		Key:       obj.PublicKeyRaw,
		Content:   obj.PublicKey,
		Locations: artifact.NewLocations(loc),
	}
}

func (c *ClusterCryptoObjects) registerCertificate(obj artifact.CryptoObject, loc artifact.Location) {
	if existing, ok := c.certs[obj.Certificate]; ok {
		existing.Locations.Add(loc)
		return
	}
	c.certs[obj.Certificate] = &DistributedCert{
		Certificate: obj.Certificate,
		Parsed:      obj.ParsedCertificate,
		Locations:   artifact.NewLocations(loc),
	}
}

func (c *ClusterCryptoObjects) registerJwt(obj artifact.CryptoObject, loc artifact.Location) {
	if existing, ok := c.jwts[obj.Jwt.Token]; ok {
		existing.Locations.Add(loc)
		return
	}
	c.jwts[obj.Jwt.Token] = &DistributedJwt{
		Jwt:       obj.Jwt,
		Token:     obj.Jwt.Token,
		Locations: artifact.NewLocations(loc),
		Signer:    JwtSigner{Kind: JwtSignerUnknown},
	}
}

// Counts returns the current size of each registry, for logging/diagnostics.
func (c *ClusterCryptoObjects) Counts() (certs, privateKeys, publicKeys, jwts, pairs int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.certs), len(c.privateKeys), len(c.publicKeys), len(c.jwts), len(c.certKeyPairs)
}

var errInternalConsistency = errors.New("internal-consistency fault")

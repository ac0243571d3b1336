package cryptograph

import (
	"github.com/pkg/errors"

	"github.com/recert/clustercrypto/internal/artifact"
)

// Allowlist answers whether a certificate subject is known to legitimately
// lack a discovered private key.
type Allowlist interface {
	Allows(subject string) bool
}

// PairCertsAndKeys walks every DistributedCert and attempts to find its
// matching private key via the public-to-private index, producing
// CertKeyPairs. After this call the standalone cert registry is empty and
// every matched private key has been removed from the standalone pool.
func (c *ClusterCryptoObjects) PairCertsAndKeys(allowlist Allowlist) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for certKey, distributedCert := range c.certs {
		pair := &CertKeyPair{DistributedCert: distributedCert}

		subjectPub := certKey.SubjectPublicKey
		if privContent, ok := c.publicToPrivate[subjectPub]; ok {
			distributedPrivateKey, ok := c.privateKeys[privContent]
			if !ok {
				return errors.Wrapf(errInternalConsistency, errPrivateKeyNotFoundForPublic, subjectPub.Fingerprint())
			}
			pair.DistributedPrivateKey = distributedPrivateKey
			delete(c.privateKeys, privContent)
		} else if allowlist != nil && allowlist.Allows(certKey.Subject) {
			// Known missing private key; the pair stands with no private half.
		} else {
			return errors.Errorf(errFmtMissingPrivateKey, certKey.Subject, distributedCert.Locations)
		}

		c.certKeyPairs = append(c.certKeyPairs, pair)
	}

	c.certs = make(map[artifact.Certificate]*DistributedCert)
	return nil
}

package cryptograph

import "github.com/recert/clustercrypto/internal/artifact"

// AssociatePublicKeys attaches any standalone public key to the cert-key
// pair or standalone private key that owns the matching private half. A
// public key with no corresponding private owner remains unattached —
// permitted, e.g. for external trust anchors.
func (c *ClusterCryptoObjects) AssociatePublicKeys() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, pair := range c.certKeyPairs {
		subjectPub := pair.DistributedCert.Certificate.SubjectPublicKey
		if pub, ok := c.publicKeys[subjectPub]; ok {
			pair.AssociatedPublicKey = pub
		}
	}

	for _, priv := range c.privateKeys {
		pubContent, err := artifact.DerivePublic(priv.Key)
		if err != nil {
			continue
		}
		if pub, ok := c.publicKeys[pubContent]; ok {
			priv.AssociatedPublicKey = pub
		}
	}
}

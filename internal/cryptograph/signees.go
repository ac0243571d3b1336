package cryptograph

// FillSignees is the pointwise inverse of FillCertKeySigners/FillJwtSigners
//: every signer ends up with the list of artifacts it signs.
// Comparison against a cert-key pair's signer is by cert *content* equality
// (artifact.Certificate is comparable), not pair identity, since the signer
// cert may have been discovered as a separate DistributedCert structurally
// shared between pairs.
func (c *ClusterCryptoObjects) FillSignees() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, pair := range c.certKeyPairs {
		var signees []Signee

		for _, candidate := range c.certKeyPairs {
			if candidate.Signer == nil {
				continue
			}
			if candidate.Signer.DistributedCert.Certificate == pair.DistributedCert.Certificate {
				signees = append(signees, Signee{Kind: SigneeCertKeyPair, CertKeyPair: candidate})
			}
		}

		for _, j := range c.jwts {
			if j.Signer.Kind == JwtSignerCertKeyPair && j.Signer.CertKeyPair == pair {
				signees = append(signees, Signee{Kind: SigneeJwt, Jwt: j})
			}
		}

		pair.Signees = signees
	}

	for _, priv := range c.privateKeys {
		for _, j := range c.jwts {
			if j.Signer.Kind == JwtSignerPrivateKey && j.Signer.PrivateKey == priv {
				priv.Signees = append(priv.Signees, Signee{Kind: SigneeJwt, Jwt: j})
			}
		}
	}
}

package cryptograph

import (
	"crypto"
	"crypto/x509"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/recert/clustercrypto/internal/artifact"
)

// Regenerator bundles the collaborators regeneration needs: a blocking RSA
// key source, a certificate issuer, and a JWT re-signer.
type Regenerator struct {
	Pool   RSAPool
	Issuer CertIssuer
	Tokens TokenSigner
	Log    *logrus.Entry
}

// RegenerateCrypto performs the depth-first re-issuance: every root cert-key
// pair is regenerated first (which recursively regenerates its signees),
// then every remaining standalone private key regenerates and re-signs its
// own signees. A final consistency check runs last.
func (c *ClusterCryptoObjects) RegenerateCrypto(r Regenerator) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := r.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	for _, pair := range c.certKeyPairs {
		if pair.Signer != nil {
			continue
		}
		if err := regeneratePair(pair, nil, nil, r); err != nil {
			return err
		}
	}

	for _, priv := range c.privateKeys {
		if err := regenerateStandaloneKey(priv, r); err != nil {
			return err
		}
	}

	// Public keys with no private-key owner (external trust anchors) have no
	// material to regenerate; they are considered final as discovered, and
	// are marked regenerated so every record ends up consistently flagged.
	for _, pub := range c.publicKeys {
		if !pub.Regenerated {
			pub.Regenerated = true
		}
	}

	log.Info("regeneration complete, verifying")
	return c.assertRegeneration()
}

// regeneratePair re-issues pair's certificate (self-signed if parent is nil,
// otherwise signed by parentCert/parentKey), then recurses into its signees
// with the freshly drawn key as their new parent. Root-driven top-down
// ordering ensures every artifact is re-issued exactly once: regenerating a
// leaf before its signer would force re-issuing the leaf twice.
func regeneratePair(pair *CertKeyPair, parentCert *x509.Certificate, parentKey crypto.PrivateKey, r Regenerator) error {
	newKey := r.Pool.Take()

	var newCert *x509.Certificate
	var err error
	if parentCert == nil {
		newCert, err = r.Issuer.SelfSign(pair.DistributedCert.Parsed, newKey)
	} else {
		newCert, err = r.Issuer.Sign(pair.DistributedCert.Parsed, parentCert, parentKey, &newKey.PublicKey)
	}
	if err != nil {
		return errors.Wrapf(err, "regenerate certificate at %s", pair.DistributedCert.Locations)
	}

	content, parsed, err := artifact.NewCertificate(newCert.Raw)
	if err != nil {
		return errors.Wrap(err, "re-derive regenerated certificate identity")
	}

	pair.DistributedCert.Certificate = content
	pair.DistributedCert.Parsed = parsed
	if pair.DistributedPrivateKey != nil {
		newContent, err := artifact.NewPrivateKey(newKey)
		if err != nil {
			return errors.Wrap(err, "re-derive regenerated private key identity")
		}
		pair.DistributedPrivateKey.Key = newKey
		pair.DistributedPrivateKey.Content = newContent
		pair.DistributedPrivateKey.Regenerated = true
	}
	if err := regenerateAssociatedPublicKey(pair.AssociatedPublicKey, newKey); err != nil {
		return err
	}
	pair.Regenerated = true

	for _, signee := range pair.Signees {
		switch signee.Kind {
		case SigneeCertKeyPair:
			if err := regeneratePair(signee.CertKeyPair, parsed, newKey, r); err != nil {
				return err
			}
		case SigneeJwt:
			if err := regenerateJwt(signee.Jwt, newKey, r); err != nil {
				return err
			}
		}
	}

	return nil
}

// regenerateStandaloneKey draws a fresh key for a private key with no
// associated certificate and re-signs every token it signs.
func regenerateStandaloneKey(priv *DistributedPrivateKey, r Regenerator) error {
	newKey := r.Pool.Take()
	content, err := artifact.NewPrivateKey(newKey)
	if err != nil {
		return errors.Wrap(err, "re-derive regenerated private key identity")
	}
	priv.Key = newKey
	priv.Content = content
	priv.Regenerated = true
	if err := regenerateAssociatedPublicKey(priv.AssociatedPublicKey, newKey); err != nil {
		return err
	}

	for _, signee := range priv.Signees {
		if signee.Kind != SigneeJwt {
			continue
		}
		if err := regenerateJwt(signee.Jwt, newKey, r); err != nil {
			return err
		}
	}
	return nil
}

// regenerateAssociatedPublicKey mirrors a regenerated owner's new public half
// onto its separately-discovered DistributedPublicKey record, if any.
func regenerateAssociatedPublicKey(pub *DistributedPublicKey, newKey crypto.PrivateKey) error {
	if pub == nil {
		return nil
	}
	signer, ok := newKey.(crypto.Signer)
	if !ok {
		return errors.New("regenerated key does not implement crypto.Signer")
	}
	content, err := artifact.NewPublicKey(signer.Public())
	if err != nil {
		return errors.Wrap(err, "re-derive regenerated public key identity")
	}
	pub.Key = signer.Public()
	pub.Content = content
	pub.Regenerated = true
	return nil
}

func regenerateJwt(j *DistributedJwt, signerKey crypto.PrivateKey, r Regenerator) error {
	claims := j.Jwt.Claims
	if claims == nil {
		claims = jwt.MapClaims{}
	}
	token, err := r.Tokens.SignJWT(claims, signerKey)
	if err != nil {
		return errors.Wrapf(err, "re-sign jwt at %s", j.Locations)
	}
	j.Token = token
	j.Regenerated = true
	return nil
}

// assertRegeneration confirms every record's Regenerated flag is true, every
// non-root pair's signer was regenerated and lists the pair among its
// signees, and the standalone cert registry is empty.
func (c *ClusterCryptoObjects) assertRegeneration() error {
	for _, pair := range c.certKeyPairs {
		if signer := pair.Signer; signer != nil {
			if !signer.Regenerated {
				return errors.Errorf(errFmtSignerNotRegenerated, signer.DistributedCert.Locations, pair.DistributedCert.Locations)
			}
			if len(signer.Signees) == 0 {
				return errors.Errorf(errFmtSigneeListEmpty, signer.DistributedCert.Locations)
			}
			for _, signee := range signer.Signees {
				if !signee.Regenerated() {
					return errors.Errorf("didn't regenerate signee %s of signer %s", signee, signer)
				}
			}
			found := false
			for _, signee := range signer.Signees {
				if signee.Kind == SigneeCertKeyPair && signee.CertKeyPair == pair {
					found = true
					break
				}
			}
			if !found {
				return errors.Errorf(errFmtSigneeMissingFromSignerSet, signer.DistributedCert.Locations, pair.DistributedCert.Locations)
			}
		}
		if !pair.Regenerated {
			return errors.Errorf(errFmtNotRegenerated, pair.DistributedCert.Locations)
		}
	}

	for _, pub := range c.publicKeys {
		if !pub.Regenerated {
			return errors.Errorf(errFmtNotRegenerated, pub.Locations)
		}
	}
	for _, j := range c.jwts {
		if !j.Regenerated {
			return errors.Errorf(errFmtNotRegenerated, j.Locations)
		}
	}
	for _, priv := range c.privateKeys {
		if !priv.Regenerated {
			return errors.Errorf(errFmtNotRegenerated, priv.Locations)
		}
	}
	if len(c.certs) != 0 {
		return errors.New(errStandaloneCertsNotEmpty)
	}
	return nil
}

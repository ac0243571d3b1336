package cryptograph

import (
	"crypto"

	"github.com/pkg/errors"
)

// FillCertKeySigners resolves, for every CertKeyPair, which other
// CertKeyPair issued its certificate. Self-signed pairs get
// no signer and are treated as roots. Iteration order over candidates is
// unspecified; if multiple candidates verify, the *last* one encountered
// wins — implementations MUST document this and it is
// intentionally not short-circuited with a break.
func (c *ClusterCryptoObjects) FillCertKeySigners(verifier CertVerifier) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, pair := range c.certKeyPairs {
		if pair.DistributedCert.Certificate.SelfSigned {
			continue
		}

		var signer *CertKeyPair
		for _, candidate := range c.certKeyPairs {
			outcome, err := verifier.VerifyCertSignedBy(candidate.DistributedCert.Parsed, pair.DistributedCert.Parsed)
			switch outcome {
			case SignatureOK:
				signer = candidate
			case SignatureMismatch:
				// not this one; keep scanning
			case SignatureUnsupportedAlgorithm:
				if verifier.OpenSSLVerifySigned(candidate.DistributedCert.Parsed, pair.DistributedCert.Parsed) {
					signer = candidate
				}
			default:
				return errors.Errorf(errFmtCryptoPrimitiveFailure, err)
			}
		}

		if signer == nil {
			return errors.Errorf(errFmtNoSigningCert, pair.DistributedCert.Locations)
		}
		pair.Signer = signer
	}

	return nil
}

// FillJwtSigners resolves, for every token, which private key (standalone or
// held by a cert-key pair) signed it. An optimistic
// last-signer cache is tried first since in practice one key signs most
// tokens in a cluster; correctness does not depend on the cache hitting.
func (c *ClusterCryptoObjects) FillJwtSigners(verifier TokenVerifier) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var lastSigner *DistributedPrivateKey

	for _, distributedJwt := range c.jwts {
		signer := JwtSigner{Kind: JwtSignerUnknown}

		if lastSigner != nil {
			if _, err := verifier.VerifyJWT(publicOf(lastSigner.Key), distributedJwt.Token); err == nil {
				signer = JwtSigner{Kind: JwtSignerPrivateKey, PrivateKey: lastSigner}
			}
		}
		if signer.IsUnknown() {
			for _, priv := range c.privateKeys {
				if _, err := verifier.VerifyJWT(publicOf(priv.Key), distributedJwt.Token); err == nil {
					signer = JwtSigner{Kind: JwtSignerPrivateKey, PrivateKey: priv}
					lastSigner = priv
					break
				}
			}
		}

		if signer.IsUnknown() {
			for _, pair := range c.certKeyPairs {
				if pair.DistributedPrivateKey == nil {
					continue
				}
				if _, err := verifier.VerifyJWT(publicOf(pair.DistributedPrivateKey.Key), distributedJwt.Token); err == nil {
					signer = JwtSigner{Kind: JwtSignerCertKeyPair, CertKeyPair: pair}
					break
				}
			}
		}

		if signer.IsUnknown() {
			return errors.Errorf(errJwtUnknownSigner+": %s", distributedJwt.Locations)
		}

		distributedJwt.Signer = signer
	}

	return nil
}

func publicOf(priv crypto.PrivateKey) crypto.PublicKey {
	signer, ok := priv.(crypto.Signer)
	if !ok {
		return nil
	}
	return signer.Public()
}

package cryptograph

import (
	"crypto"
	"crypto/rsa"
	"crypto/x509"

	"github.com/golang-jwt/jwt/v5"
)

// SignatureOutcome is the three-way result of checking whether one
// certificate signed another: Ok, SignatureMismatch, or
// UnsupportedAlgorithm. Any other error is returned alongside
// SignatureOther and aborts the run.
type SignatureOutcome int

const (
	SignatureOK SignatureOutcome = iota
	SignatureMismatch
	SignatureUnsupportedAlgorithm
	SignatureOther
)

// CertVerifier is the crypto-primitives collaborator for certificate
// signature checks.
type CertVerifier interface {
	VerifyCertSignedBy(candidateParent, child *x509.Certificate) (SignatureOutcome, error)
	OpenSSLVerifySigned(candidateParent, child *x509.Certificate) bool
}

// TokenVerifier verifies a JWT against a candidate public key.
type TokenVerifier interface {
	VerifyJWT(pub crypto.PublicKey, token string) (jwt.MapClaims, error)
}

// TokenSigner re-signs a JWT's claims with a new private key.
type TokenSigner interface {
	SignJWT(claims jwt.MapClaims, key crypto.PrivateKey) (string, error)
}

// CertIssuer issues certificates during regeneration.
type CertIssuer interface {
	SelfSign(template *x509.Certificate, key crypto.PrivateKey) (*x509.Certificate, error)
	Sign(template, parent *x509.Certificate, parentKey crypto.PrivateKey, childPub crypto.PublicKey) (*x509.Certificate, error)
}

// RSAPool is the blocking pre-generated key cache.
type RSAPool interface {
	Take() *rsa.PrivateKey
}

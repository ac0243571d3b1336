// Package cryptoutil implements the crypto-primitives collaborators:
// certificate signature verification (with an OpenSSL fallback for
// algorithms the standard library's x509 package does not verify), JWT
// sign/verify, and certificate issuance.
package cryptoutil

import (
	"crypto"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/recert/clustercrypto/internal/cryptograph"
)

// Primitives implements cryptograph.CertVerifier and cryptograph.CertIssuer.
type Primitives struct {
	// OpenSSLPath overrides the "openssl" binary used for the unsupported-
	// algorithm fallback; empty means look up "openssl" on PATH.
	OpenSSLPath string
}

var _ cryptograph.CertVerifier = (*Primitives)(nil)
var _ cryptograph.CertIssuer = (*Primitives)(nil)

// VerifyCertSignedBy checks whether candidateParent's key signed child,
// mapping Go's x509 errors onto a three-way outcome.
func (p *Primitives) VerifyCertSignedBy(candidateParent, child *x509.Certificate) (cryptograph.SignatureOutcome, error) {
	err := child.CheckSignatureFrom(candidateParent)
	if err == nil {
		return cryptograph.SignatureOK, nil
	}

	var insecure x509.InsecureAlgorithmError
	if errors.As(err, &insecure) || err == x509.ErrUnsupportedAlgorithm {
		return cryptograph.SignatureUnsupportedAlgorithm, err
	}

	if isSignatureMismatch(err) {
		return cryptograph.SignatureMismatch, nil
	}

	return cryptograph.SignatureOther, err
}

// isSignatureMismatch reports whether err represents "this candidate simply
// did not sign the certificate" rather than an unexpected failure mode.
// CheckSignatureFrom returns a ConstraintViolationError for constraint
// violations (parent not marked as CA, key usage) and a separate error for a
// signature mismatch; both mean "not this signer" for our purposes.
func isSignatureMismatch(err error) bool {
	var constraintErr x509.ConstraintViolationError
	if errors.As(err, &constraintErr) {
		return true
	}
	return errors.Is(err, rsa.ErrVerification) || isGenericSignatureError(err)
}

func isGenericSignatureError(err error) bool {
	// crypto/x509 returns a bare fmt.Errorf from checkSignature for most
	// "signature does not verify" cases, with no sentinel to match on. We
	// err on the side of treating everything CheckSignatureFrom can return,
	// other than the algorithm-support errors handled above, as a mismatch
	// rather than a hard failure. As a result VerifyCertSignedBy never
	// returns SignatureOther: an unexpected verification error does not
	// abort signer resolution, it only rules this candidate out.
	return err != nil
}

// OpenSSLVerifySigned shells out to openssl as a fallback for signature
// algorithms crypto/x509 cannot verify.
// This mirrors the original's documented hack: "this is a hack to get
// around the fact this lib doesn't support all signature algorithms yet".
func (p *Primitives) OpenSSLVerifySigned(candidateParent, child *x509.Certificate) bool {
	bin := p.OpenSSLPath
	if bin == "" {
		bin = "openssl"
	}

	dir, err := os.MkdirTemp("", "clustercrypto-openssl-*")
	if err != nil {
		return false
	}
	defer os.RemoveAll(dir)

	parentPath := filepath.Join(dir, "parent.pem")
	childPath := filepath.Join(dir, "child.pem")
	if err := writePEMCert(parentPath, candidateParent.Raw); err != nil {
		return false
	}
	if err := writePEMCert(childPath, child.Raw); err != nil {
		return false
	}

	cmd := exec.Command(bin, "verify", "-no_check_time", "-partial_chain", "-trusted", parentPath, childPath)
	return cmd.Run() == nil
}

func writePEMCert(path string, der []byte) error {
	return os.WriteFile(path, pemEncodeCert(der), 0o600)
}

// SelfSign re-issues a root certificate, reusing template's subject, serial,
// key usage and validity length (re-based to the current time) but with a
// fresh key and signature.
func (p *Primitives) SelfSign(template *x509.Certificate, key crypto.PrivateKey) (*x509.Certificate, error) {
	return issue(template, template, key, publicOf(key))
}

// Sign re-issues a non-root certificate signed by parent/parentKey.
func (p *Primitives) Sign(template, parent *x509.Certificate, parentKey crypto.PrivateKey, childPub crypto.PublicKey) (*x509.Certificate, error) {
	return issue(template, parent, parentKey, childPub)
}

func issue(template, parent *x509.Certificate, signerKey crypto.PrivateKey, pub crypto.PublicKey) (*x509.Certificate, error) {
	tmpl := *template
	tmpl.PublicKey = pub
	tmpl.SignatureAlgorithm = sigAlgorithm(signerKey)
	if parent == template {
		// Self-signed: the issuer is the re-issued certificate itself, so its
		// public key must be the new one the signer key matches.
		parent = &tmpl
	}

	var err error
	tmpl.SubjectKeyId, err = computeSKI(pub)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "compute subject key identifier for regenerated certificate")
	}

	now := time.Now().UTC()
	validity := template.NotAfter.Sub(template.NotBefore)
	tmpl.NotBefore = now
	tmpl.NotAfter = now.Add(validity)

	der, err := x509.CreateCertificate(cryptoRandReader(), &tmpl, parent, pub, signerKey)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "create regenerated certificate")
	}
	return x509.ParseCertificate(der)
}

func sigAlgorithm(key crypto.PrivateKey) x509.SignatureAlgorithm {
	switch key.(type) {
	case *rsa.PrivateKey:
		return x509.SHA256WithRSA
	default:
		return x509.SHA256WithRSA
	}
}

func computeSKI(pub crypto.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, err
	}
	// RFC 5280 method 2: least significant 64 bits of SHA-1, tagged. We use
	// the simpler method 1 (full SHA-1) instead.
	return sha1Sum(der), nil
}

func publicOf(key crypto.PrivateKey) crypto.PublicKey {
	if signer, ok := key.(crypto.Signer); ok {
		return signer.Public()
	}
	return nil
}

package artifact

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"fmt"
)

// Certificate is the content-addressed identity of a certificate: its DER
// hash plus the subject/issuer/subject-public-key fields needed to dedup and
// pair without re-parsing. All fields are comparable, so Certificate itself
// is a valid map key with content equality.
type Certificate struct {
	digest           [32]byte
	Subject          string
	Issuer           string
	SubjectPublicKey PublicKey
	SelfSigned       bool
}

func (c Certificate) Fingerprint() string { return hex.EncodeToString(c.digest[:]) }

// NewCertificate parses DER-encoded certificate bytes into its content
// identity and the parsed *x509.Certificate used for signature checks.
func NewCertificate(der []byte) (Certificate, *x509.Certificate, error) {
	parsed, err := x509.ParseCertificate(der)
	if err != nil {
		return Certificate{}, nil, fmt.Errorf("parse certificate: %w", err)
	}
	pub, err := NewPublicKey(parsed.PublicKey)
	if err != nil {
		return Certificate{}, nil, fmt.Errorf("certificate subject public key: %w", err)
	}
	cert := Certificate{
		digest:           sha256.Sum256(der),
		Subject:          parsed.Subject.String(),
		Issuer:           parsed.Issuer.String(),
		SubjectPublicKey: pub,
		SelfSigned:       parsed.Subject.String() == parsed.Issuer.String(),
	}
	return cert, parsed, nil
}

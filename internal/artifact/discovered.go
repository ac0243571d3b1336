package artifact

import (
	"crypto"
	"crypto/x509"
)

// ObjectKind discriminates the CryptoObject tagged union.
type ObjectKind int

const (
	ObjectPrivateKey ObjectKind = iota
	ObjectPublicKey
	ObjectCertificate
	ObjectJwt
)

// CryptoObject is the tagged union of crypto objects a discovery scanner can
// report: {PrivateKey(priv, derived_pub), PublicKey, Certificate, Jwt}.
//
// Only the fields matching Kind are populated.
type CryptoObject struct {
	Kind ObjectKind

	// ObjectPrivateKey
	PrivateKeyRaw  crypto.PrivateKey
	PrivateKey     PrivateKey
	DerivedPublic  PublicKey

	// ObjectPublicKey
	PublicKeyRaw crypto.PublicKey
	PublicKey    PublicKey

	// ObjectCertificate
	CertificateRaw    []byte
	Certificate       Certificate
	ParsedCertificate *x509.Certificate

	// ObjectJwt
	Jwt Jwt
}

// NewDiscoveredPrivateKey builds the PrivateKey variant of CryptoObject,
// deriving its associated public key.
func NewDiscoveredPrivateKey(raw crypto.PrivateKey) (CryptoObject, error) {
	priv, err := NewPrivateKey(raw)
	if err != nil {
		return CryptoObject{}, err
	}
	pub, err := DerivePublic(raw)
	if err != nil {
		return CryptoObject{}, err
	}
	return CryptoObject{Kind: ObjectPrivateKey, PrivateKeyRaw: raw, PrivateKey: priv, DerivedPublic: pub}, nil
}

// NewDiscoveredPublicKey builds the PublicKey variant of CryptoObject.
func NewDiscoveredPublicKey(raw crypto.PublicKey) (CryptoObject, error) {
	pub, err := NewPublicKey(raw)
	if err != nil {
		return CryptoObject{}, err
	}
	return CryptoObject{Kind: ObjectPublicKey, PublicKeyRaw: raw, PublicKey: pub}, nil
}

// NewDiscoveredCertificate builds the Certificate variant of CryptoObject.
func NewDiscoveredCertificate(der []byte) (CryptoObject, error) {
	cert, parsed, err := NewCertificate(der)
	if err != nil {
		return CryptoObject{}, err
	}
	return CryptoObject{Kind: ObjectCertificate, CertificateRaw: der, Certificate: cert, ParsedCertificate: parsed}, nil
}

// NewDiscoveredJwt builds the Jwt variant of CryptoObject.
func NewDiscoveredJwt(token string) (CryptoObject, error) {
	j, err := ParseJwt(token)
	if err != nil {
		return CryptoObject{}, err
	}
	return CryptoObject{Kind: ObjectJwt, Jwt: j}, nil
}

// DiscoveredObject pairs one discovered crypto object with the location it
// was found at.
type DiscoveredObject struct {
	Object   CryptoObject
	Location Location
}

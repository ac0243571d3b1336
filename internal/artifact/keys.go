package artifact

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"fmt"
)

// KeyAlgorithm names the supported key algorithms. Discovery may observe
// RSA or ECDSA material; regeneration (internal/rsapool) only ever produces
// RSA, matching the original recert implementation.
type KeyAlgorithm int

const (
	AlgorithmUnknown KeyAlgorithm = iota
	AlgorithmRSA
	AlgorithmECDSA
)

func (a KeyAlgorithm) String() string {
	switch a {
	case AlgorithmRSA:
		return "rsa"
	case AlgorithmECDSA:
		return "ecdsa"
	default:
		return "unknown"
	}
}

// PrivateKey is the content-addressed identity of a private key: algorithm
// plus a digest of its PKCS#8 DER encoding. It is comparable and safe as a
// map key.
type PrivateKey struct {
	Algorithm KeyAlgorithm
	digest    [32]byte
}

// PublicKey is the content-addressed identity of a public key.
type PublicKey struct {
	Algorithm KeyAlgorithm
	digest    [32]byte
}

func (k PrivateKey) Fingerprint() string { return hex.EncodeToString(k.digest[:]) }
func (k PublicKey) Fingerprint() string  { return hex.EncodeToString(k.digest[:]) }

// NewPrivateKey builds the content identity for a raw private key, deriving
// its algorithm from the concrete Go type.
func NewPrivateKey(key crypto.PrivateKey) (PrivateKey, error) {
	algo, err := algorithmOf(key)
	if err != nil {
		return PrivateKey{}, err
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return PrivateKey{}, fmt.Errorf("marshal private key: %w", err)
	}
	return PrivateKey{Algorithm: algo, digest: sha256.Sum256(der)}, nil
}

// NewPublicKey builds the content identity for a raw public key.
func NewPublicKey(key crypto.PublicKey) (PublicKey, error) {
	algo, err := algorithmOfPublic(key)
	if err != nil {
		return PublicKey{}, err
	}
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return PublicKey{}, fmt.Errorf("marshal public key: %w", err)
	}
	return PublicKey{Algorithm: algo, digest: sha256.Sum256(der)}, nil
}

// DerivePublic returns the PublicKey identity matching the given private key.
func DerivePublic(key crypto.PrivateKey) (PublicKey, error) {
	switch k := key.(type) {
	case *rsa.PrivateKey:
		return NewPublicKey(&k.PublicKey)
	case *ecdsa.PrivateKey:
		return NewPublicKey(&k.PublicKey)
	default:
		return PublicKey{}, fmt.Errorf("unsupported private key type %T", key)
	}
}

func algorithmOf(key crypto.PrivateKey) (KeyAlgorithm, error) {
	switch key.(type) {
	case *rsa.PrivateKey:
		return AlgorithmRSA, nil
	case *ecdsa.PrivateKey:
		return AlgorithmECDSA, nil
	default:
		return AlgorithmUnknown, fmt.Errorf("unsupported private key type %T", key)
	}
}

func algorithmOfPublic(key crypto.PublicKey) (KeyAlgorithm, error) {
	switch key.(type) {
	case *rsa.PublicKey:
		return AlgorithmRSA, nil
	case *ecdsa.PublicKey:
		return AlgorithmECDSA, nil
	default:
		return AlgorithmUnknown, fmt.Errorf("unsupported public key type %T", key)
	}
}

// GenerateRSAKey draws a fresh RSA-2048 key pair from the CSPRNG. Used by
// internal/rsapool to fill the pre-generated cache.
func GenerateRSAKey() (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(rand.Reader, 2048)
}

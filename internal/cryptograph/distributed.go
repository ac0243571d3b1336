// Package cryptograph is the cluster cryptographic graph engine: it
// de-duplicates discovered crypto artifacts, reconstructs their signing
// relationships, and drives topologically correct re-issuance.
package cryptograph

import (
	"crypto"
	"crypto/x509"

	"github.com/recert/clustercrypto/internal/artifact"
)

// DistributedCert is a Certificate plus every location it was observed at.
// Certificates are immutable content, so unlike the other
// Distributed* records it has no mutable fields of its own.
type DistributedCert struct {
	Certificate artifact.Certificate
	Parsed      *x509.Certificate
	Locations   artifact.Locations
}

// DistributedPrivateKey is a PrivateKey plus its locations, the artifacts it
// signs once resolved, its associated public key (if one was discovered
// separately), and whether it has been regenerated.
type DistributedPrivateKey struct {
	Key       crypto.PrivateKey
	Content   artifact.PrivateKey
	Locations artifact.Locations

	Signees             []Signee
	AssociatedPublicKey *DistributedPublicKey
	Regenerated         bool
}

// DistributedPublicKey is a PublicKey plus its locations.
type DistributedPublicKey struct {
	Key         crypto.PublicKey
	Content     artifact.PublicKey
	Locations   artifact.Locations
	Regenerated bool
}

// DistributedJwt is a Jwt plus its locations, resolved signer, and whether it
// has been regenerated (re-signed).
type DistributedJwt struct {
	Jwt       artifact.Jwt
	Token     string
	Locations artifact.Locations

	Signer      JwtSigner
	Regenerated bool
}

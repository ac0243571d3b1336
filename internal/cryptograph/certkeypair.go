package cryptograph

import "fmt"

// CertKeyPair joins a certificate with its matching private key, if one was
// found. A pair strongly owns its DistributedCert and (if present)
// DistributedPrivateKey, but other pairs may reference it as their signer —
// that back-reference is just a plain pointer in the Signees slice, relying
// on the garbage collector rather than manual reference counting to keep the
// shared graph safe.
type CertKeyPair struct {
	DistributedCert       *DistributedCert
	DistributedPrivateKey *DistributedPrivateKey
	AssociatedPublicKey   *DistributedPublicKey

	Signer  *CertKeyPair
	Signees []Signee

	Regenerated bool
}

func (p *CertKeyPair) String() string {
	loc := "none"
	if p.DistributedCert != nil {
		loc = p.DistributedCert.Locations.String()
	}
	return fmt.Sprintf("CertKeyPair{subject=%q locations=%s}", p.subject(), loc)
}

func (p *CertKeyPair) subject() string {
	if p.DistributedCert == nil {
		return ""
	}
	return p.DistributedCert.Certificate.Subject
}

// SigneeKind discriminates the Signee variant.
type SigneeKind int

const (
	SigneeCertKeyPair SigneeKind = iota
	SigneeJwt
)

// Signee is either a CertKeyPair or a Jwt that some signer has signed.
type Signee struct {
	Kind        SigneeKind
	CertKeyPair *CertKeyPair
	Jwt         *DistributedJwt
}

func (s Signee) Regenerated() bool {
	switch s.Kind {
	case SigneeCertKeyPair:
		return s.CertKeyPair.Regenerated
	case SigneeJwt:
		return s.Jwt.Regenerated
	default:
		return false
	}
}

func (s Signee) String() string {
	switch s.Kind {
	case SigneeCertKeyPair:
		return s.CertKeyPair.String()
	case SigneeJwt:
		return fmt.Sprintf("Jwt{locations=%s}", s.Jwt.Locations.String())
	default:
		return "Signee{unknown}"
	}
}

// JwtSignerKind discriminates the JwtSigner variant.
type JwtSignerKind int

const (
	JwtSignerUnknown JwtSignerKind = iota
	JwtSignerPrivateKey
	JwtSignerCertKeyPair
)

// JwtSigner is Unknown / PrivateKey(ref) / CertKeyPair(ref).
type JwtSigner struct {
	Kind        JwtSignerKind
	PrivateKey  *DistributedPrivateKey
	CertKeyPair *CertKeyPair
}

func (s JwtSigner) IsUnknown() bool { return s.Kind == JwtSignerUnknown }

// Equal reports whether two JwtSigner values refer to the same signer.
func (s JwtSigner) Equal(other JwtSigner) bool {
	if s.Kind != other.Kind {
		return false
	}
	switch s.Kind {
	case JwtSignerPrivateKey:
		return s.PrivateKey == other.PrivateKey
	case JwtSignerCertKeyPair:
		return s.CertKeyPair == other.CertKeyPair
	default:
		return true
	}
}

package cryptograph

// Error message templates, in the pkg/errors const-string idiom. Every
// fault category here is fatal — these are wrapped with
// errors.New/errors.Errorf at the call site and the phase method returns
// them rather than panicking.
const (
	errPrivateKeyNotFoundForPublic   = "internal-consistency fault: public key %s maps to a private key not present in the registry"
	errFmtMissingPrivateKey          = "missing private key for certificate %q (not in KNOWN_MISSING_PRIVATE_KEY_CERTS), found at %s"
	errFmtNoSigningCert              = "no signing certificate found for certificate at %s"
	errJwtUnknownSigner              = "jwt has unknown signer"
	errFmtCryptoPrimitiveFailure     = "error verifying signed-by certificate: %v"
	errStandaloneCertsNotEmpty       = "internal-consistency fault: standalone cert registry is not empty after pairing"
	errFmtSignerNotRegenerated       = "signer with cert at %s was not regenerated while signee at %s was"
	errFmtSigneeListEmpty            = "signer with cert at %s has zero signees after regeneration"
	errFmtSigneeMissingFromSignerSet = "signer at %s does not list cert-key pair at %s as a signee"
	errFmtNotRegenerated             = "%s was not regenerated"
)

package cryptoutil

import (
	"crypto"

	"github.com/golang-jwt/jwt/v5"
	pkgerrors "github.com/pkg/errors"

	"github.com/recert/clustercrypto/internal/cryptograph"
)

// TokenPrimitives implements cryptograph.TokenVerifier and
// cryptograph.TokenSigner on top of golang-jwt/jwt/v5.
type TokenPrimitives struct{}

var _ cryptograph.TokenVerifier = TokenPrimitives{}
var _ cryptograph.TokenSigner = TokenPrimitives{}

// VerifyJWT parses and verifies token's signature against pub, returning its
// claims on success. A non-nil error means pub did not sign token.
func (TokenPrimitives) VerifyJWT(pub crypto.PublicKey, token string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return pub, nil
	}, jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, pkgerrors.New("jwt claims are not a map")
	}
	return claims, nil
}

// SignJWT re-signs claims with signerKey, producing a fresh compact token.
func (TokenPrimitives) SignJWT(claims jwt.MapClaims, signerKey crypto.PrivateKey) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(signerKey)
	if err != nil {
		return "", pkgerrors.Wrap(err, "sign jwt")
	}
	return signed, nil
}

package artifact

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Jwt is the content-addressed identity of a signed token. The canonical
// compact token string *is* the identity,
// so no separate digest is needed — two observations of the same token
// string are by definition the same artifact.
type Jwt struct {
	Token  string
	Header map[string]interface{}
	Claims jwt.MapClaims
}

// ParseJwt decodes (without verifying) a compact JWS string into its content
// identity, header and claims. Verification against a candidate signer is a
// separate step (internal/cryptoutil.VerifyJWT): signer resolution tries
// candidates rather than trusting the token's own claims.
func ParseJwt(token string) (Jwt, error) {
	token = strings.TrimSpace(token)
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	parsedToken, _, err := parser.ParseUnverified(token, claims)
	if err != nil {
		return Jwt{}, err
	}
	return Jwt{
		Token:  token,
		Header: parsedToken.Header,
		Claims: claims,
	}, nil
}

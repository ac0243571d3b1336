// Package seed bootstraps a discovery fixture directory: a self-signed root
// certificate, a leaf certificate it signs, and a JWT signed by the leaf's
// key, written as YAML documents internal/discovery can scan.
package seed

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ParseDN parses a Distinguished Name string ("CN=My Root CA,O=My Org,C=US")
// into a pkix.Name. Supported attributes: CN, O, OU, L, ST, C.
func ParseDN(dn string) (pkix.Name, error) {
	var name pkix.Name
	if strings.TrimSpace(dn) == "" {
		return name, errors.New("distinguished name cannot be empty")
	}

	for _, part := range strings.Split(dn, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx := strings.Index(part, "=")
		if idx < 0 {
			return name, errors.Errorf("invalid DN component: %q (missing '=')", part)
		}
		attrType := strings.TrimSpace(part[:idx])
		attrValue := strings.TrimSpace(part[idx+1:])
		if attrValue == "" {
			return name, errors.Errorf("empty value for attribute %q", attrType)
		}

		switch strings.ToUpper(attrType) {
		case "CN":
			name.CommonName = attrValue
		case "O":
			name.Organization = append(name.Organization, attrValue)
		case "OU":
			name.OrganizationalUnit = append(name.OrganizationalUnit, attrValue)
		case "L":
			name.Locality = append(name.Locality, attrValue)
		case "ST":
			name.Province = append(name.Province, attrValue)
		case "C":
			name.Country = append(name.Country, attrValue)
		default:
			return name, errors.Errorf("unknown attribute type %q", attrType)
		}
	}

	return name, nil
}

func generateKeyPair() (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(rand.Reader, 2048)
}

func computeSKI(pub crypto.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, err
	}
	sum := sha1.Sum(der)
	return sum[:], nil
}

// Fixture is a bootstrapped {root, leaf, jwt} triple ready to be written to
// disk as discovery YAML documents.
type Fixture struct {
	RootCert *x509.Certificate
	RootKey  *rsa.PrivateKey
	LeafCert *x509.Certificate
	LeafKey  *rsa.PrivateKey
	Token    string
}

// Build issues a self-signed root certificate for rootSubject, a leaf
// certificate for leafSubject signed by the root, and a JWT signed by the
// leaf's key, returning everything in memory without writing a standalone
// CA directory to disk.
func Build(rootSubject, leafSubject string) (*Fixture, error) {
	rootName, err := ParseDN(rootSubject)
	if err != nil {
		return nil, errors.Wrap(err, "parse root subject")
	}
	leafName, err := ParseDN(leafSubject)
	if err != nil {
		return nil, errors.Wrap(err, "parse leaf subject")
	}

	rootKey, err := generateKeyPair()
	if err != nil {
		return nil, errors.Wrap(err, "generate root key")
	}
	rootSKI, err := computeSKI(&rootKey.PublicKey)
	if err != nil {
		return nil, errors.Wrap(err, "compute root subject key identifier")
	}

	now := time.Now().UTC()
	rootTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               rootName,
		NotBefore:             now,
		NotAfter:              now.AddDate(10, 0, 0),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
		SubjectKeyId:          rootSKI,
		SignatureAlgorithm:    x509.SHA256WithRSA,
	}
	rootDER, err := x509.CreateCertificate(rand.Reader, rootTemplate, rootTemplate, &rootKey.PublicKey, rootKey)
	if err != nil {
		return nil, errors.Wrap(err, "self-sign root certificate")
	}
	rootCert, err := x509.ParseCertificate(rootDER)
	if err != nil {
		return nil, errors.Wrap(err, "parse root certificate")
	}

	leafKey, err := generateKeyPair()
	if err != nil {
		return nil, errors.Wrap(err, "generate leaf key")
	}
	leafSKI, err := computeSKI(&leafKey.PublicKey)
	if err != nil {
		return nil, errors.Wrap(err, "compute leaf subject key identifier")
	}
	leafTemplate := &x509.Certificate{
		SerialNumber:       big.NewInt(2),
		Subject:            leafName,
		NotBefore:          now,
		NotAfter:           now.AddDate(1, 0, 0),
		KeyUsage:           x509.KeyUsageDigitalSignature,
		ExtKeyUsage:        []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		SubjectKeyId:       leafSKI,
		SignatureAlgorithm: x509.SHA256WithRSA,
	}
	leafDER, err := x509.CreateCertificate(rand.Reader, leafTemplate, rootCert, &leafKey.PublicKey, rootKey)
	if err != nil {
		return nil, errors.Wrap(err, "sign leaf certificate")
	}
	leafCert, err := x509.ParseCertificate(leafDER)
	if err != nil {
		return nil, errors.Wrap(err, "parse leaf certificate")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub": leafName.CommonName,
		"iat": now.Unix(),
	})
	signed, err := token.SignedString(leafKey)
	if err != nil {
		return nil, errors.Wrap(err, "sign jwt")
	}

	return &Fixture{RootCert: rootCert, RootKey: rootKey, LeafCert: leafCert, LeafKey: leafKey, Token: signed}, nil
}

// fixtureDoc mirrors internal/discovery's expected YAML document shape.
type fixtureDoc struct {
	Kind     string            `yaml:"kind"`
	Data     map[string]string `yaml:"data"`
	Metadata fixtureMetadata   `yaml:"metadata"`
}

type fixtureMetadata struct {
	Location string `yaml:"location"`
}

// Write renders f as three YAML fixture files (root-pair.yaml,
// leaf-pair.yaml, token.yaml) under dir, ready for internal/discovery to
// scan.
func (f *Fixture) Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create fixture directory %s", dir)
	}

	rootDoc := fixtureDoc{
		Kind: "Secret",
		Data: map[string]string{
			"tls.crt": string(pemEncode("CERTIFICATE", f.RootCert.Raw)),
			"tls.key": string(pemEncodeKey(f.RootKey)),
		},
		Metadata: fixtureMetadata{Location: "etcd:/fixtures/root-pair"},
	}
	leafDoc := fixtureDoc{
		Kind: "Secret",
		Data: map[string]string{
			"tls.crt": string(pemEncode("CERTIFICATE", f.LeafCert.Raw)),
			"tls.key": string(pemEncodeKey(f.LeafKey)),
		},
		Metadata: fixtureMetadata{Location: "etcd:/fixtures/leaf-pair"},
	}
	tokenDoc := fixtureDoc{
		Kind:     "Jwt",
		Data:     map[string]string{"token": f.Token},
		Metadata: fixtureMetadata{Location: "etcd:/fixtures/token"},
	}

	for name, doc := range map[string]fixtureDoc{
		"root-pair.yaml": rootDoc,
		"leaf-pair.yaml": leafDoc,
		"token.yaml":     tokenDoc,
	} {
		out, err := yaml.Marshal(doc)
		if err != nil {
			return errors.Wrapf(err, "marshal %s", name)
		}
		if err := os.WriteFile(filepath.Join(dir, name), out, 0o600); err != nil {
			return errors.Wrapf(err, "write %s", name)
		}
	}

	return nil
}

func pemEncode(blockType string, der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
}

func pemEncodeKey(key *rsa.PrivateKey) []byte {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}

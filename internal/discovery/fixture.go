// Package discovery defines the contract the graph engine consumes from a
// discovery collaborator and supplies one concrete producer: a YAML-fixture scanner that
// decodes cluster-resource-shaped documents into artifact.DiscoveredObject
// values, enough to exercise the engine end to end without reimplementing
// etcd traversal or an on-disk file crawl.
package discovery

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/recert/clustercrypto/internal/artifact"
)

// fixtureDoc mirrors the cluster-resource shape a real scanner would crawl
// out of etcd or a file tree: kind, embedded data, and a location hint.
type fixtureDoc struct {
	Kind     string            `yaml:"kind"`
	Data     map[string]string `yaml:"data"`
	Metadata fixtureMetadata   `yaml:"metadata"`
}

type fixtureMetadata struct {
	Location string `yaml:"location"`
	Path     string `yaml:"path"`
}

// ScanFixture reads every *.yaml file in dir, decoding each YAML document
// into discovered objects. Malformed individual documents are collected
// into the returned multierror and skipped rather than aborting the scan (a
// YAML syntax error also skips the documents after it in the same file);
// a nil error return means every document decoded cleanly. fs is the
// filesystem to crawl; a nil fs defaults to the real OS filesystem, so a
// future etcd- or memory-backed source can be substituted in tests.
func ScanFixture(dir string, fs afero.Fs) ([]artifact.DiscoveredObject, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read fixture directory %s", dir)
	}

	var discovered []artifact.DiscoveredObject
	var warnings *multierror.Error

	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		objs, err := scanFile(fs, path)
		if err != nil {
			warnings = multierror.Append(warnings, errors.Wrapf(err, "scan %s", path))
			continue
		}
		discovered = append(discovered, objs...)
	}

	return discovered, warnings.ErrorOrNil()
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

func scanFile(fs afero.Fs, path string) ([]artifact.DiscoveredObject, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	var out []artifact.DiscoveredObject
	var warnings *multierror.Error

	decoder := yaml.NewDecoder(strings.NewReader(string(raw)))
	for {
		var doc fixtureDoc
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			warnings = multierror.Append(warnings, errors.Wrap(err, "decode document"))
			var typeErr *yaml.TypeError
			if errors.As(err, &typeErr) {
				continue
			}
			// A syntax error leaves the decoder unable to advance; the rest
			// of this file is skipped.
			break
		}
		objs, err := decodeDoc(path, doc)
		if err != nil {
			warnings = multierror.Append(warnings, err)
			continue
		}
		out = append(out, objs...)
	}

	return out, warnings.ErrorOrNil()
}

func decodeDoc(file string, doc fixtureDoc) ([]artifact.DiscoveredObject, error) {
	loc := locationFor(file, doc)

	switch strings.ToLower(doc.Kind) {
	case "secret":
		return decodeSecret(doc, loc)
	case "certificate":
		return decodeCertificate(doc, loc)
	case "jwt":
		return decodeJwt(doc, loc)
	default:
		return nil, errors.Errorf("unknown fixture kind %q", doc.Kind)
	}
}

func locationFor(file string, doc fixtureDoc) artifact.Location {
	if doc.Metadata.Location != "" {
		return artifact.Location{Kind: artifact.KindEtcd, Path: doc.Metadata.Location}
	}
	if doc.Metadata.Path != "" {
		return artifact.Location{Kind: artifact.KindFile, Path: doc.Metadata.Path}
	}
	// No explicit location hint: synthesize one so every discovered object
	// still carries a stable address, named from the source file plus a
	// fresh identifier rather than silently dropping location tracking.
	return artifact.Location{Kind: artifact.KindFile, Path: file, SubPath: uuid.NewString()}
}

func decodeSecret(doc fixtureDoc, loc artifact.Location) ([]artifact.DiscoveredObject, error) {
	var out []artifact.DiscoveredObject
	var warnings *multierror.Error

	for key, value := range doc.Data {
		blocks := decodePEMBlocks(value)
		if len(blocks) == 0 {
			warnings = multierror.Append(warnings, errors.Errorf("secret field %q has no PEM content", key))
			continue
		}
		for _, block := range blocks {
			obj, err := decodePEMBlock(block)
			if err != nil {
				warnings = multierror.Append(warnings, errors.Wrapf(err, "field %q", key))
				continue
			}
			out = append(out, artifact.DiscoveredObject{Object: obj, Location: loc})
		}
	}

	return out, warnings.ErrorOrNil()
}

func decodeCertificate(doc fixtureDoc, loc artifact.Location) ([]artifact.DiscoveredObject, error) {
	raw, ok := doc.Data["tls.crt"]
	if !ok {
		raw, ok = doc.Data["certificate"]
	}
	if !ok {
		return nil, errors.New("certificate fixture missing tls.crt/certificate field")
	}
	block, _ := pem.Decode([]byte(raw))
	if block == nil {
		return nil, errors.New("certificate field is not valid PEM")
	}
	obj, err := artifact.NewDiscoveredCertificate(block.Bytes)
	if err != nil {
		return nil, errors.Wrap(err, "parse certificate")
	}
	return []artifact.DiscoveredObject{{Object: obj, Location: loc}}, nil
}

func decodeJwt(doc fixtureDoc, loc artifact.Location) ([]artifact.DiscoveredObject, error) {
	token, ok := doc.Data["token"]
	if !ok {
		return nil, errors.New("jwt fixture missing token field")
	}
	obj, err := artifact.NewDiscoveredJwt(strings.TrimSpace(token))
	if err != nil {
		return nil, errors.Wrap(err, "parse jwt")
	}
	return []artifact.DiscoveredObject{{Object: obj, Location: loc}}, nil
}

func decodePEMBlocks(value string) []*pem.Block {
	var blocks []*pem.Block
	rest := []byte(value)
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		blocks = append(blocks, block)
	}
	return blocks
}

func decodePEMBlock(block *pem.Block) (artifact.CryptoObject, error) {
	switch block.Type {
	case "CERTIFICATE":
		return artifact.NewDiscoveredCertificate(block.Bytes)
	case "PRIVATE KEY", "RSA PRIVATE KEY", "EC PRIVATE KEY":
		key, err := parsePrivateKey(block)
		if err != nil {
			return artifact.CryptoObject{}, err
		}
		return artifact.NewDiscoveredPrivateKey(key)
	case "PUBLIC KEY":
		pub, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return artifact.CryptoObject{}, errors.Wrap(err, "parse public key")
		}
		return artifact.NewDiscoveredPublicKey(pub)
	default:
		return artifact.CryptoObject{}, errors.Errorf("unsupported PEM block type %q", block.Type)
	}
}

func parsePrivateKey(block *pem.Block) (interface{}, error) {
	if block.Type == "RSA PRIVATE KEY" {
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	}
	if block.Type == "EC PRIVATE KEY" {
		return x509.ParseECPrivateKey(block.Bytes)
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, errors.Wrap(err, "parse pkcs8 private key")
	}
	switch key.(type) {
	case *rsa.PrivateKey, *ecdsa.PrivateKey:
		return key, nil
	default:
		return nil, errors.Errorf("unsupported private key type %T", key)
	}
}

package cryptograph

import (
	"context"
	"crypto"
	"crypto/x509"
	"encoding/pem"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/recert/clustercrypto/internal/artifact"
)

// Committer writes a serialised artifact to one location. Implemented by
// internal/persistence (the in-memory etcd shim and the bbolt-backed disk
// writer unified behind one contract). This is the one phase allowed to
// suspend per write; the aggregate mutex is held only to copy
// the record list, not across the awaited writes.
type Committer interface {
	CommitAtLocation(ctx context.Context, loc artifact.Location, serialized []byte) error
}

// defaultCommitConcurrency bounds how many in-flight writes commit fans out
// to when CommitToEtcdAndDisk is called with concurrency <= 0.
const defaultCommitConcurrency = 8

// CommitToEtcdAndDisk serialises every Distributed* record, for every
// remembered location, back to the persistence collaborator, fanning out up
// to concurrency writes at once (concurrency <= 0 uses defaultCommitConcurrency).
// Ordering across records is unspecified; within a record, locations are
// written in Locations' iteration order.
func (c *ClusterCryptoObjects) CommitToEtcdAndDisk(ctx context.Context, client Committer, concurrency int) error {
	if concurrency <= 0 {
		concurrency = defaultCommitConcurrency
	}
	c.mu.Lock()
	pairs := append([]*CertKeyPair(nil), c.certKeyPairs...)
	jwts := make([]*DistributedJwt, 0, len(c.jwts))
	for _, j := range c.jwts {
		jwts = append(jwts, j)
	}
	privs := make([]*DistributedPrivateKey, 0, len(c.privateKeys))
	for _, p := range c.privateKeys {
		privs = append(privs, p)
	}
	pubs := make([]*DistributedPublicKey, 0, len(c.publicKeys))
	for _, p := range c.publicKeys {
		pubs = append(pubs, p)
	}
	c.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, pair := range pairs {
		pair := pair
		g.Go(func() error { return commitCertKeyPair(gctx, client, pair) })
	}
	for _, j := range jwts {
		j := j
		g.Go(func() error { return commitLocations(gctx, client, j.Locations, []byte(j.Token)) })
	}
	for _, p := range privs {
		p := p
		g.Go(func() error {
			der, err := serializePrivateKey(p.Key)
			if err != nil {
				return err
			}
			return commitLocations(gctx, client, p.Locations, der)
		})
	}
	for _, p := range pubs {
		p := p
		g.Go(func() error {
			der, err := serializePublicKey(p.Key)
			if err != nil {
				return err
			}
			return commitLocations(gctx, client, p.Locations, der)
		})
	}

	return g.Wait()
}

func commitCertKeyPair(ctx context.Context, client Committer, pair *CertKeyPair) error {
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: pair.DistributedCert.Parsed.Raw})
	if err := commitLocations(ctx, client, pair.DistributedCert.Locations, certPEM); err != nil {
		return err
	}
	if pair.DistributedPrivateKey != nil {
		der, err := serializePrivateKey(pair.DistributedPrivateKey.Key)
		if err != nil {
			return err
		}
		if err := commitLocations(ctx, client, pair.DistributedPrivateKey.Locations, der); err != nil {
			return err
		}
	}
	return nil
}

func commitLocations(ctx context.Context, client Committer, locs artifact.Locations, payload []byte) error {
	for _, loc := range locs.Slice() {
		if err := client.CommitAtLocation(ctx, loc, payload); err != nil {
			return errors.Wrapf(err, "commit to %s", loc)
		}
	}
	return nil
}

func serializePrivateKey(key crypto.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, errors.Wrap(err, "marshal private key for commit")
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

func serializePublicKey(key crypto.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return nil, errors.Wrap(err, "marshal public key for commit")
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

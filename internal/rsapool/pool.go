// Package rsapool implements a blocking, background-filled RSA key cache.
// Regeneration must never stall waiting on key generation, so a handful of
// workers keep a buffered channel topped up ahead of demand.
package rsapool

import (
	"context"
	"crypto/rand"
	"crypto/rsa"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/recert/clustercrypto/internal/cryptograph"
)

const keyBits = 2048

// Pool implements cryptograph.RSAPool.
type Pool struct {
	keys   chan *rsa.PrivateKey
	cancel context.CancelFunc
	log    *logrus.Entry
}

var _ cryptograph.RSAPool = (*Pool)(nil)

// New starts size workers filling a buffer of capacity buffer with fresh
// RSA-2048 keys. Call Stop to release the workers once the pool is no
// longer needed.
func New(size, buffer int, log *logrus.Entry) *Pool {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		keys:   make(chan *rsa.PrivateKey, buffer),
		cancel: cancel,
		log:    log,
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < size; i++ {
		g.Go(func() error {
			p.fill(gctx)
			return nil
		})
	}

	return p
}

func (p *Pool) fill(ctx context.Context) {
	for {
		key, err := rsa.GenerateKey(rand.Reader, keyBits)
		if err != nil {
			p.log.WithError(err).Warn("rsa pool: key generation failed, retrying")
			continue
		}
		select {
		case p.keys <- key:
		case <-ctx.Done():
			return
		}
	}
}

// Take blocks until a pre-generated key is available. It never fails: key
// generation failures are logged and retried by the background fillers
// rather than surfaced here.
func (p *Pool) Take() *rsa.PrivateKey {
	return <-p.keys
}

// Stop releases the background fill workers.
func (p *Pool) Stop() {
	p.cancel()
}

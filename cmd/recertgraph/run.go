package main

import (
	"context"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/recert/clustercrypto/internal/config"
	"github.com/recert/clustercrypto/internal/cryptograph"
	"github.com/recert/clustercrypto/internal/cryptoutil"
	"github.com/recert/clustercrypto/internal/discovery"
	"github.com/recert/clustercrypto/internal/persistence"
	"github.com/recert/clustercrypto/internal/rsapool"
	"github.com/recert/clustercrypto/internal/rules"
)

func newRunCommand(log *logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan, reconstruct, regenerate, and commit a cluster's PKI graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), log)
		},
	}
	return cmd
}

func run(ctx context.Context, log *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	entry := logrus.NewEntry(log)

	discovered, err := discovery.ScanFixture(cfg.DataDir, afero.NewOsFs())
	if err != nil {
		entry.WithError(err).Warn("some fixture documents were skipped during discovery")
	}

	graph := cryptograph.New(entry)
	graph.Register(discovered)

	if err := graph.PairCertsAndKeys(rules.KnownMissingPrivateKeyCerts); err != nil {
		return err
	}
	graph.AssociatePublicKeys()

	primitives := &cryptoutil.Primitives{}
	tokens := cryptoutil.TokenPrimitives{}

	if err := graph.FillCertKeySigners(primitives); err != nil {
		return err
	}
	if err := graph.FillJwtSigners(tokens); err != nil {
		return err
	}
	graph.FillSignees()

	pool := rsapool.New(cfg.RSAPoolSize, cfg.RSAPoolBuffer, entry)
	defer pool.Stop()

	if err := graph.RegenerateCrypto(cryptograph.Regenerator{
		Pool:   pool,
		Issuer: primitives,
		Tokens: tokens,
		Log:    entry,
	}); err != nil {
		return err
	}

	etcd := persistence.NewEtcdShim()
	disk, err := persistence.OpenDiskWriter(filepath.Join(cfg.DataDir, "recertgraph.bbolt"), afero.NewOsFs())
	if err != nil {
		return err
	}
	defer disk.Close()

	committer := persistence.Composite{Etcd: etcd, Disk: disk}
	if err := graph.CommitToEtcdAndDisk(ctx, committer, cfg.CommitConcurrency); err != nil {
		return err
	}

	certs, privs, pubs, jwts, pairs := graph.Counts()
	entry.WithFields(logrus.Fields{
		"certs":        certs,
		"privateKeys":  privs,
		"publicKeys":   pubs,
		"jwts":         jwts,
		"certKeyPairs": pairs,
	}).Info("regeneration complete")

	return nil
}

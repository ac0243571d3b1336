package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/recert/clustercrypto/internal/config"
	"github.com/recert/clustercrypto/internal/cryptograph"
	"github.com/recert/clustercrypto/internal/cryptoutil"
	"github.com/recert/clustercrypto/internal/discovery"
	"github.com/recert/clustercrypto/internal/rules"
)

func newDisplayCommand(log *logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "display",
		Short: "Scan and reconstruct the graph, then print its forest without regenerating or committing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return display(log)
		},
	}
	return cmd
}

func display(log *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
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

	graph.Display(os.Stdout)
	return nil
}

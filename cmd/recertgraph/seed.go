package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/recert/clustercrypto/internal/seed"
)

func newSeedCommand(log *logrus.Logger) *cobra.Command {
	var dataDir, rootSubject, leafSubject string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Bootstrap a root+leaf certificate pair and a signed JWT as discovery fixtures",
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, err := seed.Build(rootSubject, leafSubject)
			if err != nil {
				return err
			}
			if err := fixture.Write(dataDir); err != nil {
				return err
			}
			logrus.NewEntry(log).WithField("dir", dataDir).Info("fixture written")
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "./data", "directory to write fixture YAML documents into")
	cmd.Flags().StringVar(&rootSubject, "root-subject", "CN=fixture root,O=recertgraph", "distinguished name for the root certificate")
	cmd.Flags().StringVar(&leafSubject, "leaf-subject", "CN=fixture leaf,O=recertgraph", "distinguished name for the leaf certificate")
	return cmd
}

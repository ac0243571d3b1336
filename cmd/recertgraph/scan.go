package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/recert/clustercrypto/internal/discovery"
)

func newScanCommand(log *logrus.Logger) *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a fixture directory and report what discovery would feed the engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			discovered, err := discovery.ScanFixture(dataDir, afero.NewOsFs())
			if err != nil {
				log.WithError(err).Warn("some fixture documents were skipped")
			}
			log.WithField("count", len(discovered)).Info("scan complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "./data", "directory of discovery fixtures to scan")
	return cmd
}

// Command recertgraph drives the cluster cryptographic graph engine: scan a
// directory of discovery fixtures, run it through the register -> pair ->
// associate -> resolve signers -> backfill signees -> regenerate -> commit
// pipeline, and display the resulting forest. A cobra.Command tree replaces
// a flag.FlagSet dispatcher, one subcommand per phase group.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	log := logrus.New()

	root := &cobra.Command{
		Use:   "recertgraph",
		Short: "Rebuild and re-issue a cluster's cryptographic PKI graph",
	}

	root.AddCommand(newScanCommand(log))
	root.AddCommand(newRunCommand(log))
	root.AddCommand(newDisplayCommand(log))
	root.AddCommand(newSeedCommand(log))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

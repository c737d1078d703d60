// Copyright (c) 2019 by Thorsten von Eicken, see LICENSE file for details

// tsunb is a command line tool to inspect the TS-UNB encoding pipeline
// without radio hardware: it encodes telegrams into their burst schedules and
// dumps the TSMA pattern tables.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tsunb",
	Short: "Inspect the TS-UNB uplink encoding pipeline",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

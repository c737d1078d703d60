// Copyright (c) 2019 by Thorsten von Eicken, see LICENSE file for details

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tve/tsunb"
)

// patternsCmd dumps the TSMA carrier and time tables of a pattern group.
var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Dump the TSMA pattern tables of an uplink pattern group",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := regionParams(patRegion, patLowLatency)
		if err != nil {
			return err
		}
		phy := tsunb.Phy{Params: params}

		numPatterns := 8
		if params.UPG == tsunb.UPG3 {
			numPatterns = 1
		}
		for p := 0; p < numPatterns; p++ {
			fmt.Printf("pattern %d:\n  C_RB:", p)
			for i := 0; i < tsunb.NumCoreBursts; i++ {
				fmt.Printf(" %2d", phy.CRB(uint8(p), i))
			}
			fmt.Printf("\n  T_RB:")
			for i := 0; i < tsunb.NumCoreBursts-1; i++ {
				fmt.Printf(" %3d", phy.TRB(uint8(p), i))
			}
			fmt.Printf("\n")
		}
		return nil
	},
}

var (
	patRegion     string
	patLowLatency bool
)

func init() {
	rootCmd.AddCommand(patternsCmd)

	patternsCmd.Flags().StringVar(&patRegion, "region", "eu1", "channel plan: eu0, eu1 or eu2")
	patternsCmd.Flags().BoolVar(&patLowLatency, "lowlatency", false, "use the UPG3 low latency patterns")
}

// Copyright (c) 2019 by Thorsten von Eicken, see LICENSE file for details

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tve/tsunb"
)

// encodeCmd runs a payload through the MAC and PHY and prints the resulting
// burst schedule.
var encodeCmd = &cobra.Command{
	Use:   "encode [payload]",
	Short: "Encode a payload into its radio burst schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := hex.DecodeString(args[0])
		if err != nil {
			payload = []byte(args[0])
		}

		key, err := hex.DecodeString(encKey)
		if err != nil || len(key) != 16 {
			return fmt.Errorf("--key must be 16 hex bytes")
		}
		eui, err := hex.DecodeString(encEui)
		if err != nil || len(eui) != 8 {
			return fmt.Errorf("--eui must be 8 hex bytes")
		}
		params, err := regionParams(encRegion, encLowLatency)
		if err != nil {
			return err
		}

		var mac tsunb.Mac
		copy(mac.NetworkKey[:], key)
		mac.SetAddress(eui)
		mac.ExtPkgCnt = encCounter
		if encLong {
			mac.SetAddressMode(tsunb.LongAddress)
		}

		mpduLen := mac.MPDULength(len(payload), false)
		phy := tsunb.Phy{Params: params}
		numBursts := phy.NumRadioBursts(mpduLen)
		if numBursts == 0 {
			return fmt.Errorf("payload too long: MPDU %d bytes", mpduLen)
		}

		mpdu := make([]byte, mpduLen)
		mac.Encode(mpdu, payload, false, 0)

		pattern := uint8(encPattern)
		if encPriority {
			pattern = 6
		}

		total := numBursts
		if encSync {
			total++
		}
		bursts := make([]tsunb.RadioBurst, total)
		data := bursts
		if encSync {
			data = bursts[1:]
		}
		f0 := phy.Encode(data, mpdu, pattern, tsunb.MacMMode)
		if f0 == 0 {
			return fmt.Errorf("PHY encoding failed")
		}
		if encSync {
			phy.EncodeSyncBurst(&bursts[0], pattern, mac.LsbShortAddress())
		}

		fmt.Printf("MPDU (%d bytes): %x\n", mpduLen, mpdu)
		fmt.Printf("f_0 register: %d   bursts: %d   pattern: %d\n", f0, total, pattern)
		for i := range bursts {
			b := &bursts[i]
			fmt.Printf("%3d: carrier %+5d  T_RB %4d  bits %x\n",
				i, int32(b.CarrierOffset()), b.TRB(), b.Bytes())
		}
		return nil
	},
}

var (
	encKey        string
	encEui        string
	encRegion     string
	encLowLatency bool
	encLong       bool
	encSync       bool
	encPriority   bool
	encPattern    uint8
	encCounter    uint32
)

func regionParams(region string, lowLatency bool) (tsunb.Params, error) {
	var params tsunb.Params
	switch region {
	case "eu0":
		params = tsunb.ParamsEU0
	case "eu1":
		params = tsunb.ParamsEU1
	case "eu2":
		params = tsunb.ParamsEU2
	default:
		return params, fmt.Errorf("unknown region %q", region)
	}
	if lowLatency {
		params = params.LowLatency()
	}
	return params, nil
}

func init() {
	rootCmd.AddCommand(encodeCmd)

	encodeCmd.Flags().StringVar(&encKey, "key", "000102030405060708090a0b0c0d0e0f", "16-byte network key in hex")
	encodeCmd.Flags().StringVar(&encEui, "eui", "70b3d56770001234", "8-byte EUI-64 in hex")
	encodeCmd.Flags().StringVar(&encRegion, "region", "eu1", "channel plan: eu0, eu1 or eu2")
	encodeCmd.Flags().BoolVar(&encLowLatency, "lowlatency", false, "use the UPG3 low latency patterns")
	encodeCmd.Flags().BoolVar(&encLong, "long", false, "use long (EUI-64) addressing")
	encodeCmd.Flags().BoolVar(&encSync, "sync", false, "prepend the sync burst")
	encodeCmd.Flags().BoolVar(&encPriority, "priority", false, "use the priority pattern 6")
	encodeCmd.Flags().Uint8Var(&encPattern, "pattern", 0, "TSMA pattern 0..7")
	encodeCmd.Flags().Uint32Var(&encCounter, "counter", 0, "extended packet counter")
}

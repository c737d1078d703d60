// Copyright (c) 2019 by Thorsten von Eicken, see LICENSE file for details

// tsunb-test transmits a couple of TS-UNB test telegrams through an RFM69
// module attached to the first SPI bus. It exists to verify the wiring and
// the timing on a new board.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/tve/tsunb"
	"github.com/tve/tsunb/host"
	"github.com/tve/tsunb/rfm69"
)

func panicIf(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	spiName := flag.String("spi", "", "SPI port name, empty for the first one")
	keyHex := flag.String("key", "000102030405060708090a0b0c0d0e0f", "16-byte network key in hex")
	euiHex := flag.String("eui", "70b3d56770001234", "8-byte EUI-64 in hex")
	power := flag.Int("power", 13, "output power in dBm")
	boost := flag.Bool("boost", false, "module uses the PA_BOOST pin")
	ppm := flag.Int("ppm", 0, "crystal offset in ppm")
	count := flag.Int("count", 2, "number of telegrams to send")
	store := flag.String("store", "/var/lib/tsunb-counter", "packet counter file")
	flag.Parse()

	key, err := hex.DecodeString(*keyHex)
	if err != nil || len(key) != 16 {
		fmt.Fprintf(os.Stderr, "bad -key: need 16 hex bytes\n")
		os.Exit(1)
	}
	eui, err := hex.DecodeString(*euiHex)
	if err != nil || len(eui) != 8 {
		fmt.Fprintf(os.Stderr, "bad -eui: need 8 hex bytes\n")
		os.Exit(1)
	}

	panicIf(host.InitPeriph())
	spiBus, err := host.NewPeriphSPI(*spiName)
	panicIf(err)

	log.Printf("Initializing RFM69...")
	t0 := time.Now()
	radio := rfm69.New(spiBus, rfm69.RadioOpts{
		Boost:     *boost,
		Power:     int8(*power),
		PPMOffset: *ppm,
		Logger:    log.Printf,
	})

	node := &tsunb.Node{Tx: radio}
	node.Phy.Params = tsunb.ParamsEU1
	copy(node.Mac.NetworkKey[:], key)
	node.Mac.SetAddress(eui)

	panicIf(node.Init())

	cnt, err := tsunb.InitExtPkgCnt(host.NewFileStore(*store))
	panicIf(err)
	node.Mac.ExtPkgCnt = cnt
	log.Printf("Ready (%.1fms), counter at %d", time.Since(t0).Seconds()*1000, cnt)

	for i := 1; i <= *count; i++ {
		log.Printf("Sending telegram %d ...", i)
		t0 = time.Now()
		msg := fmt.Sprintf("Hello %03d", i)
		if err := node.Send([]byte(msg), 0, false); err != nil {
			log.Fatalf("send: %v", err)
		}
		tsunb.UpdateExtPkgCnt(host.NewFileStore(*store), node.Mac.Counter(), true)
		log.Printf("Sent in %.1fms", time.Since(t0).Seconds()*1000)
		time.Sleep(time.Second)
	}
	log.Printf("Bye...")
}

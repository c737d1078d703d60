// Copyright (c) 2019 by Thorsten von Eicken, see LICENSE file for details

// mqttuplink bridges an MQTT topic to a TS-UNB uplink: every message payload
// published to the topic is transmitted as one telegram. It is the uplink
// counterpart to running a mioty gateway on the receive side.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/kidoman/embd"
	_ "github.com/kidoman/embd/host/chip"
	"github.com/tve/tsunb"
	"github.com/tve/tsunb/host"
	"github.com/tve/tsunb/rfm69"
)

func main() {
	mqttHost := flag.String("mqtt", "localhost:1883", "host:port of MQTT broker")
	topic := flag.String("topic", "tsunb/uplink", "topic to transmit from")
	keyHex := flag.String("key", "", "16-byte network key in hex")
	euiHex := flag.String("eui", "", "8-byte EUI-64 in hex")
	region := flag.String("region", "eu1", "channel plan: eu0, eu1 or eu2")
	lowLatency := flag.Bool("lowlatency", false, "use the UPG3 low latency patterns")
	power := flag.Int("power", 13, "output power in dBm")
	boost := flag.Bool("boost", false, "module uses the PA_BOOST pin")
	store := flag.String("store", "/var/lib/tsunb-counter", "packet counter file")
	debug := flag.Bool("debug", false, "enable debug output")
	flag.Parse()

	key, err := hex.DecodeString(*keyHex)
	if err != nil || len(key) != 16 {
		fmt.Fprintf(os.Stderr, "-key must be 16 hex bytes\n")
		os.Exit(1)
	}
	eui, err := hex.DecodeString(*euiHex)
	if err != nil || len(eui) != 8 {
		fmt.Fprintf(os.Stderr, "-eui must be 8 hex bytes\n")
		os.Exit(1)
	}

	params := tsunb.ParamsEU1
	switch *region {
	case "eu0":
		params = tsunb.ParamsEU0
	case "eu1":
	case "eu2":
		params = tsunb.ParamsEU2
	default:
		fmt.Fprintf(os.Stderr, "unknown region %s\n", *region)
		os.Exit(1)
	}
	if *lowLatency {
		params = params.LowLatency()
	}

	var logger rfm69.LogPrintf
	if *debug {
		logger = log.Printf
	}

	log.Printf("Opening radio")
	embd.InitSPI()
	radio := rfm69.New(host.NewSPI(), rfm69.RadioOpts{
		Boost:  *boost,
		Power:  int8(*power),
		Logger: logger,
	})

	node := &tsunb.Node{Tx: radio}
	node.Phy.Params = params
	copy(node.Mac.NetworkKey[:], key)
	node.Mac.SetAddress(eui)
	if err := node.Init(); err != nil {
		log.Fatalf("radio init: %v", err)
	}

	counterStore := host.NewFileStore(*store)
	cnt, err := tsunb.InitExtPkgCnt(counterStore)
	if err != nil {
		log.Fatalf("counter init: %v", err)
	}
	node.Mac.ExtPkgCnt = cnt

	// Telegrams take seconds to transmit; serialize them through a channel
	// so the MQTT client never blocks in the handler.
	txChan := make(chan []byte, 4)
	go func() {
		for payload := range txChan {
			t0 := time.Now()
			if err := node.Send(payload, 0, false); err != nil {
				log.Printf("send failed: %v", err)
				continue
			}
			if _, err := tsunb.UpdateExtPkgCnt(counterStore, node.Mac.Counter(), false); err != nil {
				log.Printf("counter store: %v", err)
			}
			log.Printf("Sent %d bytes in %.1fs, counter %d",
				len(payload), time.Since(t0).Seconds(), node.Mac.Counter())
		}
	}()

	hostname, _ := os.Hostname()
	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s", *mqttHost))
	opts.ClientID = "mqttuplink-" + hostname
	conn := mqtt.NewClient(opts)
	if token := conn.Connect(); !token.WaitTimeout(10 * time.Second) {
		log.Fatalf("cannot connect to MQTT broker: %v", token.Error())
	}
	handler := func(c mqtt.Client, m mqtt.Message) {
		select {
		case txChan <- m.Payload():
		default:
			log.Printf("uplink queue full, dropping message")
		}
	}
	if token := conn.Subscribe(*topic, 1, handler); !token.WaitTimeout(2 * time.Second) {
		log.Fatalf("cannot subscribe: %v", token.Error())
	}
	log.Printf("MQTT connected, bridging %s", *topic)

	for {
		time.Sleep(time.Hour)
	}
}

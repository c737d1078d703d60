// Copyright 2019 by Thorsten von Eicken, see LICENSE file

package tsunb

// BurstSink consumes the radio bursts of one telegram. The sink must emit the
// bursts in index order on carrier base+offset with the annotated inter-burst
// delays; a punctured burst is skipped but still consumes its time slot.
type BurstSink interface {
	Init() error
	Transmit(bursts []RadioBurst, freq uint32) error
}

// Node ties one MAC, one PHY and one burst sink into a simple uplink-only
// TS-UNB node. Configure the public Mac and Phy fields (address, key, channel
// plan) before calling Init.
type Node struct {
	Mac Mac
	Phy Phy
	Tx  BurstSink

	// SyncBurst prepends the pre-telegram sync burst to every transmission.
	SyncBurst bool
}

// Init validates the configuration and brings the transmitter into a defined
// state. Call it early after start-up so the radio enters sleep mode.
func (n *Node) Init() error {
	if !n.Phy.Valid() {
		return ErrConfig
	}
	return n.Tx.Init()
}

// Send transmits one telegram with the given payload. A non-zero mpfValue is
// carried in the MPF field and encrypted along with the payload. priority
// selects the low-collision pattern 6 instead of the rotating TSMA pattern.
//
// The packet counter advances exactly once per encoded telegram, on MAC
// encoding, even if the transmission itself fails. A payload too long for a
// telegram is rejected with ErrPayloadTooLong before encoding and leaves the
// counter unchanged.
func (n *Node) Send(payload []byte, mpfValue byte, priority bool) error {
	mpfPresent := mpfValue != 0

	mpduLen := n.Mac.MPDULength(len(payload), mpfPresent)
	numBursts := n.Phy.NumRadioBursts(mpduLen)
	if numBursts == 0 {
		return ErrPayloadTooLong
	}

	mpdu := make([]byte, mpduLen)
	n.Mac.Encode(mpdu, payload, mpfPresent, mpfValue)

	pattern := uint8(6)
	if !priority {
		pattern = n.Phy.TsmaPattern(n.Mac.Counter())
	}

	total := numBursts
	if n.SyncBurst {
		total++
	}
	bursts := make([]RadioBurst, total)
	data := bursts
	if n.SyncBurst {
		data = bursts[1:]
	}

	freq := n.Phy.Encode(data, mpdu, pattern, MacMMode)
	if freq == 0 {
		return ErrPayloadTooLong
	}
	if n.SyncBurst {
		n.Phy.EncodeSyncBurst(&bursts[0], pattern, n.Mac.LsbShortAddress())
	}

	return n.Tx.Transmit(bursts, freq)
}

// Copyright 2019 by Thorsten von Eicken, see LICENSE file

package tsunb

import "github.com/tve/tsunb/bitbuf"

const (
	headBits = 2 // head bits for transmitter ramp-up and matched-filter phase
	tailBits = 2

	// BurstPayloadLen is the number of symbols in a radio burst: 24 data
	// symbols interleaved around a 12 symbol midamble.
	BurstPayloadLen = 36
	burstDataLen    = 24
	midambleLen     = 12

	// NumCoreBursts is the number of core bursts of every telegram.
	NumCoreBursts = 24

	// BurstLength is the total burst length in bits including head and tail.
	BurstLength = headBits + BurstPayloadLen + tailBits

	// BurstLengthBytes is the burst length rounded up to whole bytes.
	BurstLengthBytes = (BurstLength + 7) / 8

	// Punctured is the carrier offset sentinel marking a burst that is not
	// transmitted. A punctured burst reports length 0 but still occupies its
	// scheduled time slot.
	Punctured = 0xFFFF
)

// RadioBurst is a single transmission slice of a TS-UNB telegram: a short
// chunk of symbols with a well-defined time and frequency position. The PHY
// writes the 24 coded data bits through WriteSubPacketBit (which interleaves
// them around the midamble slots), adds the midamble, and differentially
// encodes the whole burst for MSK modulation.
//
// All coded bits of a burst must be written before SetTRB is called.
type RadioBurst struct {
	data          [BurstLengthBytes]byte
	carrierOffset uint16
	tRB           uint16
	cursor        uint8
}

// Bytes returns the burst bit stream, MSB first.
func (b *RadioBurst) Bytes() []byte { return b.data[:] }

// Length returns the burst length in bits, or 0 if the burst is punctured.
func (b *RadioBurst) Length() int {
	if b.carrierOffset != Punctured {
		return BurstLength
	}
	return 0
}

// LengthBytes returns the burst length in bytes, or 0 if punctured.
func (b *RadioBurst) LengthBytes() int {
	if b.carrierOffset != Punctured {
		return BurstLengthBytes
	}
	return 0
}

// CarrierOffset returns the frequency offset wrt. f_0 in TX register values.
func (b *RadioBurst) CarrierOffset() uint16 { return b.carrierOffset }

// SetCarrierOffset sets the frequency offset wrt. f_0 in TX register values.
func (b *RadioBurst) SetCarrierOffset(offset uint16) { b.carrierOffset = offset }

// TRB returns the time between the start of this burst and the start of the
// following one, in symbol periods (0 on the final burst).
func (b *RadioBurst) TRB() uint16 { return b.tRB }

// SetTRB sets the inter-burst time. It must not be called before all coded
// bits of the burst have been written.
func (b *RadioBurst) SetTRB(t uint16) { b.tRB = t }

// Puncture marks the burst as not-transmitted.
func (b *RadioBurst) Puncture() { b.carrierOffset = Punctured }

// WriteSubPacketBit appends the next coded bit of this burst at its
// interleaved position and advances the internal write cursor. Even and odd
// bursts interleave with opposite polarity so that neighboring bursts spread
// the code branches differently.
func (b *RadioBurst) WriteSubPacketBit(bit byte, burstIdx int) {
	pos := subPkgBitIdx(burstIdx, int(b.cursor))
	bitbuf.Write(b.data[:], bit, pos+headBits)
	b.cursor++
}

// WriteBitIdx writes a bit at a fixed position within the burst payload,
// bypassing the interleaver. Used by the sync-burst encoder.
func (b *RadioBurst) WriteBitIdx(bit byte, bitIdx int) {
	bitbuf.Write(b.data[:], bit, bitIdx+headBits)
}

// subPkgBitIdx maps the n-th written bit of a burst to its payload position:
// alternating between the halves 0..11 (downwards) and 24..35 (upwards),
// leaving 12..23 for the midamble.
func subPkgBitIdx(burstIdx, bitIdx int) int {
	if (burstIdx^bitIdx)&1 != 0 {
		return 24 + bitIdx>>1
	}
	return 11 - bitIdx>>1
}

// coreMidamble and extMidamble are the fixed 12-symbol synchronization
// sequences of core and extension bursts.
var (
	coreMidamble = [midambleLen]byte{0, 1, 1, 1, 0, 1, 0, 0, 0, 0, 1, 0}
	extMidamble  = [midambleLen]byte{0, 1, 0, 0, 1, 1, 1, 1, 1, 0, 1, 0}
)

// AddMidamble writes the midamble into payload positions 12..23. It has to be
// called after all data bits have been written.
func (b *RadioBurst) AddMidamble(burstIdx int) {
	mid := &coreMidamble
	if burstIdx >= NumCoreBursts {
		mid = &extMidamble
	}
	for i, bit := range mid {
		bitbuf.Write(b.data[:], bit, midambleLen+i+headBits)
	}
}

// DifferentialMSKEncode differentially encodes the burst in place,
// b'[i] = b[i] xor b[i-1] with seed 0, and then forces the first head bit to
// one to give the receiver's matched filter a known phase reference.
func (b *RadioBurst) DifferentialMSKEncode() {
	carry := byte(0)
	for i := range b.data {
		shifted := carry | b.data[i]>>1
		carry = b.data[i] << 7
		b.data[i] ^= shifted
	}
	b.data[0] |= 0x80
}

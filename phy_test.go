// Copyright 2019 by Thorsten von Eicken, see LICENSE file

package tsunb

import (
	"testing"

	"github.com/tve/tsunb/bitbuf"
)

func TestCRC8(t *testing.T) {
	// Bit-accurate reference: 16 zero bits with poly 0x9B, init 0xFF.
	if got := crc8([]byte{0x00, 0x00}, 16); got != 0xB1 {
		t.Fatalf("crc8 of 16 zero bits got %#x expected 0xb1", got)
	}
	// Only the requested number of leading bits participates.
	if crc8([]byte{0x00, 0x00}, 10) != crc8([]byte{0x00, 0x3F}, 10) {
		t.Fatalf("crc8 looked past the requested bit count")
	}
	if crc8([]byte{0x00, 0x00}, 16) == crc8([]byte{0x00, 0x01}, 16) {
		t.Fatalf("crc8 ignored the last bit")
	}
}

func TestWhitenInvolution(t *testing.T) {
	buf := make([]byte, 64)
	for i := range buf {
		buf[i] = byte(i * 37)
	}
	orig := append([]byte{}, buf...)
	whiten(buf)
	changed := false
	for i := range buf {
		if buf[i] != orig[i] {
			changed = true
		}
	}
	if !changed {
		t.Fatalf("whitening left the buffer untouched")
	}
	whiten(buf)
	for i := range buf {
		if buf[i] != orig[i] {
			t.Fatalf("double whitening is not the identity at byte %d", i)
		}
	}
}

var burstCounts = map[string]struct {
	mpduLen int
	want    int
}{
	"empty":    {0, 24},
	"short":    {19, 24},
	"min":      {20, 24},
	"min+1":    {21, 25},
	"max":      {255, 259},
	"too long": {256, 0},
}

func TestNumRadioBursts(t *testing.T) {
	phy := Phy{Params: ParamsEU0}
	for n, tc := range burstCounts {
		if got := phy.NumRadioBursts(tc.mpduLen); got != tc.want {
			t.Fatalf("numRadioBursts %s (%d) got %d expected %d", n, tc.mpduLen, got, tc.want)
		}
	}
}

// The extension frame LFSR has a period dividing 65535 and never reaches the
// all-zero state.
func TestTsmaLfsrPeriod(t *testing.T) {
	seed := uint16(0x8001)
	s := seed
	for i := 0; i < 65535; i++ {
		s = tsmaLfsr(s)
		if s == 0 {
			t.Fatalf("LFSR collapsed to zero after %d steps", i+1)
		}
	}
	if s != seed {
		t.Fatalf("LFSR period does not divide 65535: got %#x expected %#x", s, seed)
	}
}

// The combined convolutional output routing and intra-burst interleaving must
// be a permutation: every coded bit gets a unique data slot and every burst
// ends up with exactly 24 bits.
func TestInterleaverPermutation(t *testing.T) {
	for _, numBursts := range []int{24, 25, 70, 259} {
		cursors := make([]int, numBursts)
		seen := make(map[[2]int]bool)
		total := numBursts * 8 * 3
		for o := 0; o < total; o++ {
			b := radioBurstIdx(o, numBursts)
			if b < 0 || b >= numBursts {
				t.Fatalf("numBursts %d: bit %d routed to burst %d", numBursts, o, b)
			}
			pos := subPkgBitIdx(b, cursors[b])
			cursors[b]++
			if pos >= midambleLen && pos < 2*midambleLen {
				t.Fatalf("numBursts %d: bit %d hit midamble slot %d of burst %d",
					numBursts, o, pos, b)
			}
			key := [2]int{b, pos}
			if seen[key] {
				t.Fatalf("numBursts %d: bit %d collides at burst %d pos %d",
					numBursts, o, b, pos)
			}
			seen[key] = true
		}
		for b, n := range cursors {
			if n != burstDataLen {
				t.Fatalf("numBursts %d: burst %d carries %d bits expected %d",
					numBursts, b, n, burstDataLen)
			}
		}
	}
}

// Minimal telegram: short address, UPG1 pattern 0, EU0 channel plan, all-zero
// key and EUI, payload 01 02 03.
func TestEncodeMinimalTelegram(t *testing.T) {
	var mac Mac
	mac.SetAddress(make([]byte, 8))
	if got := mac.MPDULength(3, false); got != 13 {
		t.Fatalf("MPDU length got %d expected 13", got)
	}
	if got := mac.MPDULength(3, true); got != 14 {
		t.Fatalf("MPDU length with MPF got %d expected 14", got)
	}

	mpdu := make([]byte, 13)
	mac.Encode(mpdu, []byte{1, 2, 3}, false, 0)

	phy := Phy{Params: ParamsEU0}
	numBursts := phy.NumRadioBursts(len(mpdu))
	if numBursts != 24 {
		t.Fatalf("numBursts got %d expected 24", numBursts)
	}
	bursts := make([]RadioBurst, numBursts)
	f0 := phy.Encode(bursts, mpdu, 0, MacMMode)
	if f0 == 0 {
		t.Fatalf("encode failed")
	}

	// Core carrier offsets follow the UPG1 pattern-0 C_RB table times B_c.
	wantCRB := [24]uint16{5, 21, 13, 6, 22, 14, 1, 17, 9, 0, 16, 8, 7, 23, 15, 4, 20, 12, 3, 19, 11, 2, 18, 10}
	for i := range bursts {
		if got, want := bursts[i].CarrierOffset(), wantCRB[i]*39; got != want {
			t.Fatalf("burst %d carrier got %d expected %d", i, got, want)
		}
	}

	// T_RB follows the 330/387/table cadence, 0 on the final burst.
	wantThird := [7]uint16{388, 354, 356, 432, 352, 467, 620}
	for i := 0; i < 23; i++ {
		var want uint16
		switch i % 3 {
		case 0:
			want = 330
		case 1:
			want = 387
		default:
			want = wantThird[i/3]
		}
		if got := bursts[i].TRB(); got != want {
			t.Fatalf("burst %d T_RB got %d expected %d", i, got, want)
		}
	}
	if bursts[23].TRB() != 0 {
		t.Fatalf("final burst T_RB got %d expected 0", bursts[23].TRB())
	}

	// f_0 derives from the payload CRC over the MPDU bits plus the two MMODE
	// bits.
	pcrc := crc8(append(append([]byte{}, mpdu...), 0), len(mpdu)*8+2)
	fc := uint32(14224261) // CHAN_A == CHAN_B in EU0
	cRF := int32(pcrc&0x7F)%3 - 1
	want := uint32(int64(fc) - 12*39 + int64(cRF)*39)
	if f0 != want {
		t.Fatalf("f_0 got %d expected %d", f0, want)
	}

	// Every burst must have its head phase reference bit set after MSK
	// pre-coding.
	for i := range bursts {
		if bitbuf.Read(bursts[i].Bytes(), 0) != 1 {
			t.Fatalf("burst %d head bit not set", i)
		}
	}

	// Encoding is deterministic.
	bursts2 := make([]RadioBurst, numBursts)
	if f2 := phy.Encode(bursts2, mpdu, 0, MacMMode); f2 != f0 {
		t.Fatalf("re-encode f_0 got %d expected %d", f2, f0)
	}
	for i := range bursts {
		if bursts[i] != bursts2[i] {
			t.Fatalf("re-encode burst %d differs", i)
		}
	}
}

// Long-address telegram with 50 payload bytes: 66-byte MPDU, 70 bursts, the
// extension bursts positioned by the seeded LFSR.
func TestEncodeExtensionTelegram(t *testing.T) {
	var mac Mac
	mac.SetAddress([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	mac.SetAddressMode(LongAddress)

	payload := make([]byte, 50)
	for i := range payload {
		payload[i] = byte(i)
	}
	mpduLen := mac.MPDULength(len(payload), false)
	if mpduLen != 66 {
		t.Fatalf("MPDU length got %d expected 66", mpduLen)
	}
	mpdu := make([]byte, mpduLen)
	mac.Encode(mpdu, payload, false, 0)

	phy := Phy{Params: ParamsEU0}
	numBursts := phy.NumRadioBursts(mpduLen)
	if numBursts != 70 {
		t.Fatalf("numBursts got %d expected 70", numBursts)
	}
	bursts := make([]RadioBurst, numBursts)
	if f0 := phy.Encode(bursts, mpdu, 0, MacMMode); f0 == 0 {
		t.Fatalf("encode failed")
	}

	// Extension carriers use indices 0..24; every offset is a multiple of
	// B_c within range.
	for i := NumCoreBursts; i < numBursts; i++ {
		off := bursts[i].CarrierOffset()
		if off%39 != 0 || off > 24*39 {
			t.Fatalf("extension burst %d carrier offset %d out of range", i, off)
		}
	}
	// The delay onto each extension burst is 337 + (seed mod 128) symbols,
	// written onto the preceding burst.
	for i := NumCoreBursts - 1; i < numBursts-1; i++ {
		trb := bursts[i].TRB()
		if trb < 337 || trb > 337+127 {
			t.Fatalf("burst %d T_RB %d outside extension spacing", i, trb)
		}
	}
	if bursts[numBursts-1].TRB() != 0 {
		t.Fatalf("final burst T_RB got %d expected 0", bursts[numBursts-1].TRB())
	}
}

func TestEncodeTooLong(t *testing.T) {
	phy := Phy{Params: ParamsEU0}
	if f0 := phy.Encode(nil, make([]byte, 256), 0, MacMMode); f0 != 0 {
		t.Fatalf("oversized MPDU encoded with f_0 %d", f0)
	}
}

// Sync burst for pattern 3, short-address LSB 0xAB, UPG2: fixed prefix, UPG
// bits and the CRC-2 over bits 20..33 at positions 34..35.
func TestEncodeSyncBurst(t *testing.T) {
	phy := Phy{Params: Params{ChanA: 14224261, ChanB: 14224261, Bc: 39, Bc0: 39, UPG: UPG2, Nco: 3}}
	var b RadioBurst
	phy.EncodeSyncBurst(&b, 3, 0xAB)

	// Pre-differential payload: 33 3D 33 AB, UPG2 bit, CRC-2 = 1 1.
	payload := []byte{0x33, 0x3D, 0x33, 0xAB, 0x40 | 0x30}
	var pre [BurstLength]byte
	for i := 0; i < BurstPayloadLen; i++ {
		pre[headBits+i] = bitbuf.Read(payload, i)
	}

	// Differential encoding with seed 0, head bit forced.
	var want [BurstLengthBytes]byte
	prev := byte(0)
	for i := 0; i < BurstLength; i++ {
		bitbuf.Write(want[:], pre[i]^prev, i)
		prev = pre[i]
	}
	want[0] |= 0x80

	for i, by := range b.Bytes() {
		if by != want[i] {
			t.Fatalf("sync burst byte %d got %#02x expected %#02x\ngot  %x\nwant %x",
				i, by, want[i], b.Bytes(), want[:])
		}
	}
	if got := b.CarrierOffset(); got != 24*39 {
		t.Fatalf("sync burst carrier got %d expected %d", got, 24*39)
	}
	if got := b.TRB(); got != 337 {
		t.Fatalf("sync burst T_RB got %d expected 337", got)
	}
}

func TestTsmaPatternRotation(t *testing.T) {
	phy := Phy{Params: ParamsEU0}
	want := []uint8{0, 1, 2, 3, 0, 1, 2, 3, 4, 0, 1, 2, 3, 4, 5}
	for i := 0; i < 45; i++ {
		if got := phy.TsmaPattern(uint32(i)); got != want[i%15] {
			t.Fatalf("pattern for counter %d got %d expected %d", i, got, want[i%15])
		}
	}
}

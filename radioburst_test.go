// Copyright 2019 by Thorsten von Eicken, see LICENSE file

package tsunb

import (
	"testing"

	"github.com/tve/tsunb/bitbuf"
)

// The interleaved write must land the 24 data bits of a burst in positions
// 0..11 and 24..35, never in the midamble slots, and never twice in the same
// position.
func TestSubPacketInterleaving(t *testing.T) {
	for burstIdx := 0; burstIdx < 4; burstIdx++ {
		seen := make(map[int]bool)
		for n := 0; n < burstDataLen; n++ {
			pos := subPkgBitIdx(burstIdx, n)
			if pos >= midambleLen && pos < midambleLen+midambleLen {
				t.Fatalf("burst %d bit %d interleaved into midamble slot %d", burstIdx, n, pos)
			}
			if pos < 0 || pos >= BurstPayloadLen {
				t.Fatalf("burst %d bit %d out of range: %d", burstIdx, n, pos)
			}
			if seen[pos] {
				t.Fatalf("burst %d bit %d collides at position %d", burstIdx, n, pos)
			}
			seen[pos] = true
		}
	}
}

func TestMidambleSlots(t *testing.T) {
	var core, ext RadioBurst
	core.AddMidamble(0)
	ext.AddMidamble(NumCoreBursts)

	wantCore := []byte{0, 1, 1, 1, 0, 1, 0, 0, 0, 0, 1, 0}
	wantExt := []byte{0, 1, 0, 0, 1, 1, 1, 1, 1, 0, 1, 0}
	for i := 0; i < midambleLen; i++ {
		if got := bitbuf.Read(core.Bytes(), headBits+midambleLen+i); got != wantCore[i] {
			t.Fatalf("core midamble bit %d got %d expected %d", i, got, wantCore[i])
		}
		if got := bitbuf.Read(ext.Bytes(), headBits+midambleLen+i); got != wantExt[i] {
			t.Fatalf("ext midamble bit %d got %d expected %d", i, got, wantExt[i])
		}
	}
}

// Differential MSK pre-coding is b'[i] = b[i] xor b[i-1] with seed 0, with
// the first head bit forced to one afterwards.
func TestDifferentialMSKEncode(t *testing.T) {
	var b RadioBurst
	for i := 0; i < BurstPayloadLen; i++ {
		b.WriteBitIdx(byte(i*5%3&1), i)
	}
	var pre [BurstLength]byte
	for i := range pre {
		pre[i] = bitbuf.Read(b.Bytes(), i)
	}

	b.DifferentialMSKEncode()

	for i := 1; i < BurstLength; i++ {
		if got, want := bitbuf.Read(b.Bytes(), i), pre[i]^pre[i-1]; got != want {
			t.Fatalf("bit %d got %d expected %d", i, got, want)
		}
	}
	if bitbuf.Read(b.Bytes(), 0) != 1 {
		t.Fatalf("head bit not forced to 1")
	}
}

func TestPuncture(t *testing.T) {
	var b RadioBurst
	b.SetCarrierOffset(39)
	if b.Length() != BurstLength || b.LengthBytes() != BurstLengthBytes {
		t.Fatalf("unexpected burst length %d/%d", b.Length(), b.LengthBytes())
	}
	b.Puncture()
	if b.Length() != 0 || b.LengthBytes() != 0 {
		t.Fatalf("punctured burst reports nonzero length %d/%d", b.Length(), b.LengthBytes())
	}
	if b.CarrierOffset() != Punctured {
		t.Fatalf("punctured carrier offset %#x", b.CarrierOffset())
	}
}

// Copyright 2019 by Thorsten von Eicken, see LICENSE file

package rfm69

import (
	"errors"
	"testing"

	"github.com/tve/tsunb"
)

// fakeSPI records register writes and answers the chip-detect read.
type fakeSPI struct {
	writes [][]byte
	chipID byte
}

func (f *fakeSPI) Tx(w, r []byte) error {
	if len(w) == 2 && w[0] == REG_AFCCHECK {
		r[1] = f.chipID
	}
	f.writes = append(f.writes, append([]byte{}, w...))
	return nil
}

func (f *fakeSPI) Speed(hz int64) error               { return nil }
func (f *fakeSPI) Configure(mode int, bits int) error { return nil }
func (f *fakeSPI) Close() error                       { return nil }

func (f *fakeSPI) find(addr byte) [][]byte {
	var out [][]byte
	for _, w := range f.writes {
		if w[0] == addr {
			out = append(out, w)
		}
	}
	return out
}

func TestInitNoTransceiver(t *testing.T) {
	spi := &fakeSPI{chipID: 0x00}
	r := New(spi, RadioOpts{})
	if err := r.Init(); !errors.Is(err, ErrNoTransceiver) {
		t.Fatalf("init got %v expected ErrNoTransceiver", err)
	}
}

func TestInit(t *testing.T) {
	spi := &fakeSPI{chipID: 0x02}
	r := New(spi, RadioOpts{Fdev: 12})
	if err := r.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	// The deviation register gets the configured value.
	fdev := spi.find(0x80 + 0x05)
	if len(fdev) != 1 || fdev[0][2] != 12 {
		t.Fatalf("fdev write got %+v", fdev)
	}
	// The chip ends up in sleep mode.
	last := spi.writes[len(spi.writes)-1]
	if last[0] != REG_OPMODE|WRITE_FLAG || last[1] != MODE_SLEEP {
		t.Fatalf("final write %x, expected sleep mode", last)
	}
}

func TestTransmit(t *testing.T) {
	spi := &fakeSPI{chipID: 0x02}
	// Very high symbol rate so the symbol waits don't slow the test down.
	r := New(spi, RadioOpts{RateMult: 480000})
	if err := r.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	spi.writes = nil

	bursts := make([]tsunb.RadioBurst, 3)
	bursts[0].SetCarrierOffset(39)
	bursts[0].WriteBitIdx(1, 0)
	bursts[0].SetTRB(350)
	bursts[1].Puncture()
	bursts[1].SetTRB(400)
	bursts[2].SetCarrierOffset(2 * 39)
	bursts[2].SetTRB(0)

	if err := r.Transmit(bursts, 14224261-468); err != nil {
		t.Fatalf("transmit: %v", err)
	}

	// One FRF write per emitted burst, at f_0 plus the carrier offset; the
	// punctured burst is skipped.
	frf := spi.find(REG_FRFMSB | WRITE_FLAG)
	if len(frf) != 2 {
		t.Fatalf("got %d FRF writes expected 2: %+v", len(frf), frf)
	}
	want := uint32(14224261 - 468 + 39)
	got := uint32(frf[0][1])<<16 | uint32(frf[0][2])<<8 | uint32(frf[0][3])
	if got != want {
		t.Fatalf("first carrier got %d expected %d", got, want)
	}

	// Each emitted burst loads its five bytes plus one dummy into the FIFO.
	fifo := spi.find(REG_FIFO | WRITE_FLAG)
	if len(fifo) != 2*(tsunb.BurstLengthBytes+1) {
		t.Fatalf("got %d FIFO writes expected %d", len(fifo), 2*(tsunb.BurstLengthBytes+1))
	}

	// The radio is left in sleep mode.
	last := spi.writes[len(spi.writes)-1]
	if last[0] != REG_OPMODE|WRITE_FLAG || last[1] != MODE_SLEEP {
		t.Fatalf("final write %x, expected sleep mode", last)
	}
}

// Copyright 2019 by Thorsten von Eicken, see LICENSE file

// Package host provides the platform services the TS-UNB pipeline needs from
// its environment: SPI access to the transmitter, a symbol-accurate timer, a
// watchdog hook and persistent storage for the packet counter. The default
// SPI shim uses kidoman/embd; an alternative backend on periph.io is provided
// for boards supported there.
package host

import (
	"errors"

	"github.com/kidoman/embd"
)

// SPI is the bus interface the rfm69 burst sink drives. The RFM69 is a
// write-mostly device here: bursts are shifted into the FIFO one register
// write at a time, and the only read is the chip-detect at init.
type SPI interface {
	Tx(w, r []byte) error
	Speed(hz int64) error
	Configure(mode int, bits int) error
	Close() error
}

// SPIMode0 (CPOL=0, CPHA=0) is the only mode the RFM69 speaks.
const SPIMode0 = 0x0

//===== SPI shim for embd

// NewSPI returns an SPI bus backed by embd, mode 0 at 4MHz.
func NewSPI() SPI {
	return &spi{embd.NewSPIBus(embd.SPIMode0, 0, 4000000, 8, 0)}
}

type spi struct {
	embd.SPIBus
}

func (s *spi) Tx(w, r []byte) error {
	copy(r, w)
	return s.TransferAndReceiveData(r)
}

func (s *spi) Speed(hz int64) error {
	if hz != 4000000 {
		return errors.New("SPI: sorry, only 4Mhz supported")
	}
	return nil
}

func (s *spi) Configure(mode int, bits int) error {
	if mode != SPIMode0 {
		return errors.New("SPI: sorry, only SPI mode 0 supported")
	}
	if bits != 8 {
		return errors.New("SPI: sorry, only 8-bit mode supported")
	}
	return nil
}

//===== Watchdog

// Watchdog is reset between radio bursts so long telegrams don't trip a
// platform watchdog. The default implementation does nothing.
type Watchdog interface {
	Reset()
}

type nopWatchdog struct{}

func (nopWatchdog) Reset() {}

// NopWatchdog returns a watchdog that does nothing.
func NopWatchdog() Watchdog { return nopWatchdog{} }

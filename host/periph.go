// Copyright 2019 by Thorsten von Eicken, see LICENSE file

package host

import (
	"periph.io/x/periph/conn/physic"
	periphspi "periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
	periphhost "periph.io/x/periph/host"
)

// InitPeriph initializes the periph.io host drivers. It must be called once
// before NewPeriphSPI.
func InitPeriph() error {
	_, err := periphhost.Init()
	return err
}

// NewPeriphSPI opens the named SPI port via periph.io and adapts it to the
// SPI interface. An empty name selects the first available port.
func NewPeriphSPI(name string) (SPI, error) {
	port, err := spireg.Open(name)
	if err != nil {
		return nil, err
	}
	return &periphSPI{port: port, hz: 4000000, mode: periphspi.Mode0, bits: 8}, nil
}

// periphSPI defers Connect until the first transfer so Speed and Configure
// can still adjust the parameters, which periph fixes at connect time.
type periphSPI struct {
	port periphspi.PortCloser
	conn periphspi.Conn
	hz   int64
	mode periphspi.Mode
	bits int
}

func (p *periphSPI) Tx(w, r []byte) error {
	if p.conn == nil {
		conn, err := p.port.Connect(physic.Frequency(p.hz)*physic.Hertz, p.mode, p.bits)
		if err != nil {
			return err
		}
		p.conn = conn
	}
	return p.conn.Tx(w, r)
}

func (p *periphSPI) Speed(hz int64) error {
	p.hz = hz
	p.conn = nil
	return nil
}

func (p *periphSPI) Configure(mode int, bits int) error {
	p.mode = periphspi.Mode(mode)
	p.bits = bits
	p.conn = nil
	return nil
}

func (p *periphSPI) Close() error {
	return p.port.Close()
}

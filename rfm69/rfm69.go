// Copyright 2019 by Thorsten von Eicken, see LICENSE file

// The rfm69 package transmits TS-UNB radio bursts through a HopeRF
// RFM69w/RFM69hw module connected to an SPI bus.
//
// The transceiver is operated in continuous transmission mode without the bit
// synchronizer and the symbol clock is generated by the host: the driver
// preloads each burst into the FIFO, hops the carrier to the burst frequency
// and switches the chip between frequency-synthesizer, transmit and sleep
// mode on symbol-accurate deadlines. The DIO2 pin is not used for modulation;
// the frequency deviation register provides the FSK shift.
//
// The standard mode would require a deviation of 595.09Hz, which the chip's
// 61.035Hz register step cannot express; the default register value of 10
// (610.35Hz) has shown to work properly. Boards wired for the PA_BOOST pin
// must set the Boost option; powers above 13dBm require it.
//
// The driver is not concurrency safe: a Transmit owns the radio (and the
// caller's telegram schedule) until it returns.
package rfm69

import (
	"errors"
	"fmt"

	"github.com/tve/tsunb"
	"github.com/tve/tsunb/host"
)

// ErrNoTransceiver indicates that the chip-detect read-back failed, i.e. no
// (or a wrong) radio is attached to the bus.
var ErrNoTransceiver = errors.New("rfm69: transceiver not found")

// LogPrintf is a function used by the driver to print logging info.
type LogPrintf func(format string, v ...interface{})

// Radio drives one RFM69 module as a TS-UNB burst sink.
type Radio struct {
	spi    host.SPI
	timer  *host.SymbolTimer
	wd     host.Watchdog
	boost  bool
	power  int8
	config []byte
	log    LogPrintf
}

// RadioOpts contains options used when initializing a Radio.
type RadioOpts struct {
	Boost     bool          // module uses the PA_BOOST pin
	Fdev      byte          // frequency deviation register value, default 10
	RateMult  int           // symbol rate multiplier, default 48 (2380.371 sym/s)
	PPMOffset int           // crystal offset correction in ppm
	Power     int8          // transmit power in dBm, default 13
	Watchdog  host.Watchdog // reset between bursts, default no-op
	Logger    LogPrintf     // function to use for logging
}

// New returns a Radio on the given SPI device. Call Init before transmitting;
// it is separate so the caller can start a watchdog first.
func New(dev host.SPI, opts RadioOpts) *Radio {
	r := &Radio{
		spi:   dev,
		wd:    opts.Watchdog,
		boost: opts.Boost,
		power: 13,
		log:   func(format string, v ...interface{}) {},
	}
	if opts.Power != 0 {
		r.power = opts.Power
	}
	if opts.Watchdog == nil {
		r.wd = host.NopWatchdog()
	}
	if opts.Logger != nil {
		r.log = func(format string, v ...interface{}) {
			opts.Logger("rfm69: "+format, v...)
		}
	}
	rateMult := 48
	if opts.RateMult != 0 {
		rateMult = opts.RateMult
	}
	r.timer = host.NewSymbolTimer(rateMult, opts.PPMOffset)

	fdev := byte(10)
	if opts.Fdev != 0 {
		fdev = opts.Fdev
	}
	r.config = append([]byte(nil), configRegs...)
	r.config[fdevIdx] = fdev
	return r
}

// SetPower sets the transmit power in dBm for subsequent transmissions. The
// value is clamped to what the module supports.
func (r *Radio) SetPower(dbm int8) { r.power = dbm }

// Init checks that the transceiver is present, loads the continuous-mode
// configuration and puts the chip to sleep to save energy. Call it as early
// as possible after power-on.
func (r *Radio) Init() error {
	if err := r.spi.Speed(4 * 1000 * 1000); err != nil {
		return fmt.Errorf("rfm69: cannot set speed, %v", err)
	}
	if err := r.spi.Configure(host.SPIMode0, 8); err != nil {
		return fmt.Errorf("rfm69: cannot set mode, %v", err)
	}

	// Chip detect: register 0x0C reads back 0x02.
	var buf [2]byte
	if err := r.spi.Tx([]byte{REG_AFCCHECK, 0}, buf[:]); err != nil {
		return fmt.Errorf("rfm69: %v", err)
	}
	if buf[1] != 0x02 {
		return ErrNoTransceiver
	}
	r.log("transceiver detected")

	for i := 0; r.config[i] != 0; i += int(r.config[i]) + 1 {
		n := int(r.config[i])
		if err := r.spiSend(r.config[i+1 : i+1+n]); err != nil {
			return err
		}
	}
	return r.setMode(MODE_SLEEP)
}

// Transmit emits the bursts of one telegram in index order, each at carrier
// freq+offset with the annotated inter-burst delays. Punctured bursts consume
// their time slot without emission.
func (r *Radio) Transmit(bursts []tsunb.RadioBurst, freq uint32) error {
	r.log("transmitting %d bursts at f_0 register %d", len(bursts), freq)
	if err := r.setTxPwrReg(r.power); err != nil {
		return err
	}

	// Give the system the time of four symbols to settle before the first
	// burst.
	r.timer.Start()
	r.timer.AddDelay(4)

	for i := range bursts {
		b := &bursts[i]
		r.wd.Reset()

		if b.Length() == 0 {
			r.timer.Wait()
			if i+1 < len(bursts) {
				r.timer.AddDelay(int(b.TRB()))
			}
			continue
		}

		r.timer.Wait()
		if err := r.setFrequencyReg(freq + uint32(b.CarrierOffset())); err != nil {
			return err
		}

		// Preload the burst into the FIFO, plus one dummy byte: if the dummy
		// ever gets transmitted the chip falls out of the FIFO and emits
		// nothing meaningful, and the sleep command below cuts it off anyway.
		data := b.Bytes()
		for _, by := range data[:b.LengthBytes()] {
			if err := r.spiSend([]byte{REG_FIFO | WRITE_FLAG, by}); err != nil {
				return err
			}
		}
		if err := r.spiSend([]byte{REG_FIFO | WRITE_FLAG, 0}); err != nil {
			return err
		}
		if err := r.setMode(MODE_FS); err != nil {
			return err
		}

		r.timer.AddDelay(2)
		r.timer.Wait()
		if err := r.setMode(MODE_TX); err != nil {
			return err
		}

		r.timer.AddDelay(b.Length())
		r.timer.Wait()
		if err := r.setMode(MODE_SLEEP); err != nil {
			return err
		}

		// Wake up two symbols before the next burst starts; that leaves
		// enough time to shift the next burst into the FIFO.
		if i+1 < len(bursts) {
			r.timer.AddDelay(int(b.TRB()) - b.Length() - 2)
		}
	}

	return r.setMode(MODE_SLEEP)
}

// setFrequencyReg programs the 24-bit FRF register.
func (r *Radio) setFrequencyReg(frequency uint32) error {
	return r.spiSend([]byte{
		REG_FRFMSB | WRITE_FLAG,
		byte(frequency >> 16), byte(frequency >> 8), byte(frequency),
	})
}

// setTxPwrReg programs the PA level register for the requested power in dBm,
// clamped to the module's range. Details are in the RFM69HW datasheet.
func (r *Radio) setTxPwrReg(power int8) error {
	if r.boost {
		if power > 17 {
			power = 17
		}
		if power < -2 {
			power = -2
		}
		// PA1 alone up to 13dBm, PA1+PA2 above.
		if power <= 13 {
			return r.spiSend([]byte{REG_PALEVEL | WRITE_FLAG, PA1_ON | byte(power+18)})
		}
		return r.spiSend([]byte{REG_PALEVEL | WRITE_FLAG, PA1_ON | PA2_ON | byte(power+14)})
	}

	if power > 13 {
		power = 13
	}
	if power < -18 {
		power = -18
	}
	return r.spiSend([]byte{REG_PALEVEL | WRITE_FLAG, PA0_ON + byte(power+18)})
}

func (r *Radio) setMode(mode byte) error {
	return r.spiSend([]byte{REG_OPMODE | WRITE_FLAG, mode})
}

func (r *Radio) spiSend(w []byte) error {
	rBuf := make([]byte, len(w))
	if err := r.spi.Tx(w, rBuf); err != nil {
		return fmt.Errorf("rfm69: %v", err)
	}
	return nil
}

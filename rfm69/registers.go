// Copyright 2019 by Thorsten von Eicken, see LICENSE file

package rfm69

// Register addresses and values for the sx1231 chip used on the RFM69
// modules, limited to what burst transmission needs. Writes or the address
// with 0x80.
const (
	REG_FIFO     = 0x00
	REG_OPMODE   = 0x01
	REG_FRFMSB   = 0x07
	REG_AFCCHECK = 0x0C // read-back register used to detect the chip
	REG_PALEVEL  = 0x11

	WRITE_FLAG = 0x80

	MODE_SLEEP = 0x00
	MODE_STDBY = 0x01
	MODE_FS    = 0x02
	MODE_TX    = 0x0C

	PA0_ON = 0x80
	PA1_ON = 0x40
	PA2_ON = 0x20
)

// configRegs is the transceiver initialization sequence for continuous-mode
// FSK transmission without the bit synchronizer: groups of length, write
// address, data bytes, terminated by a zero length. The frequency deviation
// placeholder at fdevIdx is patched with the configured value.
var configRegs = []byte{
	2, 0x80 + 0x01, 0x00,
	2, 0x80 + 0x02, 0x01,
	3, 0x80 + 0x03, 0x34, 0x83,
	3, 0x80 + 0x05, 0x00, 10,
	2, 0x80 + 0x12, 0x04,
	2, 0x80 + 0x13, 0x00,
	3, 0x80 + 0x2c, 0x00, 0x00,
	2, 0x80 + 0x2e, 0x00,
	2, 0x80 + 0x37, 0x00,
	2, 0x80 + 0x38, 0x00,
	2, 0x80 + 0x3b, 0xe8,
	2, 0x80 + 0x3c, 0x80,
	0,
}

// fdevIdx is the position of the frequency deviation LSB within configRegs.
const fdevIdx = 13

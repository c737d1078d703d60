// Copyright 2019 by Thorsten von Eicken, see LICENSE file

package tsunb

import (
	"errors"

	"github.com/tve/tsunb/aes128"
)

// AddressMode selects between the 16-bit short address and the full EUI-64
// in the MPDU header.
type AddressMode int

const (
	ShortAddress AddressMode = iota
	LongAddress
)

// MacMMode is the MMODE of the fixed uplink MAC.
const MacMMode = 0

// MAC header bits. All other header bits stay zero for the fixed uplink
// profile.
const (
	hdrAddressing = 0x04 // long addressing mode
	hdrMPF        = 0x40 // MPF field present
)

const dataDirection = 0x00 // uplink direction byte of the CMAC IV

var (
	// ErrConfig indicates an invalid node configuration, e.g. impossible
	// channel plan parameters.
	ErrConfig = errors.New("tsunb: invalid configuration")
	// ErrPayloadTooLong indicates that the MPDU would exceed 255 bytes.
	ErrPayloadTooLong = errors.New("tsunb: payload too long")
)

// Mac implements the TS-UNB fixed uplink MAC: it turns a MAC payload into an
// MPDU carrying the header, the device address, the low 24 bits of the
// extended packet counter, the encrypted payload and a 4-byte truncated CMAC.
//
// The MAC owns the network key, the device identity and the packet counter.
// Encode mutates the counter; calls must be serialized by the caller.
type Mac struct {
	NetworkKey [16]byte // secret key shared with the gateway
	EUI64      [8]byte  // device identity
	ShortAddr  [2]byte  // short address, defaults to EUI64 bytes 6..7
	ExtPkgCnt  uint32   // extended packet counter, low 24 bits go on the wire

	header byte
}

// SetAddress sets the EUI-64 and derives the short address from its last two
// bytes.
func (m *Mac) SetAddress(eui []byte) {
	copy(m.EUI64[:], eui)
	m.ShortAddr[0] = m.EUI64[6]
	m.ShortAddr[1] = m.EUI64[7]
}

// SetAddressMode selects short or long addressing for subsequent telegrams.
func (m *Mac) SetAddressMode(mode AddressMode) {
	if mode == LongAddress {
		m.header |= hdrAddressing
	} else {
		m.header &^= hdrAddressing
	}
}

// MPDULength returns the MPDU length for a given MAC payload length:
// header + address + counter + optional MPF + payload + MIC.
func (m *Mac) MPDULength(payloadLen int, mpfPresent bool) int {
	n := 10 + payloadLen
	if mpfPresent {
		n++
	}
	if m.header&hdrAddressing != 0 {
		n += 6
	}
	return n
}

// Counter returns the extended packet counter.
func (m *Mac) Counter() uint32 { return m.ExtPkgCnt }

// LsbShortAddress returns the low byte of the short address, as carried in
// the sync burst.
func (m *Mac) LsbShortAddress() byte { return m.ShortAddr[1] }

// Encode builds the MPDU for payload into mpdu, which must be at least
// MPDULength bytes. The optional MPF byte is encrypted together with the
// payload. The extended packet counter is incremented exactly once.
// It returns the MPDU length.
func (m *Mac) Encode(mpdu, payload []byte, mpfPresent bool, mpfValue byte) int {
	cipher := aes128.New(m.NetworkKey[:])

	if mpfPresent {
		m.header |= hdrMPF
	} else {
		m.header &^= hdrMPF
	}

	// CMAC initialization vector: EUI-64, direction, 32-bit counter, FF FF.
	var iv [16]byte
	copy(iv[:8], m.EUI64[:])
	iv[8] = 0x00
	iv[9] = dataDirection
	iv[10] = byte(m.ExtPkgCnt >> 24)
	iv[11] = byte(m.ExtPkgCnt >> 16)
	iv[12] = byte(m.ExtPkgCnt >> 8)
	iv[13] = byte(m.ExtPkgCnt)
	iv[14] = 0xFF
	iv[15] = 0xFF

	idx := 0
	mpdu[idx] = m.header
	idx++
	if m.header&hdrAddressing != 0 {
		idx += copy(mpdu[idx:], m.EUI64[:])
	} else {
		idx += copy(mpdu[idx:], m.ShortAddr[:])
	}
	mpdu[idx] = byte(m.ExtPkgCnt >> 16)
	mpdu[idx+1] = byte(m.ExtPkgCnt >> 8)
	mpdu[idx+2] = byte(m.ExtPkgCnt)
	idx += 3
	beginEncrypted := idx

	if mpfPresent {
		mpdu[idx] = mpfValue
		idx++
	}
	idx += copy(mpdu[idx:], payload)

	// Encrypt in place with the keystream E_K(IV) where the IV carries the
	// block counter in its last two bytes.
	var keystream [16]byte
	for block := 0; beginEncrypted < idx; block++ {
		iv[14] = 0x00
		iv[15] = byte(block)
		cipher.Encrypt(keystream[:], iv[:])
		for i := 0; i < len(keystream) && beginEncrypted < idx; i++ {
			mpdu[beginEncrypted] ^= keystream[i]
			beginEncrypted++
		}
	}
	iv[14] = 0xFF
	iv[15] = 0xFF

	mic := cipher.CMACWithIV(iv[:], mpdu[:idx])
	idx += copy(mpdu[idx:], mic[:4])

	m.ExtPkgCnt++
	return idx
}

// Copyright 2019 by Thorsten von Eicken, see LICENSE file

// Package aes128 implements the AES-128 block cipher (NIST FIPS-197) together
// with the CMAC authentication (RFC 4493) used by the TS-UNB MAC layer.
//
// The TS-UNB gateways authenticate telegrams with an IV-prefixed CMAC variant:
// a 16-byte initialization vector is run through the cipher as the first block
// of the MAC state before the message blocks are chained in. CMACWithIV
// implements that variant, CMAC the plain RFC 4493 one.
package aes128

const (
	blockSize = 16   // bytes per cipher block
	numRounds = 10   // rounds for a 128-bit key
	cmacRb    = 0x87 // CMAC subkey generation constant
)

// sbox holds the SubBytes substitution values for the byte 0xXY.
var sbox = [256]byte{
	0x63, 0x7C, 0x77, 0x7B, 0xF2, 0x6B, 0x6F, 0xC5, 0x30, 0x01, 0x67, 0x2B, 0xFE, 0xD7, 0xAB, 0x76,
	0xCA, 0x82, 0xC9, 0x7D, 0xFA, 0x59, 0x47, 0xF0, 0xAD, 0xD4, 0xA2, 0xAF, 0x9C, 0xA4, 0x72, 0xC0,
	0xB7, 0xFD, 0x93, 0x26, 0x36, 0x3F, 0xF7, 0xCC, 0x34, 0xA5, 0xE5, 0xF1, 0x71, 0xD8, 0x31, 0x15,
	0x04, 0xC7, 0x23, 0xC3, 0x18, 0x96, 0x05, 0x9A, 0x07, 0x12, 0x80, 0xE2, 0xEB, 0x27, 0xB2, 0x75,
	0x09, 0x83, 0x2C, 0x1A, 0x1B, 0x6E, 0x5A, 0xA0, 0x52, 0x3B, 0xD6, 0xB3, 0x29, 0xE3, 0x2F, 0x84,
	0x53, 0xD1, 0x00, 0xED, 0x20, 0xFC, 0xB1, 0x5B, 0x6A, 0xCB, 0xBE, 0x39, 0x4A, 0x4C, 0x58, 0xCF,
	0xD0, 0xEF, 0xAA, 0xFB, 0x43, 0x4D, 0x33, 0x85, 0x45, 0xF9, 0x02, 0x7F, 0x50, 0x3C, 0x9F, 0xA8,
	0x51, 0xA3, 0x40, 0x8F, 0x92, 0x9D, 0x38, 0xF5, 0xBC, 0xB6, 0xDA, 0x21, 0x10, 0xFF, 0xF3, 0xD2,
	0xCD, 0x0C, 0x13, 0xEC, 0x5F, 0x97, 0x44, 0x17, 0xC4, 0xA7, 0x7E, 0x3D, 0x64, 0x5D, 0x19, 0x73,
	0x60, 0x81, 0x4F, 0xDC, 0x22, 0x2A, 0x90, 0x88, 0x46, 0xEE, 0xB8, 0x14, 0xDE, 0x5E, 0x0B, 0xDB,
	0xE0, 0x32, 0x3A, 0x0A, 0x49, 0x06, 0x24, 0x5C, 0xC2, 0xD3, 0xAC, 0x62, 0x91, 0x95, 0xE4, 0x79,
	0xE7, 0xC8, 0x37, 0x6D, 0x8D, 0xD5, 0x4E, 0xA9, 0x6C, 0x56, 0xF4, 0xEA, 0x65, 0x7A, 0xAE, 0x08,
	0xBA, 0x78, 0x25, 0x2E, 0x1C, 0xA6, 0xB4, 0xC6, 0xE8, 0xDD, 0x74, 0x1F, 0x4B, 0xBD, 0x8B, 0x8A,
	0x70, 0x3E, 0xB5, 0x66, 0x48, 0x03, 0xF6, 0x0E, 0x61, 0x35, 0x57, 0xB9, 0x86, 0xC1, 0x1D, 0x9E,
	0xE1, 0xF8, 0x98, 0x11, 0x69, 0xD9, 0x8E, 0x94, 0x9B, 0x1E, 0x87, 0xE9, 0xCE, 0x55, 0x28, 0xDF,
	0x8C, 0xA1, 0x89, 0x0D, 0xBF, 0xE6, 0x42, 0x68, 0x41, 0x99, 0x2D, 0x0F, 0xB0, 0x54, 0xBB, 0x16,
}

// rcon holds the round constants for the key expansion of a 128-bit key.
var rcon = [numRounds]byte{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80, 0x1B, 0x36}

// Cipher is an AES-128 cipher with its expanded key schedule.
type Cipher struct {
	rk [numRounds + 1][blockSize]byte
}

// New expands the 16-byte key and returns a ready-to-use cipher.
func New(key []byte) *Cipher {
	c := &Cipher{}
	copy(c.rk[0][:], key[:blockSize])

	for round := 1; round <= numRounds; round++ {
		prev := &c.rk[round-1]
		// RotWord + SubWord + Rcon on the last word of the previous round key.
		var t [4]byte
		t[0] = sbox[prev[13]] ^ rcon[round-1]
		t[1] = sbox[prev[14]]
		t[2] = sbox[prev[15]]
		t[3] = sbox[prev[12]]
		for w := 0; w < 4; w++ {
			for i := 0; i < 4; i++ {
				c.rk[round][w*4+i] = prev[w*4+i] ^ t[i]
			}
			copy(t[:], c.rk[round][w*4:w*4+4])
		}
	}
	return c
}

// Encrypt encrypts the 16-byte block src into dst. The two may overlap.
func (c *Cipher) Encrypt(dst, src []byte) {
	var s [blockSize]byte
	copy(s[:], src)

	addRoundKey(&s, &c.rk[0])
	for round := 1; round < numRounds; round++ {
		subBytesShiftRows(&s)
		mixColumns(&s)
		addRoundKey(&s, &c.rk[round])
	}
	subBytesShiftRows(&s)
	addRoundKey(&s, &c.rk[numRounds])

	copy(dst, s[:])
}

// subBytesShiftRows applies the SubBytes substitution and the subsequent
// ShiftRows permutation in place. The state is column-major, i.e. byte
// r+4*c holds row r of column c.
func subBytesShiftRows(s *[blockSize]byte) {
	// Row 0: no shift.
	s[0], s[4], s[8], s[12] = sbox[s[0]], sbox[s[4]], sbox[s[8]], sbox[s[12]]
	// Row 1: rotate left by one column.
	s[1], s[5], s[9], s[13] = sbox[s[5]], sbox[s[9]], sbox[s[13]], sbox[s[1]]
	// Row 2: rotate by two.
	s[2], s[10] = sbox[s[10]], sbox[s[2]]
	s[6], s[14] = sbox[s[14]], sbox[s[6]]
	// Row 3: rotate left by three.
	s[3], s[7], s[11], s[15] = sbox[s[15]], sbox[s[3]], sbox[s[7]], sbox[s[11]]
}

// xtime multiplies the polynomial by x in GF(2^8), reducing by 0x11B.
func xtime(p byte) byte {
	if p&0x80 != 0 {
		return p<<1 ^ 0x1B
	}
	return p << 1
}

func mixColumns(s *[blockSize]byte) {
	for col := 0; col < 4; col++ {
		var in [4]byte
		copy(in[:], s[col*4:col*4+4])
		for i := range in {
			s[col*4+i] = 0
		}
		for row := 0; row < 4; row++ {
			two := xtime(in[row])
			s[col*4+row] ^= two
			s[col*4+(row+3)&3] ^= two
			for out := 1; out < 4; out++ {
				s[col*4+(row+out)&3] ^= in[row]
			}
		}
	}
}

func addRoundKey(s, rk *[blockSize]byte) {
	for i := range s {
		s[i] ^= rk[i]
	}
}

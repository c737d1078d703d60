// Copyright 2019 by Thorsten von Eicken, see LICENSE file

package aes128

// Subkeys derives the two CMAC subkeys K1 and K2 per RFC 4493: K1 is the
// left-shift of E_K(0^128), xor'ed with Rb if the shifted-out bit was one,
// and K2 is derived from K1 the same way.
func (c *Cipher) Subkeys() (k1, k2 [blockSize]byte) {
	c.Encrypt(k1[:], k1[:])
	if shiftLeft(&k1, k1) != 0 {
		k1[blockSize-1] ^= cmacRb
	}
	if shiftLeft(&k2, k1) != 0 {
		k2[blockSize-1] ^= cmacRb
	}
	return
}

// shiftLeft shifts the 16-byte value in left by one bit into out and returns
// the shifted-out MSB.
func shiftLeft(out *[blockSize]byte, in [blockSize]byte) byte {
	carry := byte(0)
	for i := blockSize - 1; i >= 0; i-- {
		msb := in[i] >> 7
		out[i] = in[i]<<1 | carry
		carry = msb
	}
	return carry
}

// CMAC computes the AES-CMAC of msg per RFC 4493.
func (c *Cipher) CMAC(msg []byte) [blockSize]byte {
	var state [blockSize]byte
	c.cmacTail(&state, msg)
	return state
}

// CMACWithIV computes the IV-prefixed CMAC variant used by the TS-UNB MAC:
// the 16-byte iv is encrypted into the MAC state as the first block, then the
// message blocks are chained in as in plain CMAC. For non-empty messages this
// equals CMAC(iv || msg).
func (c *Cipher) CMACWithIV(iv, msg []byte) [blockSize]byte {
	var state [blockSize]byte
	copy(state[:], iv)
	c.Encrypt(state[:], state[:])
	c.cmacTail(&state, msg)
	return state
}

// cmacTail chains the message blocks into state and finalizes: a block-aligned
// last block is xor'ed with K1, anything else is 10*-padded and xor'ed with
// K2, then the state is encrypted one final time.
func (c *Cipher) cmacTail(state *[blockSize]byte, msg []byte) {
	k1, k2 := c.Subkeys()

	blocks := (len(msg) + blockSize - 1) / blockSize
	aligned := blocks > 0 && len(msg)%blockSize == 0
	if blocks == 0 {
		blocks = 1
	}

	for b := 0; b < blocks-1; b++ {
		xorBlock(state, msg[b*blockSize:])
		c.Encrypt(state[:], state[:])
	}

	if aligned {
		xorBlock(state, k1[:])
		xorBlock(state, msg[(blocks-1)*blockSize:])
	} else {
		xorBlock(state, k2[:])
		rest := msg[(blocks-1)*blockSize:]
		for i := range rest {
			state[i] ^= rest[i]
		}
		state[len(rest)] ^= 0x80
	}
	c.Encrypt(state[:], state[:])
}

func xorBlock(state *[blockSize]byte, b []byte) {
	for i := range state {
		state[i] ^= b[i]
	}
}

// Copyright 2019 by Thorsten von Eicken, see LICENSE file

package tsunb

import "github.com/tve/tsunb/bitbuf"

// UPGMode selects the uplink pattern group.
type UPGMode int

const (
	UPG1 UPGMode = iota // uplink pattern group 1
	UPG2                // uplink pattern group 2
	UPG3                // uplink pattern group 3, low latency
)

const (
	minPSDULength = 20
	maxPSDULength = 255
	phyOverhead   = 4 // header CRC, payload CRC, PSI, MMODE tail

	headerCrcPos  = 0
	payloadCrcPos = 1
	psiPos        = 2
	dataPos       = 3

	crc8Poly = 0x9B
	crc8Init = 0xFF
	crc2Poly = 0x03
	crc2Init = 0x03

	// Rate-1/3 convolutional code, constraint length 7.
	convPolyG1 = 0x5B // g(x) = x^6 + x^5 + x^3 + x^2 + 1
	convPolyG2 = 0x65 // g(x) = x^6 + x^4 + x + 1
	convPolyG3 = 0x7D // g(x) = x^6 + x^4 + x^3 + x^2 + x + 1

	numBitsCoreIlv = 288 // coded bits carried by the core bursts
	numBitsShift   = 48  // interleaver shift in coded bits

	extFramePoly = 0xB4F3 // Galois LFSR for extension burst positions

	numPatterns = 8 // TSMA patterns per group (UPG1/UPG2)

	timeSpacingUPG1 = 337
	timeSpacingUPG2 = 337
	timeSpacingUPG3 = 66

	patternCycle = 15 // length of the periodic TSMA pattern rotation
)

// Params carries the channel plan and pattern group of a PHY instance. ChanA,
// ChanB, Bc and Bc0 are transmitter register settings: the two channel
// frequencies, the carrier spacing step and the frequency offset step. Nco is
// the additional-frequency-offset parameter and must be 3 (crystal tolerance
// >= 10ppm) or 11 (< 10ppm).
type Params struct {
	ChanA uint32
	ChanB uint32
	Bc    uint32
	Bc0   uint32
	UPG   UPGMode
	Nco   uint8
}

// Predefined European channel plans. ParamsEU2 carries the deployed-gateway
// constants, which deviate from the v1.1.1 standard text (867.625MHz and
// 866.825MHz are the corrected frequencies); a node targeting the standard
// text supplies its own Params.
var (
	ParamsEU0 = Params{ChanA: 14224261, ChanB: 14224261, Bc: 39, Bc0: 39, UPG: UPG1, Nco: 3}
	ParamsEU1 = Params{ChanA: 14224261, ChanB: 14222623, Bc: 39, Bc0: 39, UPG: UPG1, Nco: 3}
	ParamsEU2 = Params{ChanA: 14215168, ChanB: 14202061, Bc: 468, Bc0: 39, UPG: UPG1, Nco: 3}
)

// LowLatency returns the same channel plan with the low-latency pattern
// group 3.
func (p Params) LowLatency() Params {
	p.UPG = UPG3
	return p
}

// Valid reports whether the channel plan is usable.
func (p Params) Valid() bool {
	return p.Bc != 0 && p.Bc0 != 0 && (p.Nco == 3 || p.Nco == 11) &&
		p.ChanA != 0 && p.ChanB != 0
}

// Phy implements the TS-UNB uplink physical layer: CRC protection, whitening,
// convolutional encoding, interleaving onto radio bursts, midamble insertion,
// MSK pre-coding and TSMA time/frequency pattern assignment. A Phy is
// stateless apart from its Params and may be used for any number of telegrams.
type Phy struct {
	Params
}

// NumRadioBursts returns the number of radio bursts for an MPDU of the given
// length, or 0 if the MPDU does not fit a telegram.
func (p *Phy) NumRadioBursts(mpduLen int) int {
	if mpduLen > maxPSDULength {
		return 0
	}
	if mpduLen < minPSDULength {
		return minPSDULength + phyOverhead
	}
	return mpduLen + phyOverhead
}

// Encode encodes the MPDU into the given radio bursts, which must number
// NumRadioBursts(len(mpdu)). It performs the complete PHY processing and
// annotates every burst with its carrier offset and inter-burst time
// according to the requested TSMA pattern (always pattern 0 for UPG3).
// It returns the transmit base frequency f_0 as a register setting, or 0 in
// case of error.
func (p *Phy) Encode(bursts []RadioBurst, mpdu []byte, pattern uint8, mmode uint8) uint32 {
	mpduLen := len(mpdu)
	if mpduLen > maxPSDULength {
		return 0
	}
	numBursts := p.NumRadioBursts(mpduLen)

	// Assemble the PHY payload: CRCs, PSI, MPDU, MMODE and stuffing.
	buf := make([]byte, numBursts)
	copy(buf[dataPos:], mpdu)
	buf[psiPos] = byte(mpduLen)

	// The MMODE is placed right after the MPDU for the payload CRC and moved
	// to the end of the stuffing afterwards if the PSDU is short.
	buf[dataPos+mpduLen] = (mmode & 0x03) << 6
	buf[payloadCrcPos] = crc8(buf[dataPos:], mpduLen*8+2)

	if mpduLen < minPSDULength {
		for i := mpduLen; i < minPSDULength; i++ {
			buf[dataPos+i] = 0
		}
		buf[dataPos+minPSDULength] = (mmode & 0x03) << 6
	}

	buf[headerCrcPos] = crc8(buf[payloadCrcPos:], 16)

	payloadCrc := buf[payloadCrcPos]
	lfsrSeed := 0x8000 | uint16(buf[headerCrcPos])<<8 | uint16(payloadCrc)

	whiten(buf)

	// The code termination relies on the six zero bits of the MMODE byte;
	// restore them after the whitening.
	buf[numBursts-1] &= 0xC0

	// Convolutional encoding and interleaving in a single pass. The
	// interleaver shifts the input by numBitsShift/3 bits, which is handled
	// as a cyclic read of the payload; preloading the register with the bits
	// preceding the first input turns this into a tail-biting code without
	// extra memory.
	payloadBits := numBursts * 8
	var convReg uint8
	for i := 0; i < 8; i++ {
		convReg <<= 1
		convReg |= bitbuf.Read(buf, payloadBits+i-(numBitsShift/3+8))
	}

	for inBit := 0; inBit < payloadBits; inBit++ {
		shiftBit := inBit - numBitsShift/3
		if shiftBit < 0 {
			shiftBit += payloadBits
		}
		convReg <<= 1
		convReg |= bitbuf.Read(buf, shiftBit)

		for k, poly := range [3]uint8{convPolyG1, convPolyG2, convPolyG3} {
			outBit := inBit*3 + k
			burstIdx := radioBurstIdx(outBit, numBursts)
			bursts[burstIdx].WriteSubPacketBit(parity(poly&convReg), burstIdx)
		}
	}

	for i := 0; i < numBursts; i++ {
		bursts[i].AddMidamble(i)
		bursts[i].DifferentialMSKEncode()
	}

	if p.UPG == UPG3 {
		p.addTsmaPattern(bursts[:numBursts], 0, lfsrSeed)
	} else {
		p.addTsmaPattern(bursts[:numBursts], pattern%numPatterns, lfsrSeed)
	}

	return p.freqReg(payloadCrc)
}

// crc8 computes the bit-accurate CRC-8 (poly 0x9B, init 0xFF, MSB first) over
// the first numBits bits of buf.
func crc8(buf []byte, numBits int) byte {
	reg := byte(crc8Init)
	for i := 0; i < numBits; i++ {
		msb := reg >> 7
		msb ^= bitbuf.Read(buf, i)
		reg <<= 1
		if msb != 0 {
			reg ^= crc8Poly
		}
	}
	return reg
}

// whiten xors the buffer with the stream of a 9-bit LFSR initialized to
// 0x1FF, one byte per 8 steps. Applying it twice restores the input.
func whiten(buf []byte) {
	reg := uint16(0x1FF)
	for i := range buf {
		for bit := 0; bit < 8; bit++ {
			reg <<= 1
			reg ^= 0x1 & (reg>>9 ^ reg>>4)
		}
		buf[i] ^= byte(reg)
	}
}

// parity returns the parity of reg.
func parity(reg uint8) byte {
	reg ^= reg >> 4
	reg ^= reg >> 2
	reg ^= reg >> 1
	return reg & 1
}

// tsmaLfsr advances the Galois LFSR that positions the extension bursts.
func tsmaLfsr(seed uint16) uint16 {
	lsb := seed & 1
	seed >>= 1
	if lsb != 0 {
		seed ^= extFramePoly
	}
	return seed
}

// radioBurstIdx maps coded output bit bitIdx to its radio burst. The first
// 288 bits cycle over the 24 core bursts; the remainder is distributed in
// groups over core and extension bursts.
func radioBurstIdx(bitIdx, numBursts int) int {
	if bitIdx < numBitsCoreIlv {
		return bitIdx % NumCoreBursts
	}
	groupIdx := bitIdx - numBitsCoreIlv
	groupLen := numBursts - NumCoreBursts>>1
	group := groupIdx / groupLen
	groupIdx -= group * groupLen

	if groupIdx < NumCoreBursts>>1 {
		return groupIdx<<1 + group&1
	}
	return groupIdx + NumCoreBursts>>1
}

// addTsmaPattern annotates the bursts with their carrier offsets C_RB and
// inter-burst times T_RB: table driven for the 24 core bursts, LFSR driven
// for the extension bursts.
func (p *Phy) addTsmaPattern(bursts []RadioBurst, pattern uint8, lfsrSeed uint16) {
	numBursts := len(bursts)

	for i := 0; i < NumCoreBursts; i++ {
		bursts[i].SetCarrierOffset(uint16(uint32(p.CRB(pattern, i)) * p.Bc))
		if i != NumCoreBursts-1 {
			bursts[i].SetTRB(p.TRB(pattern, i))
		}
	}

	spacing := uint16(timeSpacingUPG1)
	switch p.UPG {
	case UPG2:
		spacing = timeSpacingUPG2
	case UPG3:
		spacing = timeSpacingUPG3
	}

	for i := NumCoreBursts; i < numBursts; i++ {
		lfsrSeed = tsmaLfsr(lfsrSeed)
		bursts[i].SetCarrierOffset(uint16(uint32(lfsrSeed>>8) % 25 * p.Bc))
		bursts[i-1].SetTRB(spacing + lfsrSeed%128)
	}

	bursts[numBursts-1].SetTRB(0)
}

// freqReg calculates the transmit frequency register value for f_0. The
// channel and the additional frequency offset both derive from the payload
// CRC, spreading successive telegrams over the channel plan.
func (p *Phy) freqReg(payloadCrc byte) uint32 {
	fc := p.ChanA
	if payloadCrc&0x80 != 0 {
		fc = p.ChanB
	}
	vc0 := int32(payloadCrc & 0x7F)
	cRF := vc0%int32(p.Nco) - int32(p.Nco>>1)
	return uint32(int64(fc) - 12*int64(p.Bc) + int64(cRF)*int64(p.Bc0))
}

// EncodeSyncBurst encodes the optional pre-telegram sync burst announcing the
// TSMA pattern, the pattern group and the low byte of the short address.
func (p *Phy) EncodeSyncBurst(b *RadioBurst, pattern uint8, lsbShortAddr byte) {
	sync := [5]byte{0x33, 0x3D, 0x30 | pattern&0x07, lsbShortAddr, 0}
	switch p.UPG {
	case UPG2:
		sync[4] |= 0x40
	case UPG3:
		sync[4] |= 0x80
	}

	for i := 0; i < BurstPayloadLen; i++ {
		b.WriteBitIdx(bitbuf.Read(sync[:], i), i)
	}

	// CRC-2 over bits 20..33, placed at bits 34..35.
	reg := byte(crc2Init)
	for i := 20; i <= 33; i++ {
		msb := byte(0)
		if reg&0x03 != 0 {
			msb = 1
		}
		msb ^= bitbuf.Read(sync[:], i)
		reg <<= 1
		if msb != 0 {
			reg ^= crc2Poly
		}
	}
	b.WriteBitIdx(reg>>1&0x01, 34)
	b.WriteBitIdx(reg&0x01, 35)

	b.DifferentialMSKEncode()
	b.SetCarrierOffset(uint16(24 * p.Bc))
	if p.UPG == UPG3 {
		b.SetTRB(timeSpacingUPG3)
	} else {
		b.SetTRB(timeSpacingUPG1)
	}
}

// tsmaPatternOrder is the rotation of uplink TSMA patterns over 15
// consecutive telegrams.
var tsmaPatternOrder = [patternCycle]uint8{0, 1, 2, 3, 0, 1, 2, 3, 4, 0, 1, 2, 3, 4, 5}

// TsmaPattern returns the TSMA pattern to use for the given packet counter.
func (p *Phy) TsmaPattern(counter uint32) uint8 {
	return tsmaPatternOrder[counter%patternCycle]
}

// Copyright 2019 by Thorsten von Eicken, see LICENSE file

package tsunb

// TSMA uplink pattern tables according to 6.4.7.1.6.1 of the standard.
//
// The UPG1 and UPG2 time patterns repeat with period three: two fixed delays
// followed by a pattern-specific one, so only every third position is stored.

// crbUPG1 holds the carrier sequences of the TSMA uplink patterns of UPG1.
var crbUPG1 = [numPatterns][NumCoreBursts]uint8{
	{5, 21, 13, 6, 22, 14, 1, 17, 9, 0, 16, 8, 7, 23, 15, 4, 20, 12, 3, 19, 11, 2, 18, 10},
	{4, 20, 12, 1, 17, 9, 0, 16, 8, 6, 22, 14, 7, 23, 15, 2, 18, 10, 5, 21, 13, 3, 19, 11},
	{4, 20, 12, 3, 19, 11, 6, 22, 14, 7, 23, 15, 0, 16, 8, 5, 21, 13, 2, 18, 10, 1, 17, 9},
	{6, 22, 14, 2, 18, 10, 7, 23, 15, 0, 16, 8, 1, 17, 9, 4, 20, 12, 5, 21, 13, 3, 19, 11},
	{7, 23, 15, 4, 20, 12, 3, 19, 11, 2, 18, 10, 6, 22, 14, 0, 16, 8, 1, 17, 9, 5, 21, 13},
	{3, 19, 11, 6, 22, 14, 2, 18, 10, 0, 16, 8, 7, 23, 15, 1, 17, 9, 4, 20, 12, 5, 21, 13},
	{3, 19, 11, 1, 17, 9, 5, 21, 13, 7, 23, 15, 0, 16, 8, 2, 18, 10, 6, 22, 14, 4, 20, 12},
	{0, 16, 8, 6, 22, 14, 3, 19, 11, 2, 18, 10, 4, 20, 12, 7, 23, 15, 5, 21, 13, 1, 17, 9},
}

// crbUPG2 holds the carrier sequences of the TSMA uplink patterns of UPG2.
var crbUPG2 = [numPatterns][NumCoreBursts]uint8{
	{4, 20, 12, 0, 16, 8, 3, 19, 11, 5, 21, 13, 1, 17, 9, 7, 23, 15, 2, 18, 10, 6, 22, 14},
	{3, 19, 11, 7, 23, 15, 2, 18, 10, 5, 21, 13, 4, 20, 12, 0, 16, 8, 1, 17, 9, 6, 22, 14},
	{6, 22, 14, 0, 16, 8, 1, 17, 9, 4, 20, 12, 3, 19, 11, 5, 21, 13, 2, 18, 10, 7, 23, 15},
	{3, 19, 11, 1, 17, 9, 4, 20, 12, 5, 21, 13, 2, 18, 10, 7, 23, 15, 6, 22, 14, 0, 16, 8},
	{5, 21, 13, 2, 18, 10, 0, 16, 8, 6, 22, 14, 7, 23, 15, 1, 17, 9, 4, 20, 12, 3, 19, 11},
	{1, 17, 9, 3, 19, 11, 4, 20, 12, 6, 22, 14, 7, 23, 15, 5, 21, 13, 2, 18, 10, 0, 16, 8},
	{5, 21, 13, 1, 17, 9, 2, 18, 10, 4, 20, 12, 3, 19, 11, 0, 16, 8, 6, 22, 14, 7, 23, 15},
	{3, 19, 11, 6, 22, 14, 5, 21, 13, 1, 17, 9, 7, 23, 15, 2, 18, 10, 0, 16, 8, 4, 20, 12},
}

// crbUPG3 holds the single carrier sequence of UPG3.
var crbUPG3 = [NumCoreBursts]uint8{
	1, 5, 4, 3, 2, 17, 21, 20, 19, 18, 9, 13, 12, 11, 10, 6, 0, 7, 22, 16, 23, 14, 8, 15,
}

// trbUPG1 holds the pattern-specific delays at every third position of UPG1;
// the other positions are the fixed 330/387 pair.
var trbUPG1 = [numPatterns][(NumCoreBursts - 1) / 3]uint16{
	{388, 354, 356, 432, 352, 467, 620},
	{435, 409, 398, 370, 361, 472, 522},
	{356, 439, 413, 352, 485, 397, 444},
	{352, 382, 381, 365, 595, 604, 352},
	{380, 634, 360, 393, 352, 373, 490},
	{364, 375, 474, 355, 478, 464, 513},
	{472, 546, 501, 356, 359, 359, 364},
	{391, 468, 512, 543, 354, 391, 368},
}

// trbUPG2 holds the pattern-specific delays at every third position of UPG2;
// the other positions are the fixed 373/319 pair.
var trbUPG2 = [numPatterns][(NumCoreBursts - 1) / 3]uint16{
	{545, 443, 349, 454, 578, 436, 398},
	{371, 410, 363, 354, 379, 657, 376},
	{414, 502, 433, 540, 428, 467, 409},
	{396, 516, 631, 471, 457, 416, 354},
	{655, 416, 367, 400, 415, 342, 560},
	{370, 451, 465, 593, 545, 380, 365},
	{393, 374, 344, 353, 620, 503, 546},
	{367, 346, 584, 579, 519, 351, 486},
}

// trbUPG3 holds the complete delay sequence of UPG3.
var trbUPG3 = [NumCoreBursts - 1]uint16{
	66, 66, 66, 66, 66, 66, 66, 66, 66, 123, 66, 66, 66, 66, 60, 66, 66, 198, 66, 66, 255, 66, 66,
}

// CRB returns the carrier index of core burst burstIdx in the given TSMA
// pattern of this pattern group.
func (p *Phy) CRB(pattern uint8, burstIdx int) uint8 {
	switch p.UPG {
	case UPG2:
		return crbUPG2[pattern][burstIdx]
	case UPG3:
		return crbUPG3[burstIdx]
	default:
		return crbUPG1[pattern][burstIdx]
	}
}

// TRB returns the delay from core burst burstIdx to the following burst, in
// symbol periods, for the given TSMA pattern of this pattern group.
func (p *Phy) TRB(pattern uint8, burstIdx int) uint16 {
	if burstIdx >= NumCoreBursts-1 || pattern >= numPatterns {
		return 0
	}
	switch p.UPG {
	case UPG2:
		switch burstIdx % 3 {
		case 0:
			return 373
		case 1:
			return 319
		default:
			return trbUPG2[pattern][burstIdx/3]
		}
	case UPG3:
		return trbUPG3[burstIdx]
	default:
		switch burstIdx % 3 {
		case 0:
			return 330
		case 1:
			return 387
		default:
			return trbUPG1[pattern][burstIdx/3]
		}
	}
}

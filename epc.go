// Copyright 2019 by Thorsten von Eicken, see LICENSE file

package tsunb

import "github.com/tve/tsunb/host"

// The extended packet counter is persisted as its low three bytes, big
// endian, at this offset. 0xFFFFFF (erased storage) means uninitialized.
const (
	epcOffset   = 0
	epcSentinel = 0xFFFFFF
)

// InitExtPkgCnt loads the extended packet counter from persistent storage.
// Uninitialized storage yields 0; otherwise the persisted value is advanced
// by 0x100 to skip the window of packets that may have been sent since the
// last write, so the counter never repeats across power cycles. The result
// is written back immediately.
func InitExtPkgCnt(p host.Persistent) (uint32, error) {
	b, err := p.Load(epcOffset, 3)
	if err != nil {
		return 0, err
	}
	cnt := uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	if cnt == epcSentinel {
		cnt = 0
	} else {
		cnt += 0x100
	}
	cnt &= 0xFFFFFF

	if _, err := UpdateExtPkgCnt(p, cnt, true); err != nil {
		return 0, err
	}
	return cnt, nil
}

// UpdateExtPkgCnt writes the counter to persistent storage when its low byte
// rolls over to zero, or unconditionally if force is set. It reports whether
// a write happened.
func UpdateExtPkgCnt(p host.Persistent, cnt uint32, force bool) (bool, error) {
	if cnt&0xFF != 0 && !force {
		return false, nil
	}
	b := []byte{byte(cnt >> 16), byte(cnt >> 8), byte(cnt)}
	if err := p.Store(epcOffset, b); err != nil {
		return false, err
	}
	return true, nil
}

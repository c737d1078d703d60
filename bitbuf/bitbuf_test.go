// Copyright 2019 by Thorsten von Eicken, see LICENSE file

package bitbuf

import "testing"

var bittests = map[string]struct {
	buf  []byte
	idx  int
	want byte
}{
	"msb first":  {[]byte{0x80, 0x00}, 0, 1},
	"lsb byte 0": {[]byte{0x01, 0x00}, 7, 1},
	"msb byte 1": {[]byte{0x00, 0x80}, 8, 1},
	"clear":      {[]byte{0x7F, 0xFF}, 0, 0},
	"mid":        {[]byte{0x08, 0x00}, 4, 1},
}

func TestRead(t *testing.T) {
	for n, tc := range bittests {
		if got := Read(tc.buf, tc.idx); got != tc.want {
			t.Fatalf("Read %s: bit %d got %d expected %d", n, tc.idx, got, tc.want)
		}
	}
}

func TestWriteRead(t *testing.T) {
	buf := make([]byte, 4)
	for i := 0; i < 32; i += 3 {
		Write(buf, 1, i)
	}
	for i := 0; i < 32; i++ {
		want := byte(0)
		if i%3 == 0 {
			want = 1
		}
		if got := Read(buf, i); got != want {
			t.Fatalf("bit %d got %d expected %d", i, got, want)
		}
	}
	// Clearing must not disturb neighbors.
	Write(buf, 0, 0)
	if Read(buf, 0) != 0 || Read(buf, 3) != 1 {
		t.Fatalf("clearing bit 0 disturbed neighbors: %+v", buf)
	}
}

// Copyright 2019 by Thorsten von Eicken, see LICENSE file

package host

import "time"

// symbolRateBase is the TS-UNB symbol rate unit in Hz; the standard rates are
// multiples of it (48 for 2380.371 sym/s, 8 for 396.729 sym/s).
const symbolRateBase = 49.591064453125

// SymbolTimer produces symbol-accurate deadlines for the burst transmitter.
// Delays accumulate as an exact symbol count relative to Start so rounding
// never drifts across a telegram. The timer holds no global state; each
// transmission runs on its own instance or Start call.
type SymbolTimer struct {
	period  float64 // symbol period in seconds
	start   time.Time
	symbols int64 // symbols elapsed at the current deadline
}

// NewSymbolTimer returns a timer for the given symbol rate multiplier and
// crystal offset in ppm.
func NewSymbolTimer(rateMult int, ppmOffset int) *SymbolTimer {
	return &SymbolTimer{
		period: 1 / (symbolRateBase * float64(rateMult)) *
			(1 + 1e-6*float64(ppmOffset)),
	}
}

// Start resets the timer reference to now.
func (t *SymbolTimer) Start() {
	t.start = time.Now()
	t.symbols = 0
}

// AddDelay moves the deadline by the given number of symbol periods.
func (t *SymbolTimer) AddDelay(symbols int) {
	t.symbols += int64(symbols)
}

// Wait sleeps until the current deadline has passed.
func (t *SymbolTimer) Wait() {
	d := time.Duration(float64(t.symbols) * t.period * float64(time.Second))
	time.Sleep(time.Until(t.start.Add(d)))
}

package view

import "time"

// dwellTimer is a one-shot deferred callback driven by frame ticks instead of a goroutine, so it can only ever fire on
// the goroutine that owns the machine. A stopped timer never fires.
type dwellTimer struct {
	dwell   time.Duration
	elapsed time.Duration
	armed   bool
	fire    func()
}

func newDwellTimer(dwell time.Duration, fire func()) *dwellTimer {
	return &dwellTimer{dwell: dwell, fire: fire}
}

// arm (re)starts the countdown from zero.
func (t *dwellTimer) arm() {
	t.elapsed = 0
	t.armed = true
}

// stop cancels a pending fire.
func (t *dwellTimer) stop() {
	t.armed = false
}

// advance adds dt to the elapsed time and fires once the dwell is reached.
func (t *dwellTimer) advance(dt time.Duration) {
	if !t.armed {
		return
	}
	t.elapsed += dt
	if t.elapsed >= t.dwell {
		t.armed = false
		t.fire()
	}
}

// progress is the fraction of the dwell elapsed, in [0, 1].
func (t *dwellTimer) progress() float64 {
	if t.dwell <= 0 {
		return 1
	}
	p := float64(t.elapsed) / float64(t.dwell)
	if p > 1 {
		return 1
	}
	return p
}

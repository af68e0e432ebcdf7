package ratelimit

import (
	"time"

	"go.uber.org/atomic"
)

// PeriodSource yields the key of the current rate limiting period. Keys are
// monotonically non-decreasing.
type PeriodSource interface {
	Current() uint64
}

// WindowPeriods divides wall-clock time into fixed windows. The period key is
// the number of whole windows elapsed since the unix epoch.
type WindowPeriods struct {
	window time.Duration
	now    func() time.Time
}

var _ PeriodSource = (*WindowPeriods)(nil)

func NewWindowPeriods(window time.Duration) *WindowPeriods {
	return &WindowPeriods{
		window: window,
		now:    time.Now,
	}
}

func (w *WindowPeriods) Current() uint64 {
	return uint64(w.now().UnixNano() / int64(w.window))
}

// Window returns the duration of one period.
func (w *WindowPeriods) Window() time.Duration {
	return w.window
}

// ManualPeriods is a period source advanced explicitly by its owner.
type ManualPeriods struct {
	period *atomic.Uint64
}

var _ PeriodSource = (*ManualPeriods)(nil)

func NewManualPeriods(start uint64) *ManualPeriods {
	return &ManualPeriods{
		period: atomic.NewUint64(start),
	}
}

func (m *ManualPeriods) Current() uint64 {
	return m.period.Load()
}

// Advance moves to the next period and returns its key.
func (m *ManualPeriods) Advance() uint64 {
	return m.period.Inc()
}

// Set jumps to the given period. Setting a key lower than the current one
// is ignored.
func (m *ManualPeriods) Set(period uint64) {
	for {
		current := m.period.Load()
		if period <= current {
			return
		}
		if m.period.CAS(current, period) {
			return
		}
	}
}

// Package timegetter contains the [domain.TimeGetter] implementations used to
// time collection operations.
package timegetter

import (
	"sync"
	"time"

	"github.com/vinicius-lino-figueiredo/gedoc/domain"
)

// TimeGetter implements [domain.TimeGetter] with the wall clock.
type TimeGetter struct{}

// NewTimeGetter returns a new implementation of domain.TimeGetter.
func NewTimeGetter() domain.TimeGetter {
	return &TimeGetter{}
}

// GetTime implements [domain.TimeGetter].
func (t *TimeGetter) GetTime() time.Time {
	return time.Now()
}

// Stepper implements [domain.TimeGetter] with a clock that moves forward by a
// fixed step every time it is read.
type Stepper struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewStepper returns a clock starting at start.
func NewStepper(start time.Time, step time.Duration) *Stepper {
	return &Stepper{now: start, step: step}
}

// GetTime implements [domain.TimeGetter].
func (s *Stepper) GetTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.now
	s.now = s.now.Add(s.step)
	return res
}

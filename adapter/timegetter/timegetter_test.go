package timegetter

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type TimeGetterTestSuite struct {
	suite.Suite
	tg *TimeGetter
}

func (s *TimeGetterTestSuite) SetupTest() {
	s.tg = NewTimeGetter().(*TimeGetter)
}

func (s *TimeGetterTestSuite) TestGetTime() {
	before := time.Now()

	result := s.tg.GetTime()

	after := time.Now()

	s.NotZero(result)
	s.GreaterOrEqual(result, before)
	s.LessOrEqual(result, after)
}

// Concurrent readers never see the same reading twice.
func (s *TimeGetterTestSuite) TestStepperConcurrent() {
	st := NewStepper(time.Unix(0, 0), time.Second)

	var wg sync.WaitGroup
	readings := make(chan time.Time, 100)
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			readings <- st.GetTime()
		}()
	}
	wg.Wait()
	close(readings)

	seen := make(map[time.Time]struct{}, 100)
	for r := range readings {
		seen[r] = struct{}{}
	}
	s.Len(seen, 100)
	s.Equal(time.Unix(100, 0), st.GetTime())
}

// Every read returns the previous reading plus the step.
func (s *TimeGetterTestSuite) TestStepper() {
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	st := NewStepper(start, 250*time.Millisecond)

	s.Equal(start, st.GetTime())
	s.Equal(start.Add(250*time.Millisecond), st.GetTime())
	s.Equal(500*time.Millisecond, st.GetTime().Sub(start))
}

func TestTimeGetterTestSuite(t *testing.T) {
	suite.Run(t, new(TimeGetterTestSuite))
}

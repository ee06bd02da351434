package board

import "time"

// MaxElapsed is where the elapsed-seconds counter stops.
const MaxElapsed = 999

// Clock abstracts the wall clock for the stopwatch.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Stopwatch counts whole seconds between Start and Stop. It does not run on
// its own; the owner advances it with Tick from its frame loop.
type Stopwatch struct {
	started time.Time
	running bool
	seconds int
}

// Start begins counting from the current value. Starting a running
// stopwatch does nothing.
func (s *Stopwatch) Start(now time.Time) {
	if s.running {
		return
	}
	s.running = true
	s.started = now.Add(-time.Duration(s.seconds) * time.Second)
}

// Tick reports whether the seconds counter changed.
func (s *Stopwatch) Tick(now time.Time) bool {
	if !s.running {
		return false
	}
	n := int(now.Sub(s.started) / time.Second)
	if n > MaxElapsed {
		n = MaxElapsed
	}
	if n <= s.seconds {
		return false
	}
	s.seconds = n
	return true
}

// Stop takes a final reading and cancels further ticks.
func (s *Stopwatch) Stop(now time.Time) bool {
	changed := s.Tick(now)
	s.running = false
	return changed
}

func (s *Stopwatch) Reset() {
	*s = Stopwatch{}
}

func (s *Stopwatch) Running() bool { return s.running }

func (s *Stopwatch) Seconds() int { return s.seconds }

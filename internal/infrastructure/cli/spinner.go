package cli

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const spinnerLabel = "thinking..."

var spinnerFrames = [...]string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a progress indicator on w while the provider chain runs.
// Start and Stop are idempotent; Stop blocks until the line is cleared so the
// answer never interleaves with a half-drawn frame.
type Spinner struct {
	writer io.Writer

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewSpinner(w io.Writer) *Spinner {
	return &Spinner{writer: w}
}

func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.spin(s.stop, s.done)
}

func (s *Spinner) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (s *Spinner) spin(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		fmt.Fprintf(s.writer, "\r%s %s", spinnerFrames[frame%len(spinnerFrames)], spinnerLabel)
		select {
		case <-stop:
			fmt.Fprint(s.writer, "\r\033[K")
			return
		case <-ticker.C:
		}
	}
}

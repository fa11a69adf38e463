package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Spinner shows a progress indicator on stderr until stopped or its
// context is cancelled. It stays silent when stderr is not a terminal.
type Spinner struct {
	message string
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	started bool
	frames  []string
	out     io.Writer
	quiet   bool
	mu      sync.Mutex
}

func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		out:     os.Stderr,
		quiet:   !isTerminal(os.Stderr),
	}
}

// isTerminal reports whether f is an interactive terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Start begins the animation. Calling Start twice is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		i := 0
		for {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				if s.quiet {
					continue
				}
				frame := s.frames[i%len(s.frames)]
				s.mu.Lock()
				fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
				s.mu.Unlock()
				i++
			}
		}
	}()
}

// Stop halts the animation and clears the line. It is idempotent.
func (s *Spinner) Stop() {
	s.cancel()
	s.mu.Lock()
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	started := s.started
	s.mu.Unlock()
	if started {
		<-s.stopped
	}
	s.clearLine()
}

func (s *Spinner) clearLine() {
	if s.quiet {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}

func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the parent context ended before Stop.
func (s *Spinner) Cancelled() bool {
	select {
	case <-s.done:
		return false
	default:
	}
	return s.ctx.Err() != nil
}

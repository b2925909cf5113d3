package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Color codes for terminal output
const (
	ColorReset = "\033[0m"
	ColorRed   = "\033[31m"
	ColorGreen = "\033[32m"
	ColorCyan  = "\033[36m"
)

// WriteJSON pretty-prints v followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// IsTerminal reports whether f is a character device.
func IsTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// Spinner shows activity while a request is in flight. When disabled it
// prints nothing, so output stays clean when piped.
type Spinner struct {
	frames  []string
	label   string
	writer  io.Writer
	enabled bool

	mu     sync.Mutex
	active bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, label string, enabled bool) *Spinner {
	return &Spinner{
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		label:   label,
		writer:  w,
		enabled: enabled,
	}
}

// Start begins animating.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || s.active {
		return
	}
	s.active = true
	s.done = make(chan struct{})
	s.wg.Add(1)

	go func(done <-chan struct{}) {
		defer s.wg.Done()
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			case <-ticker.C:
				fmt.Fprintf(s.writer, "\r%s%s%s %s", ColorCyan, s.frames[i%len(s.frames)], ColorReset, s.label)
			}
		}
	}(s.done)
}

// Stop clears the spinner and prints a ✓ or ✗ line with message.
func (s *Spinner) Stop(ok bool, message string) {
	s.mu.Lock()
	wasActive := s.active
	if s.active {
		s.active = false
		close(s.done)
	}
	s.mu.Unlock()
	if !wasActive {
		return
	}
	s.wg.Wait()

	fmt.Fprint(s.writer, "\r"+strings.Repeat(" ", len(s.label)+4)+"\r")
	if ok {
		fmt.Fprintf(s.writer, "%s✓%s %s\n", ColorGreen, ColorReset, message)
	} else {
		fmt.Fprintf(s.writer, "%s✗%s %s\n", ColorRed, ColorReset, message)
	}
}

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = [...]string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a one-line status on w while a slow step runs. It stops
// on Stop or when its parent context ends, and erases itself either way.
type Spinner struct {
	w      io.Writer
	label  string
	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc

	wg   sync.WaitGroup
	once sync.Once

	mu    sync.Mutex
	drawn int // visible width of the last frame, 0 once erased
}

func newSpinner(w io.Writer, label string) *Spinner {
	return newSpinnerWithContext(context.Background(), w, label)
}

func newSpinnerWithContext(ctx context.Context, w io.Writer, label string) *Spinner {
	s := &Spinner{w: w, label: label, parent: ctx}
	s.ctx, s.cancel = context.WithCancel(ctx)
	return s
}

// Start draws frames in the background until the spinner stops.
func (s *Spinner) Start() {
	s.wg.Add(1)
	go s.run()
}

func (s *Spinner) run() {
	defer s.wg.Done()
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()

	for n := 0; ; n++ {
		select {
		case <-s.ctx.Done():
			s.erase()
			return
		case <-tick.C:
			s.draw(spinnerFrames[n%len(spinnerFrames)])
		}
	}
}

func (s *Spinner) draw(frame string) {
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.label)
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.w, "\r"+line)
	s.drawn = lipgloss.Width(line)
}

func (s *Spinner) erase() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn == 0 {
		return
	}
	fmt.Fprint(s.w, "\r"+strings.Repeat(" ", s.drawn)+"\r")
	s.drawn = 0
}

// Stop halts the animation and waits for the line to be erased. Calling it
// again, or without Start, does nothing.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		s.wg.Wait()
		s.erase()
	})
}

// StopWithSuccess stops the spinner and prints message as a success.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess(s.w, "%s", message)
}

// StopWithError stops the spinner and prints message as an error.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError(s.w, "%s", message)
}

// Cancelled reports whether the parent context ended, as opposed to a
// plain Stop.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}

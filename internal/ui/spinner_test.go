package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// capture returns a spinner whose output is collected for inspection.
func capture(label string) (*Spinner, func() string) {
	var buf strings.Builder
	var mu sync.Mutex

	s := NewSpinner(label, nil)
	s.SetOutput(func(str string) {
		mu.Lock()
		buf.WriteString(str)
		mu.Unlock()
	})
	return s, func() string {
		mu.Lock()
		defer mu.Unlock()
		return buf.String()
	}
}

func TestNewSpinner(t *testing.T) {
	s := NewSpinner("Testing", nil)
	assert.Equal(t, "Testing", s.Label())
	assert.Equal(t, SpinnerPending, s.State())
	assert.Zero(t, s.Elapsed())
}

func TestSpinnerStartStop(t *testing.T) {
	s, _ := capture("Test")

	s.Start()
	assert.Equal(t, SpinnerInProgress, s.State())
	time.Sleep(30 * time.Millisecond)
	s.Stop()

	assert.Equal(t, SpinnerInProgress, s.State())
}

func TestSpinnerFinalStates(t *testing.T) {
	tests := []struct {
		name   string
		finish func(*Spinner)
		state  SpinnerState
		symbol string
	}{
		{"success", (*Spinner).Success, SpinnerSuccess, SymbolSuccess},
		{"fail", (*Spinner).Fail, SpinnerFailed, SymbolFail},
		{"skip", (*Spinner).Skip, SpinnerSkipped, SymbolSkipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, out := capture("Generating key")
			s.Start()
			time.Sleep(10 * time.Millisecond)
			tt.finish(s)

			assert.Equal(t, tt.state, s.State())
			assert.Contains(t, out(), tt.symbol)
			assert.Contains(t, out(), "Generating key")
			assert.True(t, strings.HasSuffix(out(), "\n"))
		})
	}
}

func TestSpinnerFrames(t *testing.T) {
	assert.Equal(t, []string{"◐", "◓", "◑", "◒"}, spinnerFrames)
}

func TestSpinnerSetLabel(t *testing.T) {
	s := NewSpinner("Initial", nil)
	s.SetLabel("Updated")
	assert.Equal(t, "Updated", s.Label())
}

func TestSpinnerDoubleStartStop(t *testing.T) {
	s, _ := capture("Test")

	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("Work", &buf)
	s.Start()
	s.Success()

	assert.Contains(t, buf.String(), "Work")
}

func TestSpinnerElapsed(t *testing.T) {
	s, _ := capture("Test")
	s.Start()
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, s.Elapsed(), 20*time.Millisecond)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{50 * time.Millisecond, "0.05s"},
		{300 * time.Millisecond, "0.3s"},
		{1200 * time.Millisecond, "1.2s"},
		{10 * time.Second, "10.0s"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatDuration(tt.d))
		})
	}
}

package ui

import "strings"

// SparklineChars are the block characters used for the eight bar heights.
var SparklineChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline is a fixed-width ring buffer of samples rendered as bars,
// scaled to the largest sample currently in the window.
type Sparkline struct {
	samples []float64
	head    int
	count   int
}

// NewSparkline creates a sparkline holding width samples.
func NewSparkline(width int) *Sparkline {
	if width <= 0 {
		width = 60 // one minute at the default refresh
	}
	return &Sparkline{samples: make([]float64, width)}
}

// Add appends a sample, dropping the oldest once the window is full.
// Negative samples are stored as zero.
func (s *Sparkline) Add(value float64) {
	s.samples[s.head] = max(value, 0)
	s.head = (s.head + 1) % len(s.samples)
	s.count++
}

// Count returns the number of samples added.
func (s *Sparkline) Count() int {
	return s.count
}

// Last returns the most recent sample.
func (s *Sparkline) Last() float64 {
	if s.count == 0 {
		return 0
	}
	return s.samples[(s.head-1+len(s.samples))%len(s.samples)]
}

// Render returns the newest width samples, oldest on the left. Missing
// samples are padded with spaces on the right.
func (s *Sparkline) Render(width int) string {
	if width <= 0 || width > len(s.samples) {
		width = len(s.samples)
	}
	window := s.window(width)

	peak := 0.0
	for _, v := range window {
		peak = max(peak, v)
	}

	var sb strings.Builder
	sb.Grow(width * 3)
	for _, v := range window {
		idx := 0
		if peak > 0 {
			idx = int(v / peak * float64(len(SparklineChars)-1))
		}
		sb.WriteRune(SparklineChars[idx])
	}
	sb.WriteString(strings.Repeat(" ", width-len(window)))
	return sb.String()
}

// window returns up to n of the newest samples in chronological order.
func (s *Sparkline) window(n int) []float64 {
	n = min(n, s.count, len(s.samples))
	out := make([]float64, n)
	for i := range n {
		idx := (s.head - n + i + 2*len(s.samples)) % len(s.samples)
		out[i] = s.samples[idx]
	}
	return out
}

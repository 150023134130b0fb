package lane

// Windows is the set of accepted angle ranges.
type Windows []Window

// Accepts reports whether angle falls in any window.
func (ws Windows) Accepts(angle float64) bool {
	for _, w := range ws {
		if w.Contains(angle) {
			return true
		}
	}
	return false
}

// Candidates holds the lines that survived classification, split by side.
type Candidates struct {
	Left  []Line
	Right []Line
}

// Len returns the total number of candidates.
func (c Candidates) Len() int {
	return len(c.Left) + len(c.Right)
}

// Classify turns raw segments into lines anchored at their first endpoint
// and keeps the ones whose angle falls in a window. Segments outside every
// window are dropped for this frame.
func (ws Windows) Classify(segments []Segment) Candidates {
	lines := make([]Line, 0, len(segments))
	for _, s := range segments {
		lines = append(lines, Line{Angle: s.Angle(), AnchorX: s.X1, AnchorY: s.Y1})
	}
	return ws.Filter(lines)
}

// Filter keeps lines inside a window and buckets them by the sign of their
// angle. Filtering an already filtered set drops nothing.
func (ws Windows) Filter(lines []Line) Candidates {
	var c Candidates
	for _, l := range lines {
		if !ws.Accepts(l.Angle) {
			continue
		}
		switch l.Side() {
		case SideLeft:
			c.Left = append(c.Left, l)
		default:
			c.Right = append(c.Right, l)
		}
	}
	return c
}

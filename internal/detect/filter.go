// Package detect provides vehicle detections to the lane pipeline: a
// class/confidence filter and a replay source reading detections recorded
// by an external detector.
package detect

import (
	"strings"

	"lane-tracker/internal/vehicle"
)

// DefaultClasses are the COCO vehicle classes kept by default.
var DefaultClasses = []string{"car", "motorcycle", "bus", "truck"}

// DefaultMinConfidence is the default detection confidence threshold.
const DefaultMinConfidence = 0.5

// Filter drops detections that are not vehicles or are not confident enough.
type Filter struct {
	classes       map[string]bool
	minConfidence float64
}

// NewFilter creates a filter. Class names are matched case-insensitively.
// An empty class list keeps every class.
func NewFilter(classes []string, minConfidence float64) *Filter {
	f := &Filter{minConfidence: minConfidence}
	if len(classes) > 0 {
		f.classes = make(map[string]bool, len(classes))
		for _, c := range classes {
			f.classes[strings.ToLower(strings.TrimSpace(c))] = true
		}
	}
	return f
}

// DefaultFilter keeps cars, motorcycles, buses and trucks at 0.5 confidence.
func DefaultFilter() *Filter {
	return NewFilter(DefaultClasses, DefaultMinConfidence)
}

// Keep reports whether a box passes the filter.
func (f *Filter) Keep(b vehicle.Box) bool {
	if b.Confidence < f.minConfidence {
		return false
	}
	if f.classes == nil {
		return true
	}
	return f.classes[strings.ToLower(b.Class)]
}

// Apply returns the boxes that pass the filter, in order.
func (f *Filter) Apply(boxes []vehicle.Box) []vehicle.Box {
	out := make([]vehicle.Box, 0, len(boxes))
	for _, b := range boxes {
		if f.Keep(b) {
			out = append(out, b)
		}
	}
	return out
}

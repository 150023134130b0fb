package vision

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"lane-tracker/internal/lane"
	"lane-tracker/pkg/geometry"
)

// Finder turns a frame into lane segment candidates in frame coordinates.
type Finder struct {
	pre   *Preprocessor
	hough *HoughFinder
	log   logrus.FieldLogger
}

// NewFinder builds a preprocessor and Hough finder from params.
func NewFinder(params Params, log logrus.FieldLogger) (*Finder, error) {
	pre, err := NewPreprocessor(params.Edges, params.ROI, log)
	if err != nil {
		return nil, fmt.Errorf("invalid preprocessing params: %w", err)
	}
	hough, err := NewHoughFinder(params.Hough)
	if err != nil {
		return nil, fmt.Errorf("invalid hough params: %w", err)
	}
	return &Finder{pre: pre, hough: hough, log: log}, nil
}

// FindSegments preprocesses frame and returns its line segments. When the
// edge pass runs downscaled, coordinates are mapped back to full size.
func (f *Finder) FindSegments(frame gocv.Mat) ([]lane.Segment, error) {
	edges, err := f.pre.Preprocess(frame)
	defer edges.Close()
	if err != nil {
		return nil, err
	}

	segments, err := f.hough.FindSegments(edges)
	if err != nil {
		return nil, err
	}

	if scale := f.pre.Scale(); scale < 1 {
		for i := range segments {
			segments[i] = unscale(segments[i], scale)
		}
	}

	f.log.WithField("segments", len(segments)).Debug("Found line segments")
	return segments, nil
}

// InRegion reports whether pt of a width x height frame falls inside the
// region of interest.
func (f *Finder) InRegion(pt geometry.PointInt, width, height int) bool {
	return f.pre.InRegion(pt, width, height)
}

func unscale(s lane.Segment, scale float64) lane.Segment {
	up := func(v int) int { return int(float64(v) / scale) }
	return lane.Segment{X1: up(s.X1), Y1: up(s.Y1), X2: up(s.X2), Y2: up(s.Y2)}
}

// Package stream reads frames from a video source and runs them through a
// lane session one at a time.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"lane-tracker/internal/app"
	"lane-tracker/internal/detect"
	"lane-tracker/internal/lane"
	"lane-tracker/internal/vehicle"
)

// SegmentFinder extracts line segments from a frame.
type SegmentFinder interface {
	FindSegments(frame gocv.Mat) ([]lane.Segment, error)
}

// Detector returns the vehicles in a frame.
type Detector interface {
	Detect(ctx context.Context, index int, frame gocv.Mat) ([]vehicle.Box, error)
}

// FrameSource yields frames in order. *gocv.VideoCapture implements it.
type FrameSource interface {
	Read(m *gocv.Mat) bool
	Close() error
}

// Sink receives every frame result.
type Sink func(app.FrameResult) error

// ReplayDetector serves detections recorded ahead of time.
type ReplayDetector struct {
	Replay *detect.Replay
}

// Detect returns the recorded detections for index.
func (d ReplayDetector) Detect(_ context.Context, index int, _ gocv.Mat) ([]vehicle.Box, error) {
	return d.Replay.Detect(index), nil
}

// NoDetector reports no vehicles, for lane-only runs.
type NoDetector struct{}

// Detect always returns an empty slice.
func (NoDetector) Detect(context.Context, int, gocv.Mat) ([]vehicle.Box, error) {
	return []vehicle.Box{}, nil
}

// Options configures a run.
type Options struct {
	// Width and Height are the size frames are resized to. Zero keeps the
	// source size.
	Width  int
	Height int
	// MaxFrames stops the run early when positive.
	MaxFrames int
	// Filter, when set, is applied to every detector result.
	Filter *detect.Filter
}

// Runner drives one session from one source.
type Runner struct {
	finder   SegmentFinder
	detector Detector
	session  *app.Session
	opts     Options
	log      logrus.FieldLogger
}

// NewRunner creates a runner. A nil detector means no vehicles.
func NewRunner(finder SegmentFinder, detector Detector, session *app.Session, opts Options, log logrus.FieldLogger) *Runner {
	if detector == nil {
		detector = NoDetector{}
	}
	return &Runner{
		finder:   finder,
		detector: detector,
		session:  session,
		opts:     opts,
		log:      log.WithField("stream_id", session.ID()),
	}
}

// Open opens a video file for reading.
func Open(path string) (*gocv.VideoCapture, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video: %w", err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("failed to open video: %s", path)
	}
	return vc, nil
}

// Run processes frames until the source is exhausted, MaxFrames is
// reached or ctx is cancelled, and returns the number of frames processed.
// Detector failures are logged and the frame is processed without vehicles.
func (r *Runner) Run(ctx context.Context, src FrameSource, sink Sink) (int, error) {
	frame := gocv.NewMat()
	defer frame.Close()
	resized := gocv.NewMat()
	defer resized.Close()

	processed := 0
	for index := 0; r.opts.MaxFrames <= 0 || index < r.opts.MaxFrames; index++ {
		select {
		case <-ctx.Done():
			r.log.WithField("frames", processed).Info("Stream cancelled")
			return processed, ctx.Err()
		default:
		}

		if !src.Read(&frame) || frame.Empty() {
			break
		}

		work := frame
		if r.needsResize(frame) {
			gocv.Resize(frame, &resized, image.Pt(r.opts.Width, r.opts.Height), 0, 0, gocv.InterpolationLinear)
			work = resized
		}

		segments, err := r.finder.FindSegments(work)
		if err != nil {
			return processed, fmt.Errorf("frame %d: %w", index, err)
		}

		boxes, err := r.detector.Detect(ctx, index, work)
		if err != nil {
			r.log.WithError(err).WithField("frame", index).Warn("Vehicle detection failed")
			boxes = nil
		} else if r.opts.Filter != nil {
			boxes = r.opts.Filter.Apply(boxes)
		}

		result := r.session.Process(index, segments, boxes)
		processed++

		if sink != nil {
			if err := sink(result); err != nil {
				return processed, fmt.Errorf("failed to write frame %d: %w", index, err)
			}
		}
	}

	r.log.WithField("frames", processed).Info("Stream finished")
	return processed, nil
}

func (r *Runner) needsResize(frame gocv.Mat) bool {
	if r.opts.Width <= 0 || r.opts.Height <= 0 {
		return false
	}
	return frame.Cols() != r.opts.Width || frame.Rows() != r.opts.Height
}

// JSONLines returns a sink writing one JSON object per frame to w.
func JSONLines(w io.Writer) Sink {
	var mu sync.Mutex
	enc := json.NewEncoder(w)
	return func(res app.FrameResult) error {
		mu.Lock()
		defer mu.Unlock()
		return enc.Encode(res)
	}
}

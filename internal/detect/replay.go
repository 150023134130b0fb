package detect

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"lane-tracker/internal/vehicle"
)

// ErrMissingColumn is returned when a required CSV column is absent.
var ErrMissingColumn = errors.New("detect: missing column")

var requiredColumns = []string{"frame", "xmin", "ymin", "xmax", "ymax", "class", "confidence"}

// Replay serves detections recorded ahead of time, keyed by frame index.
type Replay struct {
	byFrame map[int][]vehicle.Box
	filter  *Filter
	total   int
	dropped int
}

// LoadReplay reads a CSV file of detections. See ReadReplay for the format.
func LoadReplay(path string, filter *Filter, log logrus.FieldLogger) (*Replay, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open detections file: %w", err)
	}
	defer file.Close()

	r, err := ReadReplay(file, filter, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// ReadReplay parses CSV detections with a header row naming at least the
// columns frame, xmin, ymin, xmax, ymax, class and confidence, in any
// order. Malformed rows are logged and skipped. The filter, when not nil,
// is applied while loading.
func ReadReplay(r io.Reader, filter *Filter, log logrus.FieldLogger) (*Replay, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colMap := make(map[string]int, len(header))
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colMap[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	rep := &Replay{byFrame: make(map[int][]vehicle.Box), filter: filter}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.WithError(err).WithField("line", line).Warn("Skipping unreadable detection row")
			continue
		}

		frame, box, err := parseRow(row, colMap)
		if err != nil {
			log.WithError(err).WithField("line", line).Warn("Skipping malformed detection row")
			continue
		}

		rep.total++
		if filter != nil && !filter.Keep(box) {
			rep.dropped++
			continue
		}
		rep.byFrame[frame] = append(rep.byFrame[frame], box)
	}

	log.WithFields(logrus.Fields{
		"detections": rep.total,
		"dropped":    rep.dropped,
		"frames":     len(rep.byFrame),
	}).Info("Loaded detection replay")

	return rep, nil
}

func parseRow(row []string, colMap map[string]int) (int, vehicle.Box, error) {
	field := func(name string) string {
		idx := colMap[name]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	frame, err := strconv.Atoi(field("frame"))
	if err != nil {
		return 0, vehicle.Box{}, fmt.Errorf("invalid frame: %w", err)
	}

	var coords [4]int
	for i, name := range []string{"xmin", "ymin", "xmax", "ymax"} {
		// Detectors often emit float pixel coordinates; truncate like the
		// detector's own integer conversion.
		v, err := strconv.ParseFloat(field(name), 64)
		if err != nil {
			return 0, vehicle.Box{}, fmt.Errorf("invalid %s: %w", name, err)
		}
		coords[i] = int(v)
	}

	conf, err := strconv.ParseFloat(field("confidence"), 64)
	if err != nil {
		return 0, vehicle.Box{}, fmt.Errorf("invalid confidence: %w", err)
	}
	if conf < 0 || conf > 1 {
		return 0, vehicle.Box{}, fmt.Errorf("confidence %.3f out of [0,1]", conf)
	}

	return frame, vehicle.Box{
		XMin:       coords[0],
		YMin:       coords[1],
		XMax:       coords[2],
		YMax:       coords[3],
		Class:      field("class"),
		Confidence: conf,
	}, nil
}

// Detect returns the detections recorded for a frame. Frames without
// detections return an empty slice.
func (r *Replay) Detect(frame int) []vehicle.Box {
	boxes := r.byFrame[frame]
	out := make([]vehicle.Box, len(boxes))
	copy(out, boxes)
	return out
}

// Frames returns how many frames have at least one detection.
func (r *Replay) Frames() int {
	return len(r.byFrame)
}

// Stats returns the number of parsed rows and how many the filter dropped.
func (r *Replay) Stats() (total, dropped int) {
	return r.total, r.dropped
}

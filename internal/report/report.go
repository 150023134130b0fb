// Package report renders charts of a processed stream: lane angles over
// time and vehicles per lane.
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"lane-tracker/internal/app"
	"lane-tracker/internal/vehicle"
	"lane-tracker/pkg/colorutil"
)

// ErrNoData is returned when there is nothing to chart.
var ErrNoData = errors.New("report: no data")

// Chart file names written by WriteAll.
const (
	AnglesFile    = "lane_angles.png"
	OccupancyFile = "lane_occupancy.png"
)

// AnglePoints splits a frame history into left and right angle series.
// Frames where a boundary was unknown are skipped.
func AnglePoints(history []app.FrameStat) (left, right plotter.XYs) {
	left = make(plotter.XYs, 0, len(history))
	right = make(plotter.XYs, 0, len(history))
	for _, fs := range history {
		if fs.LeftAngle != nil {
			left = append(left, plotter.XY{X: float64(fs.Frame), Y: *fs.LeftAngle})
		}
		if fs.RightAngle != nil {
			right = append(right, plotter.XY{X: float64(fs.Frame), Y: *fs.RightAngle})
		}
	}
	return left, right
}

// WriteAngleChart plots the left and right boundary angles per frame.
func WriteAngleChart(sum app.Summary, path string) error {
	left, right := AnglePoints(sum.History)
	if len(left) == 0 && len(right) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Lane angles (%d frames)", sum.Frames)
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Angle (deg)"
	p.Add(plotter.NewGrid())

	for _, series := range []struct {
		name string
		pts  plotter.XYs
	}{
		{"left", left},
		{"right", right},
	} {
		if len(series.pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(series.pts)
		if err != nil {
			return fmt.Errorf("failed to create %s line: %w", series.name, err)
		}
		line.Color = colorutil.ForSide(series.name)
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(series.name, line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	return p.Save(10*vg.Inch, 4*vg.Inch, path)
}

// WriteOccupancyChart plots how many vehicle sightings fell in each lane.
func WriteOccupancyChart(sum app.Summary, path string) error {
	lanes := sum.OccupiedLanes()
	if len(lanes) == 0 {
		return ErrNoData
	}

	values := make(plotter.Values, len(lanes))
	names := make([]string, len(lanes))
	for i, n := range lanes {
		values[i] = float64(sum.LaneOccupancy[n])
		if n == vehicle.NoLane {
			names[i] = "none"
		} else {
			names[i] = strconv.Itoa(n)
		}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Vehicles per lane (%d sightings)", sum.Vehicles)
	p.X.Label.Text = "Lane"
	p.Y.Label.Text = "Sightings"

	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return fmt.Errorf("failed to create bar chart: %w", err)
	}
	bars.Color = colorutil.Vehicle
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)

	return p.Save(5*vg.Inch, 4*vg.Inch, path)
}

// WriteAll writes every chart into dir and returns the files written.
// Charts without data are skipped.
func WriteAll(sum app.Summary, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	var written []string
	for _, chart := range []struct {
		file  string
		write func(app.Summary, string) error
	}{
		{AnglesFile, WriteAngleChart},
		{OccupancyFile, WriteOccupancyChart},
	} {
		path := filepath.Join(dir, chart.file)
		err := chart.write(sum, path)
		if errors.Is(err, ErrNoData) {
			continue
		}
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

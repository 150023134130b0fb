// Command lanetest runs lane detection on a single still image and prints
// the segments, lane boundaries and vehicle lanes it finds.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"lane-tracker/internal/config"
	"lane-tracker/internal/detect"
	"lane-tracker/internal/lane"
	"lane-tracker/internal/logging"
	"lane-tracker/internal/vehicle"
	"lane-tracker/internal/vision"
	"lane-tracker/pkg/geometry"
)

func main() {
	imagePath := flag.String("image", "", "Path to road image (PNG, JPEG or TIFF)")
	configPath := flag.String("config", "", "Path to JSON config file")
	detectionsPath := flag.String("detections", "", "Detections CSV to assign to lanes")
	frameIndex := flag.Int("frame", 0, "Frame index to take detections from")
	scale := flag.Float64("scale", 0, "Override edge pass scale (0 keeps config)")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: lanetest -image <path> [-config lanes.json] [-detections dets.csv -frame N] [-scale 0.5]")
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	params := cfg.VisionParams()
	if *scale > 0 {
		params = params.WithScale(*scale)
	}

	img, err := vision.LoadMat(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	defer img.Close()
	fmt.Printf("Loaded image: %dx%d pixels\n", img.Cols(), img.Rows())

	fmt.Printf("\nDetection parameters:\n")
	fmt.Printf("  Canny: %.0f/%.0f scale %.2f\n", params.Edges.Lower, params.Edges.Upper, params.Edges.Scale)
	fmt.Printf("  Hough: rho=%.1f theta=%.4f threshold=%d minLen=%.0f maxGap=%.0f\n",
		params.Hough.Rho, params.Hough.Theta, params.Hough.Threshold, params.Hough.MinLineLength, params.Hough.MaxLineGap)
	fmt.Printf("  Windows: %s\n", formatWindows(cfg.AngleWindows))

	log := logging.Discard()
	finder, err := vision.NewFinder(params, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid parameters: %v\n", err)
		os.Exit(1)
	}
	tracker, err := lane.NewTracker(cfg.LaneParams())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid lane parameters: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nFinding segments...\n")
	segments, err := finder.FindSegments(img)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Segment detection failed: %v\n", err)
		os.Exit(1)
	}

	windows := cfg.LaneParams().Windows
	fmt.Printf("\nFound %d segments:\n", len(segments))
	fmt.Printf("%6s %6s %6s %6s %8s %8s %6s\n", "X1", "Y1", "X2", "Y2", "Angle", "Norm", "Side")
	fmt.Println(strings.Repeat("-", 53))
	for _, s := range segments {
		side := "-"
		if a := s.Angle(); windows.Accepts(a) {
			side = lane.Line{Angle: a}.Side().String()
		}
		fmt.Printf("%6d %6d %6d %6d %8.2f %8.2f %6s\n",
			s.X1, s.Y1, s.X2, s.Y2, s.Angle(), geometry.NormalizeAngle(s.Angle()), side)
	}

	est, snap := tracker.Update(segments)
	fmt.Printf("\nCandidates: %d\n", est.Candidates)
	printLane("Left", snap.Left, img.Rows())
	printLane("Right", snap.Right, img.Rows())

	if *detectionsPath == "" {
		return
	}

	replay, err := detect.LoadReplay(*detectionsPath, cfg.Filter(), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load detections: %v\n", err)
		os.Exit(1)
	}
	total, dropped := replay.Stats()
	fmt.Printf("\nDetections: %d rows, %d dropped, %d frames\n", total, dropped, replay.Frames())

	assignments := vehicle.AssignSnapshot(replay.Detect(*frameIndex), snap)

	fmt.Printf("\nVehicles in frame %d:\n", *frameIndex)
	fmt.Printf("%-12s %8s %8s %5s %12s %6s\n", "Class", "X", "Y", "ROI", "Boundaries", "Lane")
	fmt.Println(strings.Repeat("-", 56))
	for _, a := range assignments {
		inROI := finder.InRegion(a.Ref.Point(), img.Cols(), img.Rows())
		fmt.Printf("%-12s %8d %8d %5t %12s %6s\n",
			a.Box.Class, a.Ref.X, a.Ref.Y, inROI, fmt.Sprint(a.Boundaries), laneLabel(a))
	}
	fmt.Printf("\nTotal: %d vehicles\n", len(assignments))
}

func printLane(name string, l *lane.Line, height int) {
	if l == nil {
		fmt.Printf("  %-5s none\n", name)
		return
	}
	bottom, mid := l.Endpoints(height)
	fmt.Printf("  %-5s %s  draw (%d,%d)-(%d,%d)\n", name, l, bottom.X, bottom.Y, mid.X, mid.Y)
}

func formatWindows(ws []lane.Window) string {
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = fmt.Sprintf("[%.0f, %.0f]", w.Min, w.Max)
	}
	return strings.Join(parts, " ")
}

func laneLabel(a vehicle.Assignment) string {
	if !a.HasLane() {
		return "?"
	}
	return fmt.Sprint(a.Lane)
}

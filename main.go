// Package main provides the entry point for the lane tracker: it reads a
// video, tracks the lane boundaries and assigns detected vehicles to lanes.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"

	"lane-tracker/internal/app"
	"lane-tracker/internal/config"
	"lane-tracker/internal/detect"
	"lane-tracker/internal/logging"
	"lane-tracker/internal/report"
	"lane-tracker/internal/stream"
	"lane-tracker/internal/version"
	"lane-tracker/internal/vision"
)

const appTitle = "Lane Tracker"

func main() {
	configPath := flag.String("config", "", "Path to JSON config file (defaults are used when empty)")
	envFile := flag.String("env", ".env", "Path to .env file with LANE_* overrides")
	videoPath := flag.String("video", "", "Path to input video (overrides config and LANE_VIDEO_PATH)")
	detectionsPath := flag.String("detections", "", "Path to detections CSV (frame,xmin,ymin,xmax,ymax,class,confidence)")
	outPath := flag.String("out", "-", "Where to write per-frame JSON lines; - for stdout, empty to disable")
	reportDir := flag.String("report", "", "Directory for summary charts (disabled when empty)")
	maxFrames := flag.Int("max-frames", 0, "Stop after this many frames (0 = whole video)")
	writeConfig := flag.String("write-config", "", "Write the effective config to this path and exit")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String(appTitle))
		return
	}

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load env file: %v\n", err)
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
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to apply environment: %v\n", err)
		os.Exit(1)
	}
	if *videoPath != "" {
		cfg.VideoPath = *videoPath
	}
	if *detectionsPath != "" {
		cfg.DetectionsPath = *detectionsPath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if *writeConfig != "" {
		if err := cfg.Save(*writeConfig); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote config to %s\n", *writeConfig)
		return
	}

	if cfg.VideoPath == "" {
		fmt.Println("Usage: lane-tracker -video <path> [-config lanes.json] [-detections dets.csv] [-out results.jsonl] [-report dir]")
		os.Exit(1)
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	log.WithFields(logrus.Fields{
		"version": version.Version,
		"commit":  version.GitCommit,
	}).Infof("Starting %s", appTitle)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *outPath, *reportDir, *maxFrames); err != nil {
		log.WithError(err).Error("Lane tracking failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger, outPath, reportDir string, maxFrames int) error {
	finder, err := vision.NewFinder(cfg.VisionParams(), log)
	if err != nil {
		return err
	}

	session, err := app.NewSession(cfg.LaneParams(), cfg.Frame.Height, log)
	if err != nil {
		return err
	}
	streamLog := logging.WithStream(log, session.ID())
	session.On(app.EventLaneExpired, func(data interface{}) {
		ev := data.(app.LaneEvent)
		streamLog.WithFields(logrus.Fields{"frame": ev.Frame, "side": ev.Side}).Warn("Lane boundary lost")
	})

	var detector stream.Detector
	if cfg.DetectionsPath != "" {
		replay, err := detect.LoadReplay(cfg.DetectionsPath, cfg.Filter(), streamLog)
		if err != nil {
			return err
		}
		detector = stream.ReplayDetector{Replay: replay}
	}

	src, err := stream.Open(cfg.VideoPath)
	if err != nil {
		return err
	}
	defer src.Close()

	sink, closeSink, err := openSink(outPath)
	if err != nil {
		return err
	}
	defer closeSink()

	runner := stream.NewRunner(finder, detector, session, stream.Options{
		Width:     cfg.Frame.Width,
		Height:    cfg.Frame.Height,
		MaxFrames: maxFrames,
		Filter:    cfg.Filter(),
	}, log)

	frames, err := runner.Run(ctx, src, sink)
	if err != nil && ctx.Err() == nil {
		return err
	}

	sum := session.Summary()
	streamLog.WithFields(logrus.Fields{
		"frames":       frames,
		"both_lanes":   sum.FramesBothLanes,
		"no_lanes":     sum.FramesNoLanes,
		"left_mean":    fmt.Sprintf("%.2f", sum.Left.Mean),
		"right_mean":   fmt.Sprintf("%.2f", sum.Right.Mean),
		"vehicles":     sum.Vehicles,
		"lane_density": sum.LaneOccupancy,
	}).Info("Stream summary")

	if reportDir != "" {
		files, err := report.WriteAll(sum, reportDir)
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		summaryPath := filepath.Join(reportDir, "summary.json")
		if err := writeJSON(summaryPath, sum); err != nil {
			return err
		}
		streamLog.WithField("files", append(files, summaryPath)).Info("Wrote report")
	}

	return nil
}

func openSink(path string) (stream.Sink, func(), error) {
	switch path {
	case "":
		return nil, func() {}, nil
	case "-":
		return stream.JSONLines(os.Stdout), func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return stream.JSONLines(f), func() { f.Close() }, nil
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

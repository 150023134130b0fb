// Package config loads and validates lane tracker settings from a JSON file,
// with environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"lane-tracker/internal/detect"
	"lane-tracker/internal/lane"
	"lane-tracker/internal/logging"
	"lane-tracker/internal/vision"
	"lane-tracker/pkg/geometry"
)

// Environment variables that override file settings.
const (
	EnvVideoPath      = "LANE_VIDEO_PATH"
	EnvDetectionsPath = "LANE_DETECTIONS_PATH"
	EnvMaxTTL         = "LANE_MAX_TTL"
	EnvMinConfidence  = "LANE_MIN_CONFIDENCE"
	EnvLogLevel       = "LANE_LOG_LEVEL"
	EnvLogFile        = "LANE_LOG_FILE"
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// FrameConfig is the size frames are resized to before processing.
type FrameConfig struct {
	Width  int `json:"width" validate:"gt=0"`
	Height int `json:"height" validate:"gt=0"`
}

// MemoryConfig configures lane persistence.
type MemoryConfig struct {
	MaxTTL int `json:"max_ttl" validate:"gte=0"`
}

// VehicleConfig configures which detections are kept.
type VehicleConfig struct {
	Classes       []string `json:"classes"`
	MinConfidence float64  `json:"min_confidence" validate:"gte=0,lte=1"`
}

// Config is the complete lane tracker configuration.
type Config struct {
	VideoPath      string              `json:"video_path,omitempty"`
	DetectionsPath string              `json:"detections_path,omitempty"`
	Frame          FrameConfig         `json:"frame"`
	Canny          vision.EdgeParams   `json:"canny"`
	ROI            []geometry.Fraction `json:"region_of_interest" validate:"len=4,dive"`
	Hough          vision.HoughParams  `json:"hough"`
	AngleWindows   []lane.Window       `json:"angle_windows" validate:"min=1"`
	Memory         MemoryConfig        `json:"memory"`
	Vehicles       VehicleConfig       `json:"vehicles"`
	Log            logging.Options     `json:"log"`
}

// Default returns the configuration for 1280x720 dashcam footage.
func Default() *Config {
	vp := vision.DefaultParams()
	lp := lane.DefaultParams()
	return &Config{
		Frame:        FrameConfig{Width: 1280, Height: 720},
		Canny:        vp.Edges,
		ROI:          vp.ROI,
		Hough:        vp.Hough,
		AngleWindows: append([]lane.Window(nil), lp.Windows...),
		Memory:       MemoryConfig{MaxTTL: lp.MaxTTL},
		Vehicles: VehicleConfig{
			Classes:       append([]string(nil), detect.DefaultClasses...),
			MinConfidence: detect.DefaultMinConfidence,
		},
		Log: logging.DefaultOptions(),
	}
}

// Load reads a JSON configuration file. Fields missing from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration as indented JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate runs struct tag validation, then the domain checks of the lane
// and vision packages.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if err := c.LaneParams().Validate(); err != nil {
		return err
	}
	return c.VisionParams().Validate()
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are ignored.
func LoadDotEnv(files ...string) error {
	var existing []string
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ReadDotEnv parses a .env file without touching the process environment.
func ReadDotEnv(path string) (map[string]string, error) {
	return godotenv.Read(path)
}

// ApplyEnv overrides settings from the environment. getenv is usually
// os.Getenv; empty values are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvVideoPath); v != "" {
		c.VideoPath = v
	}
	if v := getenv(EnvDetectionsPath); v != "" {
		c.DetectionsPath = v
	}
	if v := getenv(EnvMaxTTL); v != "" {
		ttl, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMaxTTL, err)
		}
		c.Memory.MaxTTL = ttl
	}
	if v := getenv(EnvMinConfidence); v != "" {
		conf, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMinConfidence, err)
		}
		c.Vehicles.MinConfidence = conf
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := getenv(EnvLogFile); v != "" {
		c.Log.File = v
	}
	return nil
}

// LaneParams returns the lane estimation parameters.
func (c *Config) LaneParams() lane.Params {
	return lane.DefaultParams().
		WithWindows(c.AngleWindows...).
		WithMaxTTL(c.Memory.MaxTTL)
}

// VisionParams returns the segment finding parameters.
func (c *Config) VisionParams() vision.Params {
	return vision.Params{
		Edges: c.Canny,
		ROI:   append([]geometry.Fraction(nil), c.ROI...),
		Hough: c.Hough,
	}
}

// Filter returns the detection filter.
func (c *Config) Filter() *detect.Filter {
	return detect.NewFilter(c.Vehicles.Classes, c.Vehicles.MinConfidence)
}

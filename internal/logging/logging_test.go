package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterLevel(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Level = "warn"
	opts.NoColors = true

	log, err := NewWithWriter(opts, &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	log.Info("hidden")
	log.WithField("frame", 7).Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "frame")
}

func TestNewInvalidLevel(t *testing.T) {
	opts := DefaultOptions()
	opts.Level = "loud"
	_, err := NewWithWriter(opts, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNewWritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "lane.log")
	opts := DefaultOptions()
	opts.File = file
	opts.NoColors = true

	log, err := NewWithWriter(opts, &bytes.Buffer{})
	require.NoError(t, err)
	WithStream(log, "abc").Info("to file")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
	assert.Contains(t, string(data), "abc")
}

func TestDiscard(t *testing.T) {
	log := Discard()
	assert.NotPanics(t, func() { log.Info("nothing") })
}

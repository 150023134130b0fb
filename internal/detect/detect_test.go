package detect

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lane-tracker/internal/vehicle"
)

func TestFilterKeep(t *testing.T) {
	f := DefaultFilter()

	tests := []struct {
		name string
		box  vehicle.Box
		want bool
	}{
		{"car", vehicle.Box{Class: "car", Confidence: 0.9}, true},
		{"truck at threshold", vehicle.Box{Class: "truck", Confidence: 0.5}, true},
		{"upper case class", vehicle.Box{Class: "Bus", Confidence: 0.7}, true},
		{"low confidence", vehicle.Box{Class: "car", Confidence: 0.49}, false},
		{"person", vehicle.Box{Class: "person", Confidence: 0.99}, false},
		{"empty class", vehicle.Box{Confidence: 0.99}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Keep(tt.box))
		})
	}
}

func TestFilterNoClasses(t *testing.T) {
	f := NewFilter(nil, 0.3)
	assert.True(t, f.Keep(vehicle.Box{Class: "person", Confidence: 0.3}))
	assert.False(t, f.Keep(vehicle.Box{Class: "person", Confidence: 0.2}))
}

func TestFilterApplyKeepsOrder(t *testing.T) {
	boxes := []vehicle.Box{
		{XMin: 1, Class: "car", Confidence: 0.9},
		{XMin: 2, Class: "dog", Confidence: 0.9},
		{XMin: 3, Class: "motorcycle", Confidence: 0.6},
	}
	got := DefaultFilter().Apply(boxes)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].XMin)
	assert.Equal(t, 3, got[1].XMin)
	assert.Len(t, boxes, 3)
}

const sampleCSV = `frame,xmin,ymin,xmax,ymax,class,confidence
0,10,20,50,80,car,0.91
0,100.7,20,150.2,80,truck,0.66
1,10,20,50,80,person,0.95
2,not-a-number,20,50,80,car,0.9
3,10,20,50,80,car,0.2
3,200,220,260,300,bus,0.8
`

func TestReadReplay(t *testing.T) {
	log, hook := test.NewNullLogger()

	rep, err := ReadReplay(strings.NewReader(sampleCSV), DefaultFilter(), log)
	require.NoError(t, err)

	frame0 := rep.Detect(0)
	require.Len(t, frame0, 2)
	assert.Equal(t, vehicle.Box{XMin: 10, YMin: 20, XMax: 50, YMax: 80, Class: "car", Confidence: 0.91}, frame0[0])
	assert.Equal(t, 100, frame0[1].XMin)
	assert.Equal(t, 150, frame0[1].XMax)

	assert.Empty(t, rep.Detect(1))
	assert.Empty(t, rep.Detect(2))
	assert.Len(t, rep.Detect(3), 1)
	assert.Empty(t, rep.Detect(99))
	assert.Equal(t, 2, rep.Frames())

	total, dropped := rep.Stats()
	assert.Equal(t, 5, total)
	assert.Equal(t, 2, dropped)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
			assert.Equal(t, 5, e.Data["line"])
		}
	}
	assert.True(t, warned, "malformed row should be logged")
}

func TestReadReplayColumnOrder(t *testing.T) {
	log, _ := test.NewNullLogger()
	csv := "class,confidence,frame,ymax,xmax,ymin,xmin\ncar,0.8,4,90,60,30,20\n"

	rep, err := ReadReplay(strings.NewReader(csv), nil, log)
	require.NoError(t, err)
	assert.Equal(t, []vehicle.Box{{XMin: 20, YMin: 30, XMax: 60, YMax: 90, Class: "car", Confidence: 0.8}}, rep.Detect(4))
}

func TestReadReplayMissingColumn(t *testing.T) {
	log, _ := test.NewNullLogger()
	_, err := ReadReplay(strings.NewReader("frame,xmin,ymin,xmax,ymax,class\n"), nil, log)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadReplayRejectsBadConfidence(t *testing.T) {
	log, _ := test.NewNullLogger()
	csv := "frame,xmin,ymin,xmax,ymax,class,confidence\n0,1,2,3,4,car,1.5\n"

	rep, err := ReadReplay(strings.NewReader(csv), nil, log)
	require.NoError(t, err)
	assert.Empty(t, rep.Detect(0))
}

func TestDetectReturnsCopy(t *testing.T) {
	log, _ := test.NewNullLogger()
	rep, err := ReadReplay(strings.NewReader(sampleCSV), nil, log)
	require.NoError(t, err)

	got := rep.Detect(0)
	got[0].XMin = -1
	assert.Equal(t, 10, rep.Detect(0)[0].XMin)
}

func TestLoadReplay(t *testing.T) {
	log, _ := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "detections.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	rep, err := LoadReplay(path, DefaultFilter(), log)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Frames())

	_, err = LoadReplay(filepath.Join(t.TempDir(), "missing.csv"), nil, log)
	assert.Error(t, err)
}

package vehicle

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lane-tracker/internal/lane"
)

// boxAt returns a 40x100 box whose reference point is (x, 180).
func boxAt(x int) Box {
	return Box{XMin: x - 20, YMin: 100, XMax: x + 20, YMax: 200, Class: "car", Confidence: 0.9}
}

func TestReference(t *testing.T) {
	tests := []struct {
		name string
		box  Box
		want Reference
	}{
		{"even", Box{XMin: 80, YMin: 100, XMax: 120, YMax: 200}, Reference{X: 100, Y: 180}},
		{"odd width floors", Box{XMin: 10, YMin: 0, XMax: 15, YMax: 10}, Reference{X: 12, Y: 8}},
		{"fraction truncates", Box{XMin: 0, YMin: 3, XMax: 4, YMax: 10}, Reference{X: 2, Y: 8}},
		{"degenerate", Box{XMin: 5, YMin: 5, XMax: 5, YMax: 5}, Reference{X: 5, Y: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.box.Reference())
		})
	}
}

func TestLanesFrom(t *testing.T) {
	l := lane.Line{Angle: -60, AnchorX: 100, AnchorY: 180}
	r := lane.Line{Angle: 60, AnchorX: 300, AnchorY: 180}

	assert.Equal(t, NoLanes{}, LanesFrom(lane.Snapshot{}))
	assert.Equal(t, OneLane{Line: l}, LanesFrom(lane.Snapshot{Left: &l}))
	assert.Equal(t, OneLane{Line: r}, LanesFrom(lane.Snapshot{Right: &r}))
	assert.Equal(t, TwoLanes{Left: l, Right: r}, LanesFrom(lane.Snapshot{Left: &l, Right: &r}))
	assert.Equal(t, 2, LanesFrom(lane.Snapshot{Left: &l, Right: &r}).Count())
}

func TestAssignNoLanes(t *testing.T) {
	got := Assign([]Box{boxAt(50), boxAt(200)}, NoLanes{})
	require.Len(t, got, 2)
	for _, a := range got {
		assert.Equal(t, NoLane, a.Lane)
		assert.False(t, a.HasLane())
		assert.Empty(t, a.Boundaries)
	}
}

func TestAssignOneLane(t *testing.T) {
	line := lane.Line{Angle: 45, AnchorX: 150, AnchorY: 180}
	got := Assign([]Box{boxAt(100), boxAt(200), boxAt(150)}, OneLane{Line: line})

	want := []Assignment{
		{Ref: Reference{100, 180}, Box: boxAt(100), Boundaries: []int{150}, Lane: 1},
		{Ref: Reference{200, 180}, Box: boxAt(200), Boundaries: []int{150}, Lane: 2},
		{Ref: Reference{150, 180}, Box: boxAt(150), Boundaries: []int{150}, Lane: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Assign mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignTwoLanes(t *testing.T) {
	lanes := TwoLanes{
		Left:  lane.Line{Angle: -60, AnchorX: 100, AnchorY: 180},
		Right: lane.Line{Angle: 60, AnchorX: 300, AnchorY: 180},
	}
	got := Assign([]Box{boxAt(50), boxAt(200), boxAt(350), boxAt(100), boxAt(300)}, lanes)

	want := []Assignment{
		{Ref: Reference{50, 180}, Box: boxAt(50), Boundaries: []int{100}, Lane: 1},
		{Ref: Reference{200, 180}, Box: boxAt(200), Boundaries: []int{100, 300}, Lane: 2},
		{Ref: Reference{350, 180}, Box: boxAt(350), Boundaries: []int{300}, Lane: 3},
		{Ref: Reference{100, 180}, Box: boxAt(100), Boundaries: []int{100, 300}, Lane: 2},
		{Ref: Reference{300, 180}, Box: boxAt(300), Boundaries: []int{300}, Lane: 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Assign mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignCrossedLanes(t *testing.T) {
	lanes := TwoLanes{
		Left:  lane.Line{Angle: -60, AnchorX: 300, AnchorY: 180},
		Right: lane.Line{Angle: 60, AnchorX: 100, AnchorY: 180},
	}
	got := Assign([]Box{boxAt(200), boxAt(350)}, lanes)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Lane)
	assert.Equal(t, []int{300}, got[0].Boundaries)
	assert.Equal(t, 3, got[1].Lane)
	assert.Equal(t, []int{100}, got[1].Boundaries)
}

func TestAssignSnapshotProjects(t *testing.T) {
	// The right boundary passes through (100,160) at 45°, so at y=180 it
	// sits at x=120.
	r := lane.Line{Angle: 45, AnchorX: 100, AnchorY: 160}
	got := AssignSnapshot([]Box{boxAt(90), boxAt(130)}, lane.Snapshot{Right: &r})
	require.Len(t, got, 2)
	assert.Equal(t, []int{120}, got[0].Boundaries)
	assert.Equal(t, 1, got[0].Lane)
	assert.Equal(t, 2, got[1].Lane)
}

func TestAssignEmpty(t *testing.T) {
	got := Assign(nil, NoLanes{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

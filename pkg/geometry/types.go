// Package geometry provides basic geometric types and primitives used by the
// lane and vehicle packages.
package geometry

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ToInt truncates both coordinates toward zero.
func (p Point2D) ToInt() PointInt {
	return PointInt{X: int(p.X), Y: int(p.Y)}
}

// PointInt represents a 2D point with integer (pixel) coordinates.
type PointInt struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Fraction is a point expressed relative to a frame, each coordinate in [0,1].
type Fraction struct {
	X float64 `json:"x" validate:"gte=0,lte=1"`
	Y float64 `json:"y" validate:"gte=0,lte=1"`
}

// Scale maps the fraction onto a frame of the given size.
func (f Fraction) Scale(width, height int) Point2D {
	return Point2D{X: f.X * float64(width), Y: f.Y * float64(height)}
}

// ScalePolygon maps every fraction onto a frame of the given size and
// truncates to pixel coordinates.
func ScalePolygon(fractions []Fraction, width, height int) []PointInt {
	pts := make([]PointInt, len(fractions))
	for i, f := range fractions {
		pts[i] = f.Scale(width, height).ToInt()
	}
	return pts
}

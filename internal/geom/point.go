package geom

// Point is a 2D point in document units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

package classify

import "github.com/okian/datastrike/internal/domain/model"

// Lane is a lateral pitch zone derived from the y coordinate.
type Lane string

// Lanes in pitch order.
const (
	LaneLeft    Lane = "left"
	LaneCentral Lane = "central"
	LaneRight   Lane = "right"
)

// Lane band boundaries on the 0-100 y axis. Intervals are half-open, so a
// value on a boundary belongs to the band on its right.
const (
	leftLaneMax    = 33.33
	centralLaneMax = 66.66
)

// Lanes lists every lane in pitch order.
var Lanes = []Lane{LaneLeft, LaneCentral, LaneRight}

// LaneOf maps a y coordinate to its lane.
func LaneOf(y float64) Lane {
	switch {
	case y < leftLaneMax:
		return LaneLeft
	case y < centralLaneMax:
		return LaneCentral
	default:
		return LaneRight
	}
}

// LaneOfRow returns the lane of a row, or false when y is missing or not
// numeric.
func LaneOfRow(r model.Row) (Lane, bool) {
	y, ok := r.Get(model.ColY).Float()
	if !ok {
		return "", false
	}
	return LaneOf(y), true
}

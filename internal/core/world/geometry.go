package world

import "math"

// Position is a cell on the integer grid.
type Position struct{ X, Y int }

func (p Position) Add(dx, dy int) Position { return Position{X: p.X + dx, Y: p.Y + dy} }

// DistSq is the squared Euclidean distance between two cells.
func DistSq(a, b Position) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	return dx*dx + dy*dy
}

// Dist is the Euclidean distance between two cells.
func Dist(a, b Position) float64 { return math.Sqrt(DistSq(a, b)) }

// MoveTowards picks the single step that closes the larger axis delta.
// Ties go to the vertical axis.
func MoveTowards(from, to Position) Action {
	dx := to.X - from.X
	dy := to.Y - from.Y
	if abs(dx) > abs(dy) {
		if dx > 0 {
			return MoveRight
		}
		return MoveLeft
	}
	if dy > 0 {
		return MoveUp
	}
	return MoveDown
}

// Inverse flips a move. Non-move actions are returned unchanged.
func Inverse(a Action) Action {
	switch a {
	case MoveLeft:
		return MoveRight
	case MoveRight:
		return MoveLeft
	case MoveUp:
		return MoveDown
	case MoveDown:
		return MoveUp
	default:
		return a
	}
}

// Step applies a move to a position. Non-move actions leave it unchanged.
func Step(p Position, a Action) Position {
	switch a {
	case MoveLeft:
		return p.Add(-1, 0)
	case MoveRight:
		return p.Add(1, 0)
	case MoveUp:
		return p.Add(0, 1)
	case MoveDown:
		return p.Add(0, -1)
	default:
		return p
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

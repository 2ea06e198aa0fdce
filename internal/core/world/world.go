package world

import "math"

// EntityID identifies anything that lives in the world. Zero means none.
type EntityID uint32

const NoEntity EntityID = 0

// Team groups agents; agents on different teams are opponents.
type Team int

// Kind tags non-agent entities for NearestOfKind lookups.
type Kind uint8

const (
	KindAgent Kind = iota
	KindWaypoint
	KindTreasure
	KindHeal
	KindPowerup
)

func (k Kind) String() string {
	switch k {
	case KindAgent:
		return "agent"
	case KindWaypoint:
		return "waypoint"
	case KindTreasure:
		return "treasure"
	case KindHeal:
		return "heal"
	case KindPowerup:
		return "powerup"
	default:
		return "unknown"
	}
}

// Action is the discrete per-turn choice of an agent.
type Action uint8

const (
	Nop Action = iota
	MoveLeft
	MoveRight
	MoveUp
	MoveDown
	HealSelf
	HealPlayer
)

// Moves lists the single-step move actions, used for random walks.
var Moves = [...]Action{MoveLeft, MoveRight, MoveUp, MoveDown}

// IsMove reports whether a is one of the four moves.
func (a Action) IsMove() bool { return a >= MoveLeft && a <= MoveDown }

func (a Action) String() string {
	switch a {
	case Nop:
		return "nop"
	case MoveLeft:
		return "move_left"
	case MoveRight:
		return "move_right"
	case MoveUp:
		return "move_up"
	case MoveDown:
		return "move_down"
	case HealSelf:
		return "heal_self"
	case HealPlayer:
		return "heal_player"
	default:
		return "unknown"
	}
}

// Intent is what an agent asks the world to do this turn.
type Intent struct {
	Action Action
	// Amount is used by heal actions; zero means the world default.
	Amount float64
}

// Unbounded disables the distance limit of nearest-* lookups.
var Unbounded = math.Inf(1)

// Sighting is the result of a nearest-* lookup.
type Sighting struct {
	ID   EntityID
	Pos  Position
	Dist float64
}

// Query is the read side of the world the decision engine consumes.
// Implementations must answer from one consistent snapshot for the whole pass.
type Query interface {
	// Agents lists alive agents in a stable order.
	Agents() []EntityID
	Alive(id EntityID) bool
	Position(id EntityID) (Position, bool)
	Team(id EntityID) Team
	Hitpoints(id EntityID) float64
	IsPlayer(id EntityID) bool
	HealCooldown(id EntityID) int
	// NextWaypoint follows the link of a waypoint entity.
	NextWaypoint(id EntityID) (EntityID, bool)

	// Nearest-* lookups use an inclusive distance limit (dist <= maxDist).
	NearestOpponent(self EntityID, maxDist float64) (Sighting, bool)
	NearestAlly(self EntityID, maxDist float64) (Sighting, bool)
	NearestPlayer(self EntityID) (Sighting, bool)
	NearestOfKind(self EntityID, kind Kind) (Sighting, bool)
}

// ActionSink receives the chosen intent of an agent. The last emit of a pass wins.
type ActionSink interface {
	Emit(id EntityID, intent Intent)
}

// IntentSet is a simple ActionSink keyed by agent.
type IntentSet map[EntityID]Intent

func (s IntentSet) Emit(id EntityID, intent Intent) { s[id] = intent }

package npc

import (
	"errors"
	"fmt"
)

// Status is the result of a node update. React may only return Success or Fail.
type Status int

const (
	Success Status = iota
	Fail
	Running
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Fail:
		return "fail"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ErrContractViolation marks a malformed tree: a Running result where it is
// forbidden. Nodes panic with an error wrapping it.
var ErrContractViolation = errors.New("npc: contract violation")

func violation(format string, args ...any) {
	panic(fmt.Errorf("%w: "+format, append([]any{ErrContractViolation}, args...)...))
}

// Event is an out-of-band notification delivered through React.
type Event uint8

const (
	EnemyIsNear Event = iota + 1
)

func (e Event) String() string {
	switch e {
	case EnemyIsNear:
		return "enemy_is_near"
	default:
		return fmt.Sprintf("event(%d)", uint8(e))
	}
}

// ParseEvent maps an event name onto an Event.
func ParseEvent(s string) (Event, error) {
	switch s {
	case "enemy_is_near", "ENEMY_IS_NEAR":
		return EnemyIsNear, nil
	default:
		return 0, fmt.Errorf("unknown event %q", s)
	}
}

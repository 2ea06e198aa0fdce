package arena

import "fmt"

// ActionLog keeps the last few notable events of the simulation.
type ActionLog struct {
	capacity int
	lines    []string
}

func NewActionLog(capacity int) *ActionLog {
	if capacity < 1 {
		capacity = 1
	}
	return &ActionLog{capacity: capacity, lines: make([]string, 0, capacity)}
}

func (l *ActionLog) Push(turn int, format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf("%d: ", turn)+fmt.Sprintf(format, args...))
	if len(l.lines) > l.capacity {
		l.lines = append(l.lines[:0], l.lines[len(l.lines)-l.capacity:]...)
	}
}

func (l *ActionLog) Lines() []string {
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

func (l *ActionLog) Len() int { return len(l.lines) }

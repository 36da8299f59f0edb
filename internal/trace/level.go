package trace

import (
	"fmt"
	"strings"
)

// Level is the finest scope a tracer records.
type Level uint8

const (
	LevelOff   Level = iota
	LevelUnit        // driver and unit spans
	LevelPhase       // plus resolver phases
	LevelNode        // plus per-declaration points
)

var levelNames = [...]string{"off", "unit", "phase", "node"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a level name. The empty string is off.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(s)
	if s == "" {
		return LevelOff, nil
	}
	for i, name := range levelNames {
		if s == name {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope are recorded at l.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelUnit:
		return scope <= ScopeUnit
	case LevelPhase:
		return scope <= ScopePhase
	case LevelNode:
		return scope <= ScopeNode
	default:
		return false
	}
}

package domain

import (
	"fmt"
	"strings"
)

// RemovalPolicy picks which node of a detected cycle the loop removes.
type RemovalPolicy string

const (
	// RemoveThird removes the element at index 2 and nothing when the cycle
	// has two nodes or fewer.
	RemoveThird RemovalPolicy = "third"
	// RemoveProgress removes index min(2, len-1), so every cycle shrinks the graph.
	RemoveProgress RemovalPolicy = "progress"
)

// ParseRemovalPolicy parses a config value. Empty means RemoveThird.
func ParseRemovalPolicy(s string) (RemovalPolicy, error) {
	switch RemovalPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", RemoveThird:
		return RemoveThird, nil
	case RemoveProgress:
		return RemoveProgress, nil
	default:
		return "", fmt.Errorf("unknown removal policy %q", s)
	}
}

// Victim returns the index of the cycle element to remove, or false when the
// policy leaves the graph untouched.
func (p RemovalPolicy) Victim(cycleLen int) (int, bool) {
	switch p {
	case RemoveProgress:
		if cycleLen == 0 {
			return 0, false
		}
		return min(2, cycleLen-1), true
	default:
		if cycleLen > 2 {
			return 2, true
		}
		return 0, false
	}
}

// StartMode controls which nodes the detector starts Bellman-Ford from.
type StartMode string

const (
	// StartFixed runs once from the configured start asset, falling back to
	// the first node.
	StartFixed StartMode = "fixed"
	// StartAll tries every node in insertion order until one finds a cycle.
	StartAll StartMode = "all"
)

// ParseStartMode parses a config value. Empty means StartFixed.
func ParseStartMode(s string) (StartMode, error) {
	switch StartMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", StartFixed:
		return StartFixed, nil
	case StartAll:
		return StartAll, nil
	default:
		return "", fmt.Errorf("unknown start mode %q", s)
	}
}

// StopReason says why the breaking loop ended.
type StopReason string

const (
	StopNoCycle        StopReason = "no_cycle"
	StopNotBreakable   StopReason = "cycle_not_breakable"
	StopIterationLimit StopReason = "iteration_limit"
	StopCancelled      StopReason = "cancelled"
)

func (r StopReason) String() string {
	return string(r)
}

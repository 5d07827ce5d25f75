// Package salbp models Simple Assembly Line Balancing (SALBP-1) puzzles:
// instances, a player's station assignment, the feasibility rules that guard
// it and the comparison against a precomputed reference solution.
package salbp

// DefaultCycleTime is used when an instance omits or garbles <cycle time>.
const DefaultCycleTime = 1000

// Task is a unit of work with a fixed duration.
type Task struct {
	ID       string `json:"id"`
	Duration int    `json:"duration"`
}

// Edge is a precedence relation: From must be assigned before To.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Station groups tasks whose total duration may not exceed the cycle time.
// Tasks are kept in insertion order.
type Station struct {
	ID    int      `json:"id"`
	Tasks []string `json:"tasks"`
}

// Instance is a parsed SALBP-1 problem. It is immutable once built.
type Instance struct {
	NumberOfTasks int    `json:"number_of_tasks"`
	CycleTime     int    `json:"cycle_time"`
	Tasks         []Task `json:"tasks"`
	Edges         []Edge `json:"edges"`

	durations map[string]int
	preds     map[string][]string
	succs     map[string][]string
}

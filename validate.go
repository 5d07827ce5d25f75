package salbp

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Rule names the feasibility rule a rejected action broke.
type Rule string

const (
	RuleAssigned        Rule = "assigned"
	RulePrecedence      Rule = "precedence"
	RuleCapacity        Rule = "capacity"
	RuleStationNotEmpty Rule = "station-not-empty"
)

// Violation is the expected, user-facing refusal of an action. It carries
// enough detail to render a precise message.
type Violation struct {
	Rule    Rule   `json:"rule"`
	Task    string `json:"task,omitempty"`
	Station int    `json:"station"`

	// RuleAssigned: station already holding the task.
	AssignedTo int `json:"assigned_to,omitempty"`

	// RulePrecedence: predecessors not yet assigned.
	Missing []string `json:"missing,omitempty"`

	// RuleCapacity: station load before the task, the task duration and the bound.
	Load      int `json:"load,omitempty"`
	Duration  int `json:"duration,omitempty"`
	CycleTime int `json:"cycle_time,omitempty"`

	// RuleStationNotEmpty: number of tasks still in the station.
	Remaining int `json:"remaining,omitempty"`
}

// Total is the load the station would reach with the task.
func (v *Violation) Total() int {
	return v.Load + v.Duration
}

func (v *Violation) Error() string {
	switch v.Rule {
	case RuleAssigned:
		return fmt.Sprintf("cannot assign task %s: already in station %d", v.Task, v.AssignedTo)
	case RulePrecedence:
		return fmt.Sprintf("cannot assign task %s: precedence not respected (waiting on %s)",
			v.Task, strings.Join(v.Missing, ", "))
	case RuleCapacity:
		return fmt.Sprintf("cannot add task %s: total (%d) exceeds cycle time (%d)",
			v.Task, v.Total(), v.CycleTime)
	case RuleStationNotEmpty:
		return fmt.Sprintf("cannot delete station %d: it still contains %d task(s)", v.Station, v.Remaining)
	}
	return fmt.Sprintf("rule %q violated", v.Rule)
}

// state is the data behind an Assignment. The checks below only read it.
type state struct {
	stations []Station
	assigned map[string]int // task id -> station id
}

func (st *state) station(id int) (int, bool) {
	for i := range st.stations {
		if st.stations[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// canAssign checks, in order, that the task is free, that its predecessors
// are all assigned and that the station has room for it. A load equal to the
// cycle time is allowed.
func canAssign(inst *Instance, st *state, task string, station int) (*Violation, error) {
	d, ok := inst.Duration(task)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTask, task)
	}
	i, ok := st.station(station)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStation, station)
	}

	if at, ok := st.assigned[task]; ok {
		return &Violation{Rule: RuleAssigned, Task: task, Station: station, AssignedTo: at}, nil
	}

	missing := lo.Filter(inst.Predecessors(task), func(p string, _ int) bool {
		_, ok := st.assigned[p]
		return !ok
	})
	if len(missing) > 0 {
		return &Violation{Rule: RulePrecedence, Task: task, Station: station, Missing: missing}, nil
	}

	load := inst.Load(st.stations[i].Tasks)
	if load+d > inst.CycleTime {
		return &Violation{
			Rule:      RuleCapacity,
			Task:      task,
			Station:   station,
			Load:      load,
			Duration:  d,
			CycleTime: inst.CycleTime,
		}, nil
	}
	return nil, nil
}

// canRemoveStation only allows removing empty stations; there is no
// cascading unassignment.
func canRemoveStation(st *state, station int) (*Violation, error) {
	i, ok := st.station(station)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStation, station)
	}
	if n := len(st.stations[i].Tasks); n > 0 {
		return &Violation{Rule: RuleStationNotEmpty, Station: station, Remaining: n}, nil
	}
	return nil, nil
}

// isFullyAssigned reports whether every task of the instance sits in a
// station. Only known tasks can be assigned, so this is set equality.
func isFullyAssigned(inst *Instance, st *state) bool {
	return lo.EveryBy(inst.Tasks, func(t Task) bool {
		_, ok := st.assigned[t.ID]
		return ok
	})
}

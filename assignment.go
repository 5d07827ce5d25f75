package salbp

import (
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Assignment is a player's mapping of tasks to stations for one Instance.
// Every mutator runs its check and its change under one lock, so two callers
// can never both pass a check against the same stale state.
type Assignment struct {
	mu   sync.Mutex
	inst *Instance
	st   state
}

// NewAssignment returns an empty assignment for inst.
func NewAssignment(inst *Instance) *Assignment {
	return &Assignment{
		inst: inst,
		st:   state{assigned: make(map[string]int)},
	}
}

// Instance returns the instance the assignment belongs to.
func (a *Assignment) Instance() *Instance {
	return a.inst
}

// AddStation appends an empty station and returns its id: one more than the
// highest id in use, or 1.
func (a *Assignment) AddStation() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := 1
	if len(a.st.stations) > 0 {
		id = lo.MaxBy(a.st.stations, func(x, y Station) bool { return x.ID > y.ID }).ID + 1
	}
	a.st.stations = append(a.st.stations, Station{ID: id, Tasks: []string{}})
	return id
}

// RemoveStation deletes an empty station. A non-empty station is refused
// with a RuleStationNotEmpty violation and nothing changes.
func (a *Assignment) RemoveStation(id int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	v, err := canRemoveStation(&a.st, id)
	if err != nil {
		return err
	}
	if v != nil {
		return v
	}
	i, _ := a.st.station(id)
	a.st.stations = slices.Delete(a.st.stations, i, i+1)
	return nil
}

// AssignTask appends task to a station. A refusal is returned as a
// *Violation and leaves the assignment unchanged.
func (a *Assignment) AssignTask(task string, station int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	v, err := canAssign(a.inst, &a.st, task, station)
	if err != nil {
		return err
	}
	if v != nil {
		return v
	}
	i, _ := a.st.station(station)
	a.st.stations[i].Tasks = append(a.st.stations[i].Tasks, task)
	a.st.assigned[task] = station
	return nil
}

// UnassignTask takes task out of a station. Successors already placed are
// not re-checked.
func (a *Assignment) UnassignTask(station int, task string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	i, ok := a.st.station(station)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownStation, station)
	}
	j := slices.Index(a.st.stations[i].Tasks, task)
	if j < 0 {
		return fmt.Errorf("%w: task %q, station %d", ErrNotInStation, task, station)
	}
	a.st.stations[i].Tasks = slices.Delete(a.st.stations[i].Tasks, j, j+1)
	delete(a.st.assigned, task)
	return nil
}

// Reset drops every station and every assignment in one step.
func (a *Assignment) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.st = state{assigned: make(map[string]int)}
}

// CanAssign reports whether task may go to station right now. A nil
// violation means yes.
func (a *Assignment) CanAssign(task string, station int) (*Violation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return canAssign(a.inst, &a.st, task, station)
}

// CanRemoveStation reports whether a station may be removed right now.
func (a *Assignment) CanRemoveStation(station int) (*Violation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return canRemoveStation(&a.st, station)
}

// IsFullyAssigned reports whether every task of the instance is placed.
func (a *Assignment) IsFullyAssigned() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return isFullyAssigned(a.inst, &a.st)
}

// Stations returns a copy of the stations in creation order.
func (a *Assignment) Stations() []Station {
	a.mu.Lock()
	defer a.mu.Unlock()

	return lo.Map(a.st.stations, func(s Station, _ int) Station {
		return Station{ID: s.ID, Tasks: slices.Clone(s.Tasks)}
	})
}

// StationOf returns the station holding task.
func (a *Assignment) StationOf(task string) (int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id, ok := a.st.assigned[task]
	return id, ok
}

// Assigned returns the ids of all placed tasks, sorted.
func (a *Assignment) Assigned() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	ids := lo.Keys(a.st.assigned)
	slices.Sort(ids)
	return ids
}

// Load returns the total duration of a station.
func (a *Assignment) Load(station int) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	i, ok := a.st.station(station)
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownStation, station)
	}
	return a.inst.Load(a.st.stations[i].Tasks), nil
}

package salbp

import "fmt"

// Replay rebuilds an Assignment from a list of stations, as a player would:
// one new station per entry, tasks placed in the listed order. The listed
// station ids are not kept. It stops at the first refusal and returns the
// assignment built so far along with it.
func Replay(inst *Instance, stations []Station) (*Assignment, error) {
	a := NewAssignment(inst)
	for _, s := range stations {
		id := a.AddStation()
		for _, task := range s.Tasks {
			if err := a.AssignTask(task, id); err != nil {
				return a, fmt.Errorf("station_%d: %w", s.ID, err)
			}
		}
	}
	return a, nil
}

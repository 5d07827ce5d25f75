package salbp

import "github.com/samber/lo"

// TaskView is a task as the graph renderer sees it.
type TaskView struct {
	ID       string `json:"id"`
	Duration int    `json:"duration"`
	Assigned bool   `json:"assigned"`
	Selected bool   `json:"selected"`
	Station  int    `json:"station,omitempty"`
}

// StationView is a station with its load against the cycle time.
type StationView struct {
	ID        int      `json:"id"`
	Tasks     []string `json:"tasks"`
	Load      int      `json:"load"`
	Remaining int      `json:"remaining"`
}

// Snapshot is a read-only copy of a session for rendering.
type Snapshot struct {
	Instance      string        `json:"instance"`
	CycleTime     int           `json:"cycle_time"`
	NumberOfTasks int           `json:"number_of_tasks"`
	Tasks         []TaskView    `json:"tasks"`
	Edges         []Edge        `json:"edges"`
	Dangling      []Edge        `json:"dangling,omitempty"`
	Stations      []StationView `json:"stations"`
	Selected      string        `json:"selected,omitempty"`
	FullyAssigned bool          `json:"fully_assigned"`
	Reference     []StationView `json:"reference,omitempty"`
	Verdict       *Verdict      `json:"verdict,omitempty"`
}

// Snapshot captures the current puzzle. With no puzzle loaded it returns
// ErrNoInstance.
func (g *Game) Snapshot() (Snapshot, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	p, err := g.current()
	if err != nil {
		return Snapshot{}, err
	}
	inst := p.inst
	stations := p.assign.Stations()

	snap := Snapshot{
		Instance:      p.name,
		CycleTime:     inst.CycleTime,
		NumberOfTasks: inst.NumberOfTasks,
		Edges:         inst.Edges,
		Dangling:      inst.Dangling(),
		Stations:      StationViews(inst, stations),
		Selected:      p.selected,
		FullyAssigned: p.assign.IsFullyAssigned(),
	}
	snap.Tasks = lo.Map(inst.Tasks, func(t Task, _ int) TaskView {
		at, ok := p.assign.StationOf(t.ID)
		return TaskView{
			ID:       t.ID,
			Duration: t.Duration,
			Assigned: ok,
			Selected: t.ID == p.selected,
			Station:  at,
		}
	})
	if p.reference != nil {
		snap.Reference = StationViews(inst, p.reference)
		v := Compare(stations, p.reference)
		snap.Verdict = &v
	}
	return snap, nil
}

// StationViews computes loads for stations against inst. Task ids outside
// the instance count as zero.
func StationViews(inst *Instance, stations []Station) []StationView {
	return lo.Map(stations, func(s Station, _ int) StationView {
		load := inst.Load(s.Tasks)
		return StationView{
			ID:        s.ID,
			Tasks:     s.Tasks,
			Load:      load,
			Remaining: inst.CycleTime - load,
		}
	})
}

package salbp

import (
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Section tags of the instance format.
const (
	tagNumberOfTasks = "<number of tasks>"
	tagCycleTime     = "<cycle time>"
	tagTaskTimes     = "<task times>"
	tagPrecedence    = "<precedence relations>"
	tagEnd           = "<end>"
)

// ParseInstance reads instance text. It never fails: malformed lines are
// skipped and missing sections yield empty collections, so a broken file
// degrades into an emptier Instance.
func ParseInstance(text string) *Instance {
	var (
		section   string
		awaiting  bool // next non-empty line is the value of a scalar tag
		nTasks    int
		cycleTime int
		tasks     []Task
		edges     []Edge
	)

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "<") {
			section = ""
			awaiting = false
			switch {
			case strings.HasPrefix(line, tagNumberOfTasks):
				section, awaiting = tagNumberOfTasks, true
				line = strings.TrimSpace(strings.TrimPrefix(line, tagNumberOfTasks))
			case strings.HasPrefix(line, tagCycleTime):
				section, awaiting = tagCycleTime, true
				line = strings.TrimSpace(strings.TrimPrefix(line, tagCycleTime))
			case line == tagTaskTimes:
				section = tagTaskTimes
			case line == tagPrecedence:
				section = tagPrecedence
			}
			// A value may share the tag's line, e.g. "<cycle time> 10".
			if !awaiting || line == "" {
				continue
			}
		}

		switch section {
		case tagNumberOfTasks, tagCycleTime:
			if !awaiting {
				continue
			}
			awaiting = false
			n, err := strconv.Atoi(strings.Fields(line)[0])
			if err != nil {
				continue
			}
			if section == tagNumberOfTasks {
				nTasks = n
			} else {
				cycleTime = n
			}
		case tagTaskTimes:
			if t, ok := parseTaskLine(line); ok {
				tasks = append(tasks, t)
			}
		case tagPrecedence:
			if e, ok := parseEdgeLine(line); ok {
				edges = append(edges, e)
			}
		}
	}

	if cycleTime <= 0 {
		cycleTime = DefaultCycleTime
	}
	inst := NewInstance(cycleTime, tasks, edges)
	inst.NumberOfTasks = nTasks
	return inst
}

// parseTaskLine reads "<id> <duration>".
func parseTaskLine(line string) (Task, bool) {
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return Task{}, false
	}
	d, err := strconv.Atoi(parts[1])
	if err != nil || d < 0 {
		return Task{}, false
	}
	return Task{ID: parts[0], Duration: d}, true
}

// parseEdgeLine reads "<pred>,<succ>".
func parseEdgeLine(line string) (Edge, bool) {
	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		return Edge{}, false
	}
	from, to := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if from == "" || to == "" {
		return Edge{}, false
	}
	return Edge{From: from, To: to}, true
}

// NewInstance builds an Instance from already-parsed parts. A repeated task
// id keeps its first position and its last duration; repeated edges are
// collapsed.
func NewInstance(cycleTime int, tasks []Task, edges []Edge) *Instance {
	inst := &Instance{
		CycleTime: cycleTime,
		Tasks:     []Task{},
		Edges:     []Edge{},
		durations: make(map[string]int),
		preds:     make(map[string][]string),
		succs:     make(map[string][]string),
	}

	pos := make(map[string]int)
	for _, t := range tasks {
		if i, ok := pos[t.ID]; ok {
			inst.Tasks[i].Duration = t.Duration
		} else {
			pos[t.ID] = len(inst.Tasks)
			inst.Tasks = append(inst.Tasks, t)
		}
		inst.durations[t.ID] = t.Duration
	}

	inst.Edges = lo.Uniq(edges)
	for _, e := range inst.Edges {
		inst.preds[e.To] = append(inst.preds[e.To], e.From)
		inst.succs[e.From] = append(inst.succs[e.From], e.To)
	}
	return inst
}

// HasTask reports whether id is part of the task set.
func (inst *Instance) HasTask(id string) bool {
	_, ok := inst.durations[id]
	return ok
}

// Duration returns the duration of a task.
func (inst *Instance) Duration(id string) (int, bool) {
	d, ok := inst.durations[id]
	return d, ok
}

// TaskIDs returns task ids in the order they were listed.
func (inst *Instance) TaskIDs() []string {
	return lo.Map(inst.Tasks, func(t Task, _ int) string { return t.ID })
}

// Predecessors returns every task that must be assigned before id.
func (inst *Instance) Predecessors(id string) []string {
	return slices.Clone(inst.preds[id])
}

// Successors returns every task that waits on id.
func (inst *Instance) Successors(id string) []string {
	return slices.Clone(inst.succs[id])
}

// Load sums the durations of tasks. Ids outside the task set count as zero.
func (inst *Instance) Load(tasks []string) int {
	return lo.SumBy(tasks, func(id string) int { return inst.durations[id] })
}

// Dangling returns edges naming a task id absent from the task set. A
// missing predecessor can never be assigned, so its successor can never be
// assigned either.
func (inst *Instance) Dangling() []Edge {
	return lo.Filter(inst.Edges, func(e Edge, _ int) bool {
		return !inst.HasTask(e.From) || !inst.HasTask(e.To)
	})
}

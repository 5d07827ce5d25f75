package salbp

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// puzzle is everything tied to one loaded instance. It is replaced as a
// whole, never patched, when the player moves to another instance.
type puzzle struct {
	name      string
	inst      *Instance
	assign    *Assignment
	selected  string
	reference []Station // nil until validated
}

// Game is a player's session: the current puzzle plus the pending task
// selection and the reference solution once it has been revealed.
type Game struct {
	mu  sync.RWMutex
	cur *puzzle
}

// NewGame returns a session with no puzzle loaded.
func NewGame() *Game {
	return &Game{}
}

// Load parses text and installs it as the current puzzle, discarding the
// previous instance, stations, selection and reference solution together.
func (g *Game) Load(name, text string) *Instance {
	inst := ParseInstance(text)
	p := &puzzle{name: name, inst: inst, assign: NewAssignment(inst)}

	g.mu.Lock()
	g.cur = p
	g.mu.Unlock()
	return inst
}

// Switch fetches an instance from the store and loads it. When the fetch
// fails the current puzzle is left untouched.
func (g *Game) Switch(ctx context.Context, store Store, name string) (*Instance, error) {
	text, err := store.GetInstance(ctx, name)
	if err != nil {
		return nil, err
	}
	return g.Load(name, text), nil
}

// SwitchRandom loads a random catalog instance other than the current one.
// A catalog holding only the current instance reloads it.
func (g *Game) SwitchRandom(ctx context.Context, store Store, rng *rand.Rand) (string, error) {
	names, err := store.ListInstances(ctx)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", ErrEmptyCatalog
	}

	current := g.Name()
	candidates := lo.Without(names, current)
	if len(candidates) == 0 {
		candidates = names
	}
	next := candidates[rng.IntN(len(candidates))]

	if _, err := g.Switch(ctx, store, next); err != nil {
		return "", err
	}
	return next, nil
}

// Name returns the catalog name of the current puzzle.
func (g *Game) Name() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.cur == nil {
		return ""
	}
	return g.cur.name
}

// Instance returns the current instance, or nil.
func (g *Game) Instance() *Instance {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.cur == nil {
		return nil
	}
	return g.cur.inst
}

// Assignment returns the current assignment, or nil.
func (g *Game) Assignment() *Assignment {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.cur == nil {
		return nil
	}
	return g.cur.assign
}

// current returns the loaded puzzle. Callers hold g.mu.
func (g *Game) current() (*puzzle, error) {
	if g.cur == nil {
		return nil, ErrNoInstance
	}
	return g.cur, nil
}

// Select marks an unassigned task as the one to place next.
func (g *Game) Select(task string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.current()
	if err != nil {
		return err
	}
	if !p.inst.HasTask(task) {
		return fmt.Errorf("%w: %q", ErrUnknownTask, task)
	}
	if at, ok := p.assign.StationOf(task); ok {
		return &Violation{Rule: RuleAssigned, Task: task, Station: at, AssignedTo: at}
	}
	p.selected = task
	return nil
}

// Selected returns the pending selection, or "".
func (g *Game) Selected() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.cur == nil {
		return ""
	}
	return g.cur.selected
}

// ClearSelection drops the pending selection.
func (g *Game) ClearSelection() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cur != nil {
		g.cur.selected = ""
	}
}

// AddStation appends an empty station to the current puzzle.
func (g *Game) AddStation() (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.current()
	if err != nil {
		return 0, err
	}
	return p.assign.AddStation(), nil
}

// RemoveStation deletes an empty station.
func (g *Game) RemoveStation(station int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.current()
	if err != nil {
		return err
	}
	return p.assign.RemoveStation(station)
}

// Assign places task in station and clears the selection on success.
func (g *Game) Assign(task string, station int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.current()
	if err != nil {
		return err
	}
	if err := p.assign.AssignTask(task, station); err != nil {
		return err
	}
	p.selected = ""
	return nil
}

// AssignSelected places the pending selection in station.
func (g *Game) AssignSelected(station int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.current()
	if err != nil {
		return err
	}
	if p.selected == "" {
		return ErrNotSelected
	}
	if err := p.assign.AssignTask(p.selected, station); err != nil {
		return err
	}
	p.selected = ""
	return nil
}

// Unassign takes task out of station.
func (g *Game) Unassign(station int, task string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.current()
	if err != nil {
		return err
	}
	return p.assign.UnassignTask(station, task)
}

// Reset clears every station, the selection and the revealed reference.
func (g *Game) Reset() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.current()
	if err != nil {
		return err
	}
	p.assign.Reset()
	p.selected = ""
	p.reference = nil
	return nil
}

// Validate reveals the reference solution and compares it with the player's
// stations. Every task must be assigned first. A failed fetch leaves the
// session as it was.
func (g *Game) Validate(ctx context.Context, store Store) (Verdict, error) {
	g.mu.RLock()
	p, err := g.current()
	g.mu.RUnlock()
	if err != nil {
		return Verdict{}, err
	}
	if !p.assign.IsFullyAssigned() {
		return Verdict{}, ErrIncomplete
	}

	text, err := store.GetSolution(ctx, p.name)
	if err != nil {
		return Verdict{}, err
	}
	ref := ParseSolution(text)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cur != p {
		// The puzzle changed while the solution was being fetched.
		return Verdict{}, fmt.Errorf("salbp: puzzle %q replaced during validation", p.name)
	}
	// Stations may have been emptied while the solution was being fetched.
	if !p.assign.IsFullyAssigned() {
		return Verdict{}, ErrIncomplete
	}
	p.reference = ref
	return Compare(p.assign.Stations(), ref), nil
}

// Reference returns the revealed reference solution, or nil.
func (g *Game) Reference() []Station {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.cur == nil {
		return nil
	}
	return slices.Clone(g.cur.reference)
}

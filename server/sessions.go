package main

import (
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"

	"github.com/meikuraledutech/salbp"
)

// sessions holds one Game per player, keyed by a random id.
type sessions struct {
	mu    sync.RWMutex
	games map[string]*salbp.Game

	// rng is shared by every session. Its source locks each draw.
	rng *rand.Rand
}

// lockedSource serializes access to a rand.Source, which is not safe for
// concurrent use.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (l *lockedSource) Uint64() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Uint64()
}

func newSessions(seed uint64) *sessions {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &sessions{
		games: make(map[string]*salbp.Game),
		rng:   rand.New(&lockedSource{src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)}),
	}
}

func (s *sessions) create(g *salbp.Game) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.games[id] = g
	s.mu.Unlock()
	return id
}

func (s *sessions) get(id string) (*salbp.Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	return g, ok
}

func (s *sessions) delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.games[id]
	delete(s.games, id)
	return ok
}

func (s *sessions) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

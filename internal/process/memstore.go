package process

import (
	"context"
	"fmt"
	"sync"
)

// MemStore implements Store in memory. Unlike a durable store it hands out
// live references: the workflow engine mutates an aggregate and saves it
// back within the enclosing use case. A mutex guards the maps themselves.
type MemStore struct {
	mu         sync.RWMutex
	processes  map[string]*Process
	subs       map[string]*Subprocess
	movements  map[string][]*Movement
	mapsByUnit map[int64]*MapArtifact
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		processes:  make(map[string]*Process),
		subs:       make(map[string]*Subprocess),
		movements:  make(map[string][]*Movement),
		mapsByUnit: make(map[int64]*MapArtifact),
	}
}

func (s *MemStore) SaveProcess(ctx context.Context, p *Process) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processes[p.Code] = p
	return nil
}

func (s *MemStore) ProcessByCode(ctx context.Context, code string) (*Process, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.processes[code]
	if !ok {
		return nil, fmt.Errorf("processo %s: %w", code, ErrNotFound)
	}
	return p, nil
}

func (s *MemStore) SaveSubprocess(ctx context.Context, sp *Subprocess) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sp.Code] = sp
	return nil
}

func (s *MemStore) SubprocessByCode(ctx context.Context, code string) (*Subprocess, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, ok := s.subs[code]
	if !ok {
		return nil, fmt.Errorf("subprocesso %s: %w", code, ErrNotFound)
	}
	return sp, nil
}

func (s *MemStore) SubprocessesByCodes(ctx context.Context, codes []string) ([]*Subprocess, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Subprocess, 0, len(codes))
	for _, code := range codes {
		sp, ok := s.subs[code]
		if !ok {
			return nil, fmt.Errorf("subprocesso %s: %w", code, ErrNotFound)
		}
		out = append(out, sp)
	}
	return out, nil
}

func (s *MemStore) SubprocessByProcessAndUnit(ctx context.Context, processCode string, unitCode int64) (*Subprocess, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sp := range s.subs {
		if sp.Process != nil && sp.Process.Code == processCode && sp.Unit != nil && sp.Unit.Code == unitCode {
			return sp, nil
		}
	}
	return nil, fmt.Errorf("subprocesso processo=%s unidade=%d: %w", processCode, unitCode, ErrNotFound)
}

func (s *MemStore) SubprocessesByProcess(ctx context.Context, processCode string) ([]*Subprocess, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Subprocess
	for _, sp := range s.subs {
		if sp.Process != nil && sp.Process.Code == processCode {
			out = append(out, sp)
		}
	}
	return out, nil
}

func (s *MemStore) AppendMovement(ctx context.Context, m *Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.movements[m.SubprocessCode] = append(s.movements[m.SubprocessCode], &cp)
	return nil
}

func (s *MemStore) MovementsBySubprocess(ctx context.Context, code string) ([]*Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.movements[code]
	out := make([]*Movement, len(src))
	for i, m := range src {
		cp := *m
		out[i] = &cp
	}
	return out, nil
}

func (s *MemStore) LatestMapByUnit(ctx context.Context, unitCode int64) (*MapArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.mapsByUnit[unitCode]
	if !ok {
		return nil, fmt.Errorf("mapa da unidade %d: %w", unitCode, ErrNotFound)
	}
	return m, nil
}

// SetLatestMap registers the unit's current map, normally done when a
// mapping process finishes. Exposed for seeding review/diagnosis scenarios.
func (s *MemStore) SetLatestMap(unitCode int64, m *MapArtifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mapsByUnit[unitCode] = m
}

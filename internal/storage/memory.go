package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/pauljones0/rental-board/internal/models"
)

// Memory is a process-local transition log used when no durable backend is configured.
type Memory struct {
	mu          sync.Mutex
	transitions []models.Transition
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Close() error { return nil }

func (m *Memory) RecordTransition(_ context.Context, t models.Transition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.transitions {
		if existing.ID == t.ID {
			return models.ErrTransitionExists
		}
	}
	m.transitions = append(m.transitions, t)
	return nil
}

func (m *Memory) RecentTransitions(_ context.Context, email string, limit int) ([]models.Transition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Transition, 0)
	for _, t := range m.transitions {
		if t.ManagerEmail == email {
			out = append(out, t)
		}
	}
	sortNewestFirst(out)
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) TrimOldTransitions(_ context.Context, maxTransitions int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.transitions) <= maxTransitions {
		return nil
	}
	sortNewestFirst(m.transitions)
	m.transitions = slices.Clone(m.transitions[:maxTransitions])
	return nil
}

func sortNewestFirst(ts []models.Transition) {
	slices.SortStableFunc(ts, func(a, b models.Transition) int {
		return b.RequestedAt.Compare(a.RequestedAt)
	})
}

package services

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/store"
)

type compensation struct {
	step string
	undo func(ctx context.Context, tx store.Store) error
}

// saga records how to undo each committed signup step.
type saga struct {
	steps []compensation
}

func (s *saga) push(step string, undo func(ctx context.Context, tx store.Store) error) {
	s.steps = append(s.steps, compensation{step: step, undo: undo})
}

// compensate undoes the recorded steps newest first, inside one atomic store
// operation so readers never observe a half rolled back signup.
func (s *saga) compensate(ctx context.Context, st store.Store) error {
	if len(s.steps) == 0 {
		return nil
	}
	return st.RunAtomic(ctx, func(tx store.Store) error {
		for i := len(s.steps) - 1; i >= 0; i-- {
			c := s.steps[i]
			if err := c.undo(ctx, tx); err != nil {
				return fmt.Errorf("compensate %s: %w", c.step, err)
			}
		}
		return nil
	})
}

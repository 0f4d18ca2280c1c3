// Package saga runs an ordered list of side-effecting steps and, when one of
// them fails, undoes the steps that already completed in reverse order.
package saga

import (
	"context"
	"errors"
	"fmt"

	"github.com/MalavS298/basiscpk/pkg/logger"
)

type Step struct {
	Name       string
	Do         func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

type Saga struct {
	name  string
	steps []Step
	log   logger.Logger
}

func New(name string, log logger.Logger) *Saga {
	return &Saga{name: name, log: log}
}

func (s *Saga) Add(step Step) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// StepError reports the step that failed. It unwraps to the step's own error
// so callers classify it exactly as if the step had been called directly.
type StepError struct {
	Saga          string
	Step          string
	Err           error
	Compensations []error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: step %s: %v", e.Saga, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Compensated reports whether every completed step was rolled back.
func (e *StepError) Compensated() bool {
	return len(e.Compensations) == 0
}

// Run executes the steps in order. Compensations run on a context detached
// from cancellation so a client disconnect cannot leave half a relay applied.
func (s *Saga) Run(ctx context.Context) error {
	log := s.log.WithContext(ctx).With("saga", s.name)

	for i, step := range s.steps {
		if err := step.Do(ctx); err != nil {
			log.Warn("saga: step failed", "step", step.Name, "error", err)
			stepErr := &StepError{Saga: s.name, Step: step.Name, Err: err}
			stepErr.Compensations = s.compensate(context.WithoutCancel(ctx), log, i)
			return stepErr
		}
		log.Debug("saga: step done", "step", step.Name)
	}
	return nil
}

func (s *Saga) compensate(ctx context.Context, log logger.Logger, failed int) []error {
	var errs []error
	for i := failed - 1; i >= 0; i-- {
		step := s.steps[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			log.Critical("saga: compensation failed, manual cleanup required", "step", step.Name, "error", err)
			errs = append(errs, fmt.Errorf("compensate %s: %w", step.Name, err))
			continue
		}
		log.Info("saga: step compensated", "step", step.Name)
	}
	return errs
}

// AsStepError is errors.As for *StepError.
func AsStepError(err error) (*StepError, bool) {
	var stepErr *StepError
	ok := errors.As(err, &stepErr)
	return stepErr, ok
}

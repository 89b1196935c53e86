// Package step drives a processing step over the systems of a sheet.
//
// A step runs its system work at most once per system and then a final
// step-level aggregation. Systems run either in their natural order, where the
// first failure aborts the run, or concurrently, where every system failure is
// logged and isolated from its siblings.
package step

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/OFFIS-RIT/scorelink/pkg/logger"
	"github.com/OFFIS-RIT/scorelink/pkg/sheet"

	"golang.org/x/sync/errgroup"
)

type Strategy string

const (
	StrategySerial   Strategy = "serial"
	StrategyParallel Strategy = "parallel"
)

var ErrUnknownStrategy = errors.New("unknown step strategy")

// ParseStrategy maps a configuration value to a Strategy. The empty string
// selects the serial strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategySerial:
		return StrategySerial, nil
	case StrategyParallel:
		return StrategyParallel, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// SystemWorker provides the work of a step.
type SystemWorker interface {
	// DoSystem processes one system. It is never called twice for a system
	// once that system is done.
	DoSystem(ctx context.Context, sys *sheet.System) error
	// DoFinal runs once all systems of a RunAll call have been processed.
	DoFinal(ctx context.Context) error
}

// NopFinal can be embedded by workers without a final step.
type NopFinal struct{}

func (NopFinal) DoFinal(context.Context) error { return nil }

type NewSystemTaskParams struct {
	Step        string
	Worker      SystemWorker
	Strategy    Strategy
	Parallelism int
}

// SystemTask tracks which systems are done for one step.
type SystemTask struct {
	step        string
	worker      SystemWorker
	strategy    Strategy
	parallelism int

	mu   sync.RWMutex
	done map[*sheet.System]struct{}
}

func NewSystemTask(params NewSystemTaskParams) *SystemTask {
	strategy := params.Strategy
	if strategy == "" {
		strategy = StrategySerial
	}
	parallelism := params.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	return &SystemTask{
		step:        params.Step,
		worker:      params.Worker,
		strategy:    strategy,
		parallelism: parallelism,
		done:        make(map[*sheet.System]struct{}),
	}
}

func (t *SystemTask) Step() string { return t.step }

func (t *SystemTask) Strategy() Strategy { return t.strategy }

// IsDone reports whether sys has been marked done.
func (t *SystemTask) IsDone(sys *sheet.System) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.done[sys]
	return ok
}

// MarkDone records sys as done. Repeated calls have no further effect.
func (t *SystemTask) MarkDone(sys *sheet.System) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done[sys] = struct{}{}
}

// EnsureDone runs the system work unless sys is already done. The system is
// marked done only when the work succeeds.
func (t *SystemTask) EnsureDone(ctx context.Context, sys *sheet.System) error {
	if t.IsDone(sys) {
		return nil
	}
	if err := t.worker.DoSystem(ctx, sys); err != nil {
		return fmt.Errorf("step %s system %d: %w", t.step, sys.ID, err)
	}
	t.MarkDone(sys)
	return nil
}

// Pending returns the systems of the list that are not done, in list order.
func (t *SystemTask) Pending(systems []*sheet.System) []*sheet.System {
	var out []*sheet.System
	for _, sys := range systems {
		if !t.IsDone(sys) {
			out = append(out, sys)
		}
	}
	return out
}

// RunAll processes every system not yet done with the configured strategy and
// then runs the final step.
func (t *SystemTask) RunAll(ctx context.Context, systems []*sheet.System) error {
	var err error
	switch t.strategy {
	case StrategyParallel:
		err = t.runParallel(ctx, systems)
	default:
		err = t.runSerial(ctx, systems)
	}
	if err != nil {
		return err
	}

	if err := t.worker.DoFinal(ctx); err != nil {
		return fmt.Errorf("step %s final: %w", t.step, err)
	}
	logger.Debug("[Step] Step finished", "step", t.step, "systems", len(systems))
	return nil
}

func (t *SystemTask) runSerial(ctx context.Context, systems []*sheet.System) error {
	for _, sys := range systems {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.EnsureDone(ctx, sys); err != nil {
			return err
		}
	}
	return nil
}

func (t *SystemTask) runParallel(ctx context.Context, systems []*sheet.System) error {
	var g errgroup.Group
	g.SetLimit(t.parallelism)

	for _, sys := range systems {
		s := sys
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return nil
			default:
				if err := t.ensureDoneSafe(ctx, s); err != nil {
					logger.Error("[Step] System failed", "step", t.step, "system", s.ID, "err", err)
				}
				return nil
			}
		})
	}

	_ = g.Wait()
	return ctx.Err()
}

func (t *SystemTask) ensureDoneSafe(ctx context.Context, sys *sheet.System) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step %s system %d: panic: %v", t.step, sys.ID, r)
		}
	}()
	return t.EnsureDone(ctx, sys)
}

package gan

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultLogInterval is the default number of iterations
// between status reports.
const DefaultLogInterval = 10

// Status describes the progress of a training run.
type Status struct {
	Iteration  int
	Iterations int
	Elapsed    time.Duration
	Losses     Losses
}

// String formats the status as a single console line.
func (s Status) String() string {
	return fmt.Sprintf("[%d/%d] (%s) Loss_Di: %.4f Loss_Dv: %.4f Loss_Gi: %.4f Loss_Gv: %.4f",
		s.Iteration, s.Iterations, FormatElapsed(s.Elapsed), s.Losses.Di(), s.Losses.Dv(),
		s.Losses.Gi, s.Losses.Gv)
}

// A Trainer runs an Engine for a fixed number of
// iterations.
type Trainer struct {
	Engine     *Engine
	Iterations int

	// LogInterval is the number of iterations between
	// calls to StatusFunc.
	// If it is 0, DefaultLogInterval is used.
	LogInterval int

	// StatusFunc, if non-nil, is called with the latest
	// status every LogInterval iterations.
	StatusFunc func(s Status)

	Logger *zap.Logger
}

// Run performs every iteration and returns the losses
// from the final one.
//
// The first error from the engine aborts the run.
func (t *Trainer) Run() (Losses, error) {
	logger := t.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := t.LogInterval
	if interval == 0 {
		interval = DefaultLogInterval
	}

	logger.Info("starting training", zap.Int("iterations", t.Iterations))
	start := time.Now()
	var losses Losses
	for i := 1; i <= t.Iterations; i++ {
		var err error
		losses, err = t.Engine.Step()
		if err != nil {
			logger.Error("training step failed", zap.Int("iteration", i), zap.Error(err))
			return losses, err
		}
		if i%interval == 0 && t.StatusFunc != nil {
			t.StatusFunc(Status{
				Iteration:  i,
				Iterations: t.Iterations,
				Elapsed:    time.Since(start),
				Losses:     losses,
			})
		}
	}
	logger.Info("finished training", zap.Duration("elapsed", time.Since(start)))
	return losses, nil
}

// FormatElapsed formats a duration as days, hours,
// minutes, and whole seconds, like "1d 2h 3m 4s".
func FormatElapsed(d time.Duration) string {
	secs := int64(d / time.Second)
	return fmt.Sprintf("%dd %dh %dm %ds", secs/86400, (secs/3600)%24, (secs/60)%60, secs%60)
}

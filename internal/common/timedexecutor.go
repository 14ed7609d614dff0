package common

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Give the timed executor a task and a timeout.
// Call the execute function from time to time.
// If the function gets called when the timeout has been reached,
// the provided task will execute. If not, the call will do nothing
type TimedExecutor struct {
	name      string
	stopwatch Stopwatch
	task      func()
}

// Create a timed executor provided a timeout and a task
func NewTimedExecutor(name string, timeout time.Duration, task func()) TimedExecutor {
	return TimedExecutor{name, NewStopwatch(timeout), task}
}

// Execute the task if the timeout has been reached, else do nothing
func (te *TimedExecutor) Execute() {
	if stopped, _ := te.stopwatch.Stopped(); stopped {
		log.Debug().Str("executor", te.name).Msg("Running timed task")
		te.stopwatch.Start()
		te.task()
	}
}

// Loop calls Execute on every executor once per cycle until the context is done
func Loop(ctx context.Context, cycle time.Duration, executors ...*TimedExecutor) {
	ticker := time.NewTicker(cycle)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Stopping main loop")
			return
		case <-ticker.C:
			for _, executor := range executors {
				executor.Execute()
			}
		}
	}
}

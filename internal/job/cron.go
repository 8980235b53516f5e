// Package job holds the periodic maintenance jobs and their cron wiring.
package job

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Entry pairs a cron spec with the job it triggers.
type Entry struct {
	Name string
	Spec string
	Job  cron.Job
}

// NewCron registers entries on a cron runner that logs through logger and
// skips a run while the previous one is still going. The runner is not
// started.
func NewCron(logger *zap.Logger, entries ...Entry) (*cron.Cron, error) {
	cl := cronLogger{logger.Sugar()}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	for _, e := range entries {
		if _, err := c.AddJob(e.Spec, e.Job); err != nil {
			return nil, fmt.Errorf("schedule %s job %q: %w", e.Name, e.Spec, err)
		}
		logger.Info("Job scheduled", zap.String("job", e.Name), zap.String("spec", e.Spec))
	}
	return c, nil
}

type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}

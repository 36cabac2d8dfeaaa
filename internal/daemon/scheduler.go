package daemon

import (
	"fmt"
	"log/slog"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/docserver/internal/logfields"
)

// Scheduler wraps gocron for the daemon's periodic jobs (reindex,
// content sync, session sweep). Jobs are registered before Start and
// run until Stop.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// NewScheduler creates an idle scheduler.
func NewScheduler(logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, logger: logger}, nil
}

// ScheduleCron registers task under a five-field cron expression.
func (s *Scheduler) ScheduleCron(name, expression string, task func()) error {
	job, err := s.scheduler.NewJob(
		gocron.CronJob(expression, false),
		gocron.NewTask(task),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, expression, err)
	}
	s.logger.Info("Job scheduled",
		logfields.Job(name),
		slog.String("schedule", expression),
		slog.String("job_id", job.ID().String()))
	return nil
}

// Jobs returns the names of all registered jobs.
func (s *Scheduler) Jobs() []string {
	jobs := s.scheduler.Jobs()
	names := make([]string, 0, len(jobs))
	for _, j := range jobs {
		names = append(names, j.Name())
	}
	return names
}

// Start begins executing registered jobs.
func (s *Scheduler) Start() {
	s.scheduler.Start()
	s.logger.Info("Scheduler started", logfields.Count(len(s.scheduler.Jobs())))
}

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

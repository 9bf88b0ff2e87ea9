// Package scheduler runs recurring operational jobs for Sharibot.
//
// Jobs are scheduled with 5-field cron expressions. The main recurring job is
// the closing-time analytics summary written to the log each night.
package scheduler

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/sharicrepas/sharibot/internal/analytics"
	"github.com/sharicrepas/sharibot/internal/bot"
)

// Scheduler provides cron-based job scheduling.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates and starts a cron scheduler.
func NewScheduler() *Scheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	c.Start()
	return &Scheduler{cron: c}
}

// AddJob schedules a task using the provided cron expression.
// It returns an error if the expression is invalid.
func (s *Scheduler) AddJob(expr string, task func()) error {
	_, err := s.cron.AddFunc(expr, task)
	if err != nil {
		return fmt.Errorf("failed to schedule job %q: %w", expr, err)
	}
	slog.Debug("Scheduled recurring job", "cron", expr)
	return nil
}

// ScheduleClosingReport logs a 7-day sales summary every night at closing
// time.
func (s *Scheduler) ScheduleClosingReport(analyzer *analytics.Analyzer) error {
	spec := fmt.Sprintf("0 %d * * *", bot.ClosingHour)
	return s.AddJob(spec, func() {
		report, err := analyzer.GenerateReport(7)
		if err != nil {
			slog.Error("Closing report failed", "error", err)
			return
		}
		topProduct := "n/a"
		if len(report.Products) > 0 {
			topProduct = report.Products[0].Product
		}
		slog.Info("Closing report",
			"days", report.Days,
			"products", len(report.Products),
			"categories", len(report.Categories),
			"top_product", topProduct)
	})
}

// Stop stops the cron scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

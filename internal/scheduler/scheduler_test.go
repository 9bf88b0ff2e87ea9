package scheduler

import (
	"testing"

	"github.com/sharicrepas/sharibot/internal/analytics"
	"github.com/sharicrepas/sharibot/internal/store"
)

func TestSchedulerAddJob(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()
	if err := s.AddJob("* * * * *", func() {}); err != nil {
		t.Errorf("Expected no error adding job, got %v", err)
	}
	if err := s.AddJob("not a cron spec", func() {}); err == nil {
		t.Error("Expected error for invalid cron expression")
	}
}

func TestScheduleClosingReport(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()
	analyzer := analytics.NewAnalyzer(analytics.WithStore(store.NewInMemoryStore()))
	if err := s.ScheduleClosingReport(analyzer); err != nil {
		t.Errorf("Expected closing report to schedule, got %v", err)
	}
}

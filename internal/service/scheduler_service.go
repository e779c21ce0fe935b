package service

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"weekly-planner/internal/config"
	"weekly-planner/internal/model"
)

// SchedulerService wraps cron-based jobs.
type SchedulerService struct {
	cron *cron.Cron
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	return &SchedulerService{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
	}
}

// ScheduleDaily registers a daily job at the given HH:MM time string.
func (s *SchedulerService) ScheduleDaily(timeStr string, job func()) (cron.EntryID, error) {
	spec, err := buildDailySpec(timeStr)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, job)
}

// ScheduleWeekly registers a job for a "Sunday 18:00" style time.
func (s *SchedulerService) ScheduleWeekly(weeklyTime string, job func()) (cron.EntryID, error) {
	spec, err := buildWeeklySpec(weeklyTime)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, job)
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Entries reports how many jobs are registered.
func (s *SchedulerService) Entries() int {
	return len(s.cron.Entries())
}

func buildDailySpec(timeStr string) (string, error) {
	hour, minute, err := config.ParseClock(timeStr)
	if err != nil {
		return "", err
	}
	// cron format: second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}

func buildWeeklySpec(weeklyTime string) (string, error) {
	day, hour, minute, err := config.ParseWeeklyTime(weeklyTime)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("0 %d %d * * %d", minute, hour, day.CronWeekday()), nil
}

// Today is the day label of now.
func Today(now time.Time) model.Day {
	return model.Weekday(now.Weekday())
}

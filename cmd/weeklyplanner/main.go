package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"weekly-planner/internal/bot"
	"weekly-planner/internal/config"
	"weekly-planner/internal/repository"
	"weekly-planner/internal/service"
)

const jobTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default $"+config.ConfigEnv+")")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	exportRepo := repository.NewExportRepository(db)

	services := bot.Services{
		Sessions: service.NewSessionService(cfg.Palette, cfg.ColorThreshold),
		Tasks:    service.NewTaskService(),
		Summary:  service.NewSummaryService(),
		Exports:  service.NewExportService(exportRepo, cfg.ExportKeep),
		PDF:      service.NewPDFService(),
	}

	telegramBot, err := bot.New(cfg.TelegramToken, userRepo, services, &cfg)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	scheduler := service.NewSchedulerService(loc)
	if cfg.AgendaTime != "" {
		if _, err := scheduler.ScheduleDaily(cfg.AgendaTime, job("agenda", telegramBot.SendDailyAgenda)); err != nil {
			log.Fatalf("schedule agenda: %v", err)
		}
	}
	if cfg.PlanningNudge != "" {
		if _, err := scheduler.ScheduleWeekly(cfg.PlanningNudge, job("planning nudge", telegramBot.SendPlanningNudge)); err != nil {
			log.Fatalf("schedule planning nudge: %v", err)
		}
	}
	if scheduler.Entries() > 0 {
		scheduler.Start()
		defer scheduler.Stop()
	}

	log.Println("Weekly planner bot started.")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}

func job(name string, run func(context.Context) error) func() {
	return func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := run(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("%s: %v", name, err)
		}
	}
}

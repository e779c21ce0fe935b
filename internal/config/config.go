package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"weekly-planner/internal/model"
)

// ConfigEnv names the environment variable holding the optional config file path.
const ConfigEnv = "PLANNER_CONFIG"

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken  string   `yaml:"telegram_token"`
	DatabaseURL    string   `yaml:"database_url"`
	OwnerID        int64    `yaml:"owner_id"`
	Timezone       string   `yaml:"timezone"`
	AgendaTime     string   `yaml:"agenda_time"`
	PlanningNudge  string   `yaml:"planning_nudge"`
	ColorThreshold float64  `yaml:"color_match_threshold"`
	Palette        []string `yaml:"color_palette"`
	ExportKeep     int      `yaml:"export_keep"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		DatabaseURL:    "weekly_planner.db",
		AgendaTime:     "08:00",
		PlanningNudge:  "Sunday 18:00",
		ColorThreshold: 0.6,
		ExportKeep:     10,
	}
}

// Load applies, in order, defaults, the YAML file at path (or $PLANNER_CONFIG)
// and environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = strings.TrimSpace(os.Getenv(ConfigEnv))
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")); v != "" {
		c.TelegramToken = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		c.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("TIMEZONE")); v != "" {
		c.Timezone = v
	}
	if v, ok := os.LookupEnv("AGENDA_TIME"); ok {
		c.AgendaTime = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv("PLANNING_NUDGE"); ok {
		c.PlanningNudge = strings.TrimSpace(v)
	}
	if v := strings.TrimSpace(os.Getenv("OWNER_ID")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("OWNER_ID must be a Telegram user id: %w", err)
		}
		c.OwnerID = id
	}
	if v := strings.TrimSpace(os.Getenv("COLOR_MATCH_THRESHOLD")); v != "" {
		threshold, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("COLOR_MATCH_THRESHOLD must be a number: %w", err)
		}
		c.ColorThreshold = threshold
	}
	if v := strings.TrimSpace(os.Getenv("COLOR_PALETTE")); v != "" {
		c.Palette = nil
		for _, color := range strings.Split(v, ",") {
			if color = strings.TrimSpace(color); color != "" {
				c.Palette = append(c.Palette, color)
			}
		}
	}
	if v := strings.TrimSpace(os.Getenv("EXPORT_KEEP")); v != "" {
		keep, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EXPORT_KEEP must be a number: %w", err)
		}
		c.ExportKeep = keep
	}
	return nil
}

// Validate checks value ranges and formats. It does not require a token.
func (c Config) Validate() error {
	if c.ColorThreshold <= 0 || c.ColorThreshold > 1 {
		return fmt.Errorf("color match threshold must be in (0, 1], got %v", c.ColorThreshold)
	}
	for _, color := range c.Palette {
		if !isHexColor(color) {
			return fmt.Errorf("palette color %q must look like #4682b4", color)
		}
	}
	if c.AgendaTime != "" {
		if _, _, err := ParseClock(c.AgendaTime); err != nil {
			return fmt.Errorf("agenda time: %w", err)
		}
	}
	if c.PlanningNudge != "" {
		if _, _, _, err := ParseWeeklyTime(c.PlanningNudge); err != nil {
			return fmt.Errorf("planning nudge: %w", err)
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.ExportKeep < 0 {
		return fmt.Errorf("export keep must not be negative")
	}
	return nil
}

// Location resolves Timezone, defaulting to the local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ParseClock parses HH:MM.
func ParseClock(raw string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", raw)
	}
	return hour, minute, nil
}

// ParseWeeklyTime parses "<day> HH:MM", e.g. "Sunday 18:00".
func ParseWeeklyTime(raw string) (model.Day, int, int, error) {
	fields := strings.Fields(raw)
	if len(fields) != 2 {
		return 0, 0, 0, fmt.Errorf("invalid weekly time %q, expected \"Sunday 18:00\"", raw)
	}
	day, err := model.ParseDay(fields[0])
	if err != nil {
		return 0, 0, 0, err
	}
	hour, minute, err := ParseClock(fields[1])
	if err != nil {
		return 0, 0, 0, err
	}
	return day, hour, minute, nil
}

func isHexColor(raw string) bool {
	value := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if len(value) != 6 {
		return false
	}
	_, err := strconv.ParseUint(value, 16, 32)
	return err == nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	yaml "gopkg.in/yaml.v3"
)

// relative to the XDG config directories
const cfgFile = "darkchess/config.yaml"

type AppConfig struct {
	InitialClock time.Duration
	Promotion    string

	WhiteName string
	BlackName string
	Site      string

	ExportDir        string
	MoveLogDir       string
	ExportBoardImage bool

	FrameInterval time.Duration
	MessagesDir   string

	RedisURL    string
	ArchiveTTL  time.Duration
	DatabaseURL string

	// path of the file that was read, empty when none
	Source string
}

// fileConfig mirrors the YAML layout. Durations accept "90s" style strings or plain seconds.
type fileConfig struct {
	Clock struct {
		Initial   string `yaml:"initial"`
		Promotion string `yaml:"promotion"`
	} `yaml:"clock"`
	Players struct {
		White string `yaml:"white"`
		Black string `yaml:"black"`
		Site  string `yaml:"site"`
	} `yaml:"players"`
	Export struct {
		Dir        string `yaml:"dir"`
		LogDir     string `yaml:"log_dir"`
		BoardImage *bool  `yaml:"board_image"`
	} `yaml:"export"`
	UI struct {
		FrameInterval string `yaml:"frame_interval"`
		MessagesDir   string `yaml:"messages_dir"`
	} `yaml:"ui"`
	Archive struct {
		RedisURL    string `yaml:"redis_url"`
		TTL         string `yaml:"ttl"`
		DatabaseURL string `yaml:"database_url"`
	} `yaml:"archive"`
}

func defaults() *AppConfig {
	return &AppConfig{
		InitialClock:  10 * time.Minute,
		Promotion:     "q",
		WhiteName:     "White",
		BlackName:     "Black",
		Site:          "Local",
		ExportDir:     ".",
		MoveLogDir:    "game_logs",
		FrameInterval: time.Second / 60,
		ArchiveTTL:    30 * 24 * time.Hour,
	}
}

// Load builds the configuration from defaults, the optional YAML file
// (DARKCHESS_CONFIG, else darkchess/config.yaml in the XDG config dirs) and
// environment variables, in that order.
func Load() (*AppConfig, error) {
	cfg := defaults()

	path := strings.TrimSpace(os.Getenv("DARKCHESS_CONFIG"))
	if path == "" {
		if found, err := xdg.SearchConfigFile(cfgFile); err == nil {
			path = found
		}
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.Source = path

	if err := setDuration(&c.InitialClock, fc.Clock.Initial, "clock.initial"); err != nil {
		return err
	}
	setString(&c.Promotion, fc.Clock.Promotion)
	setString(&c.WhiteName, fc.Players.White)
	setString(&c.BlackName, fc.Players.Black)
	setString(&c.Site, fc.Players.Site)
	setString(&c.ExportDir, fc.Export.Dir)
	setString(&c.MoveLogDir, fc.Export.LogDir)
	if fc.Export.BoardImage != nil {
		c.ExportBoardImage = *fc.Export.BoardImage
	}
	if err := setDuration(&c.FrameInterval, fc.UI.FrameInterval, "ui.frame_interval"); err != nil {
		return err
	}
	setString(&c.MessagesDir, fc.UI.MessagesDir)
	setString(&c.RedisURL, fc.Archive.RedisURL)
	if err := setDuration(&c.ArchiveTTL, fc.Archive.TTL, "archive.ttl"); err != nil {
		return err
	}
	setString(&c.DatabaseURL, fc.Archive.DatabaseURL)
	return nil
}

func (c *AppConfig) applyEnv() error {
	if err := setDuration(&c.InitialClock, os.Getenv("DARKCHESS_INITIAL_CLOCK"), "DARKCHESS_INITIAL_CLOCK"); err != nil {
		return err
	}
	setString(&c.Promotion, os.Getenv("DARKCHESS_PROMOTION"))
	setString(&c.WhiteName, os.Getenv("DARKCHESS_WHITE"))
	setString(&c.BlackName, os.Getenv("DARKCHESS_BLACK"))
	setString(&c.Site, os.Getenv("DARKCHESS_SITE"))
	setString(&c.ExportDir, os.Getenv("DARKCHESS_EXPORT_DIR"))
	setString(&c.MoveLogDir, os.Getenv("DARKCHESS_MOVE_LOG_DIR"))
	if v := strings.TrimSpace(os.Getenv("EXPORT_BOARD_IMAGE")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("EXPORT_BOARD_IMAGE: %w", err)
		}
		c.ExportBoardImage = b
	}
	if err := setDuration(&c.FrameInterval, os.Getenv("FRAME_INTERVAL"), "FRAME_INTERVAL"); err != nil {
		return err
	}
	setString(&c.MessagesDir, os.Getenv("DARKCHESS_MESSAGES_DIR"))
	setString(&c.RedisURL, os.Getenv("REDIS_URL"))
	if err := setDuration(&c.ArchiveTTL, os.Getenv("DARKCHESS_ARCHIVE_TTL"), "DARKCHESS_ARCHIVE_TTL"); err != nil {
		return err
	}
	setString(&c.DatabaseURL, os.Getenv("DATABASE_URL"))
	return nil
}

func (c *AppConfig) Validate() error {
	if c.InitialClock <= 0 {
		return errors.New("initial clock must be positive")
	}
	if c.FrameInterval <= 0 || c.FrameInterval > time.Second {
		return fmt.Errorf("frame interval %v out of range (0, 1s]", c.FrameInterval)
	}
	if c.ArchiveTTL < 0 {
		return errors.New("archive ttl must not be negative")
	}
	switch strings.ToLower(c.Promotion) {
	case "q", "r", "b", "n":
		c.Promotion = strings.ToLower(c.Promotion)
	default:
		return fmt.Errorf("promotion %q must be one of q, r, b, n", c.Promotion)
	}
	return nil
}

func setString(dst *string, v string) {
	if s := strings.TrimSpace(v); s != "" {
		*dst = s
	}
}

func setDuration(dst *time.Duration, v, name string) error {
	s := strings.TrimSpace(v)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*dst = time.Duration(n) * time.Second
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}

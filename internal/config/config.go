package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // skip

type Config struct {
	App      App
	Sell     Sell
	Postgres Postgres
	Redis    Redis
	Bot      Bot
	Target   Target
	Servers  Servers
}

type App struct {
	Name        string `env:"APP_NAME" envDefault:"automarket" validate:"required"`
	Version     string `env:"APP_VERSION" envDefault:"dev"`
	DryRun      bool   `env:"DRY_RUN"`
	CatalogPath string `env:"CATALOG_PATH" envDefault:"catalog.json" validate:"required"`
	LabelsFile  string `env:"LABELS_FILE"`
	RunOnStart  bool   `env:"RUN_ON_START"`
}

type Bot struct {
	Token  string `env:"BOT_TOKEN" json:"-"`
	ChatID int64  `env:"BOT_CHAT_ID"`

	// AdminID is the only user the control commands answer to. Defaults to
	// ChatID, which is the user id for a private chat.
	AdminID int64 `env:"BOT_ADMIN_ID"`
}

func (b Bot) Admin() int64 {
	if b.AdminID != 0 {
		return b.AdminID
	}
	return b.ChatID
}

// Enabled reports whether the notifier bot is configured.
func (b Bot) Enabled() bool {
	return b.Token != "" && b.ChatID != 0
}

// Target is the HTTP bridge running inside the driven application. It is
// not used in dry-run mode.
type Target struct {
	URL     string        `env:"TARGET_URL" validate:"omitempty,url"`
	Timeout time.Duration `env:"TARGET_TIMEOUT" envDefault:"5s" validate:"gt=0"`
	Token   string        `env:"TARGET_TOKEN"`

	// Agents is the number of simulated agents in dry-run mode.
	Agents int `env:"DRY_RUN_AGENTS" envDefault:"2" validate:"gte=1"`
}

var (
	ErrExclusiveModes = errors.New("LIST_ONLY_MODE and VENDOR_ONLY_MODE are mutually exclusive")
	ErrNoTarget       = errors.New("TARGET_URL is required unless DRY_RUN is set")
)

func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate.Struct: %w", err)
	}

	if c.Sell.ListOnly && c.Sell.VendorOnly {
		return ErrExclusiveModes
	}

	if !c.App.DryRun && c.Target.URL == "" {
		return ErrNoTarget
	}

	return nil
}

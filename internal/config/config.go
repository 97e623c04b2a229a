package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken string `envconfig:"BOT_TOKEN" required:"true"`
	DBPath   string `envconfig:"DB_PATH" default:"./data/sidekick.db"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`  // debug|info|warn|error
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"` // healthz

	TickInterval  time.Duration `envconfig:"TICK_INTERVAL" default:"60s"`
	CatchupWindow time.Duration `envconfig:"CATCHUP_WINDOW" default:"1h"`

	BuddyCodeTTL    time.Duration `envconfig:"BUDDY_CODE_TTL" default:"5m"`
	BuddyConfirmTTL time.Duration `envconfig:"BUDDY_CONFIRM_TTL" default:"2m"`
	PromptTimeout   time.Duration `envconfig:"PROMPT_TIMEOUT" default:"2m"`
	JournalTimeout  time.Duration `envconfig:"JOURNAL_TIMEOUT" default:"15m"`
}

// Load reads an optional .env file, then environment variables into Config.
// Variables already present in the environment win over .env entries.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

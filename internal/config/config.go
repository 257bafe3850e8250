package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultPollInterval      = 10 * time.Millisecond
	DefaultSampleDuration    = 100 * time.Millisecond
	DefaultLongWindow        = 100
	DefaultShortWindow       = 20
	DefaultJournalEvery      = 10
	DefaultMessageRate       = 20.0 / 30.0
	DefaultMargin            = 300 * time.Millisecond
	DefaultMinCommandsPerSec = 2.0
	DefaultMinCommandRatio   = 0.6
	DefaultBroadcastInterval = time.Second
)

// Config is the top-level crowdplay configuration. Fields map 1:1 to
// config.example.yaml.
type Config struct {
	Bot    BotConfig    `yaml:"bot"`
	Policy PolicyConfig `yaml:"policy"`
	Debug  DebugConfig  `yaml:"debug"`
}

// BotConfig holds the connection and session loop settings.
type BotConfig struct {
	// Server is the chat server address (host:port), used when Transport
	// is "tcp".
	Server string `yaml:"server"`

	// Transport selects the connection type: tcp | websocket.
	Transport string `yaml:"transport"`

	// TLS wraps the TCP connection in TLS.
	TLS bool `yaml:"tls"`

	// WebsocketURL is the gateway URL, used when Transport is "websocket".
	WebsocketURL string `yaml:"websocket_url"`

	// Nick is the account name used for the identity line.
	Nick string `yaml:"nick"`

	// TokenEnv is the name of the environment variable that holds the
	// OAuth token. The token itself never appears in the config file.
	TokenEnv string `yaml:"token_env"`

	// Channel is the channel to join and tally, without the '#'.
	Channel string `yaml:"channel"`

	// JournalPath is where the tab-separated statistics journal is
	// appended.
	JournalPath string `yaml:"journal_path"`

	// PollInterval is the fixed sleep at the end of each loop iteration.
	PollInterval time.Duration `yaml:"poll_interval"`

	// SampleDuration is the length of one tally bucket.
	SampleDuration time.Duration `yaml:"sample_duration"`

	// LongWindow and ShortWindow are the window lengths in buckets. The
	// long window feeds reporting, the short one the send decision.
	LongWindow  int `yaml:"long_window"`
	ShortWindow int `yaml:"short_window"`

	// JournalEvery is the number of rotations between journal records.
	JournalEvery int `yaml:"journal_every"`
}

// Token returns the OAuth token resolved from the environment. Returns the
// empty string if TokenEnv is unset or the variable is not found.
func (b BotConfig) Token() string {
	if b.TokenEnv == "" {
		return ""
	}
	return os.Getenv(b.TokenEnv)
}

// PolicyConfig tunes the send policy.
type PolicyConfig struct {
	// SendEnabled gates actual sending; with it off the bot only observes.
	SendEnabled bool `yaml:"send_enabled"`

	// MinCommandsPerSec and MinCommandRatio are the activity thresholds
	// below which nothing is sent.
	MinCommandsPerSec float64 `yaml:"min_commands_per_sec"`
	MinCommandRatio   float64 `yaml:"min_command_ratio"`

	// MessageRate is the server's outbound rate limit in messages per
	// second; Margin is added on top of the resulting minimum interval.
	MessageRate float64       `yaml:"message_rate"`
	Margin      time.Duration `yaml:"margin"`
}

// DebugConfig configures the optional debug listener.
type DebugConfig struct {
	// Listen is the address for /metrics, /healthz, /api/v1/status and
	// /ws/live. Empty disables the listener entirely.
	Listen string `yaml:"listen"`

	// BroadcastInterval is how often the WebSocket hub pushes the status.
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`
}

// Load reads and parses the YAML config file at path. Missing optional
// fields are filled with the production defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Bot: BotConfig{
			Transport:      "tcp",
			PollInterval:   DefaultPollInterval,
			SampleDuration: DefaultSampleDuration,
			LongWindow:     DefaultLongWindow,
			ShortWindow:    DefaultShortWindow,
			JournalEvery:   DefaultJournalEvery,
		},
		Policy: PolicyConfig{
			MinCommandsPerSec: DefaultMinCommandsPerSec,
			MinCommandRatio:   DefaultMinCommandRatio,
			MessageRate:       DefaultMessageRate,
			Margin:            DefaultMargin,
		},
		Debug: DebugConfig{
			BroadcastInterval: DefaultBroadcastInterval,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	switch cfg.Bot.Transport {
	case "tcp":
		if cfg.Bot.Server == "" {
			return fmt.Errorf("bot.server is required")
		}
	case "websocket":
		if cfg.Bot.WebsocketURL == "" {
			return fmt.Errorf("bot.websocket_url is required for the websocket transport")
		}
	default:
		return fmt.Errorf("bot.transport: unknown transport %q", cfg.Bot.Transport)
	}
	if cfg.Bot.Nick == "" {
		return fmt.Errorf("bot.nick is required")
	}
	if cfg.Bot.TokenEnv == "" {
		return fmt.Errorf("bot.token_env is required")
	}
	if cfg.Bot.Channel == "" {
		return fmt.Errorf("bot.channel is required")
	}
	if cfg.Bot.JournalPath == "" {
		return fmt.Errorf("bot.journal_path is required")
	}
	if cfg.Bot.PollInterval <= 0 {
		return fmt.Errorf("bot.poll_interval must be positive")
	}
	if cfg.Bot.SampleDuration <= 0 {
		return fmt.Errorf("bot.sample_duration must be positive")
	}
	if cfg.Bot.ShortWindow <= 0 {
		return fmt.Errorf("bot.short_window must be positive")
	}
	if cfg.Bot.LongWindow <= cfg.Bot.ShortWindow {
		return fmt.Errorf("bot.long_window must be greater than bot.short_window")
	}
	if cfg.Bot.JournalEvery <= 0 {
		return fmt.Errorf("bot.journal_every must be positive")
	}
	if cfg.Policy.MessageRate <= 0 {
		return fmt.Errorf("policy.message_rate must be positive")
	}
	if cfg.Policy.Margin < 0 {
		return fmt.Errorf("policy.margin must not be negative")
	}
	if cfg.Debug.Listen != "" && cfg.Debug.BroadcastInterval <= 0 {
		return fmt.Errorf("debug.broadcast_interval must be positive")
	}
	return nil
}

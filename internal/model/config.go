package model

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// MailConfig holds the IMAP mailbox settings.
type MailConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`

	// Sender narrows the unseen-message search to the marketplace's
	// notification address.
	Sender string `mapstructure:"sender" yaml:"sender"`

	// Folder is the mailbox folder to poll.
	Folder string `mapstructure:"folder" yaml:"folder"`
}

// GeneratorConfig holds settings for the proposal-generation service.
type GeneratorConfig struct {
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`
	Model     string `mapstructure:"model" yaml:"model"`
	MaxTokens int    `mapstructure:"max_tokens" yaml:"max_tokens"`

	// ProxyURL optionally routes generation traffic through a SOCKS5 or
	// HTTP proxy (e.g. socks5://127.0.0.1:1080).
	ProxyURL string `mapstructure:"proxy_url" yaml:"proxy_url"`

	// Signature is the contact line proposals should end with.
	Signature string `mapstructure:"signature" yaml:"signature"`
}

// NotifierConfig holds the Telegram delivery settings.
type NotifierConfig struct {
	Token  string `mapstructure:"token" yaml:"token"`
	ChatID int64  `mapstructure:"chat_id" yaml:"chat_id"`
}

// PollConfig holds the polling cadence and business filters.
type PollConfig struct {
	IntervalSec  int `mapstructure:"interval_sec" yaml:"interval_sec"`
	StalenessMin int `mapstructure:"staleness_min" yaml:"staleness_min"`

	// MinBudget is the smallest stated budget worth responding to.
	MinBudget int `mapstructure:"min_budget" yaml:"min_budget"`
}

// Interval returns the inter-cycle sleep as a duration.
func (p PollConfig) Interval() time.Duration {
	return time.Duration(p.IntervalSec) * time.Second
}

// Staleness returns the maximum message age as a duration.
func (p PollConfig) Staleness() time.Duration {
	return time.Duration(p.StalenessMin) * time.Minute
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Mail      MailConfig      `mapstructure:"mail" yaml:"mail"`
	Generator GeneratorConfig `mapstructure:"generator" yaml:"generator"`
	Notifier  NotifierConfig  `mapstructure:"notifier" yaml:"notifier"`
	Poll      PollConfig      `mapstructure:"poll" yaml:"poll"`
}

// LoadConfig reads configuration from an optional YAML file and the
// environment using Viper. Environment variables use the TASKWATCH_
// prefix with dots replaced by underscores (e.g. TASKWATCH_MAIL_PASSWORD).
// Missing keys resolve to defaults; a missing file is not an error.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()

	v.SetDefault("mail.host", "imap.gmail.com")
	v.SetDefault("mail.port", "993")
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.sender", "YouDo")
	v.SetDefault("mail.folder", "INBOX")
	v.SetDefault("generator.api_key", "")
	v.SetDefault("generator.model", "gpt-4o-mini")
	v.SetDefault("generator.max_tokens", 300)
	v.SetDefault("generator.proxy_url", "")
	v.SetDefault("generator.signature", "")
	v.SetDefault("notifier.token", "")
	v.SetDefault("notifier.chat_id", 0)
	v.SetDefault("poll.interval_sec", 10)
	v.SetDefault("poll.staleness_min", 10)
	v.SetDefault("poll.min_budget", 500)

	v.SetEnvPrefix("TASKWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(*os.PathError); !ok {
				if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
					return nil, fmt.Errorf("reading config %s: %w", path, err)
				}
			}
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports the first missing required setting.
func (c *AppConfig) Validate() error {
	switch {
	case c.Mail.Username == "":
		return fmt.Errorf("mail.username is required")
	case c.Mail.Password == "":
		return fmt.Errorf("mail.password is required")
	case c.Mail.Sender == "":
		return fmt.Errorf("mail.sender is required")
	case c.Generator.APIKey == "":
		return fmt.Errorf("generator.api_key is required")
	case c.Notifier.Token == "":
		return fmt.Errorf("notifier.token is required")
	case c.Notifier.ChatID == 0:
		return fmt.Errorf("notifier.chat_id is required")
	}
	return nil
}

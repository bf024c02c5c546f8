package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Bot    BotConfig    `yaml:"bot"`
	Store  StoreConfig  `yaml:"store"`
	Notify NotifyConfig `yaml:"notify"`
	Busy   BusyConfig   `yaml:"busy"`
	HTTP   HTTPConfig   `yaml:"http"`
	Log    LogConfig    `yaml:"log"`
}

type BotConfig struct {
	Token   string `yaml:"token"`
	AppID   string `yaml:"app_id"`
	GuildID string `yaml:"guild_id"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type NotifyConfig struct {
	ChannelID     string `yaml:"channel_id"`
	RoleID        string `yaml:"role_id"`
	Cron          string `yaml:"cron"`
	Timezone      string `yaml:"timezone"`
	DirectMessage bool   `yaml:"direct_message"`
	GifURL        string `yaml:"gif_url"`
}

type BusyConfig struct {
	UserIDs       []string `yaml:"user_ids"`
	OwnerID       string   `yaml:"owner_id"`
	Reply         string   `yaml:"reply"`
	RepliesPerMin int      `yaml:"replies_per_min"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path: "birthdays.json",
		},
		Notify: NotifyConfig{
			Cron:     "0 0 * * *",
			Timezone: "Asia/Kolkata",
			GifURL:   "https://media.giphy.com/media/3o6ZtaO9BZHcOjmErm/giphy.gif",
		},
		Busy: BusyConfig{
			Reply:         "He is busy",
			RepliesPerMin: 6,
		},
		HTTP: HTTPConfig{
			Addr: ":10000",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func (c Config) validate() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("bot.token is required")
	}
	if c.Bot.GuildID == "" {
		return fmt.Errorf("bot.guild_id is required")
	}
	if c.Notify.ChannelID == "" {
		return fmt.Errorf("notify.channel_id is required")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if _, err := time.LoadLocation(c.Notify.Timezone); err != nil {
		return fmt.Errorf("notify.timezone %q: %w", c.Notify.Timezone, err)
	}
	return nil
}

func (c Config) String() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	return string(data)
}

func Init(fp string) (*Config, error) {
	c := DefaultConfig()

	data, err := os.ReadFile(fp)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile error: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal error: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("validate error: %w", err)
	}

	return c, nil
}

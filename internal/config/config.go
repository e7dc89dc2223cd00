package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// GameConfig holds the table rules and tuning read from the game config file.
type GameConfig struct {
	// TurnDurationSeconds is how long a player may think before the table moves on.
	TurnDurationSeconds int `mapstructure:"turn_duration_seconds"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before adding a bot to a solo human lobby.
	BotAutoFillDelaySeconds int `mapstructure:"bot_auto_fill_delay_seconds"`
	// IdleTimeoutHours ends and discards matches nobody touched for that long.
	IdleTimeoutHours int `mapstructure:"idle_timeout_hours"`
	// BotStrategy names the brain used for bot seats: "random" or "greedy".
	BotStrategy string `mapstructure:"bot_strategy"`
	// SolverCacheSize bounds the number of hands the bot solver cache keeps.
	SolverCacheSize int64 `mapstructure:"solver_cache_size"`
	// Glyphs maps suit names (copas, espada, oro, basto) to the glyph shown for them.
	Glyphs map[string]string `mapstructure:"glyphs"`
}

// TurnDuration returns the turn limit as a duration.
func (c *GameConfig) TurnDuration() time.Duration {
	return time.Duration(c.TurnDurationSeconds) * time.Second
}

// IdleTimeout returns the idle limit as a duration.
func (c *GameConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutHours) * time.Hour
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("turn_duration_seconds", 60)
	v.SetDefault("bot_auto_fill_delay_seconds", 15)
	v.SetDefault("idle_timeout_hours", 24)
	v.SetDefault("bot_strategy", "greedy")
	v.SetDefault("solver_cache_size", 10000)
}

// ReadGameConfig reads a config file in any format viper understands. Keys may be
// overridden by CHINCHON_* environment variables.
func ReadGameConfig(path string) (*GameConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("chinchon")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read game config: %w", err)
		}
	}

	var c GameConfig
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if c.TurnDurationSeconds <= 0 || c.IdleTimeoutHours <= 0 {
		return nil, fmt.Errorf("turn duration and idle timeout must be positive")
	}
	return &c, nil
}

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		cfg, loadErr = ReadGameConfig(path)
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, or the defaults when
// LoadGameConfig was never called or failed.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		c, err := ReadGameConfig("")
		if err != nil {
			return &GameConfig{TurnDurationSeconds: 60, IdleTimeoutHours: 24}
		}
		return c
	}
	return cfg
}

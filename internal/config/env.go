package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// RuntimeEnv holds the secrets and endpoints passed through the Nakama runtime
// environment (or the process environment for the CLI).
type RuntimeEnv struct {
	GameConfigPath string        `env:"CHINCHON_GAME_CONFIG" envDefault:"/nakama/data/modules/game_config.json"`
	BotsPath       string        `env:"CHINCHON_BOT_IDENTITIES" envDefault:"/nakama/data/modules/bot_identities.json"`
	InviteSecret   string        `env:"CHINCHON_INVITE_SECRET"`
	InviteIssuer   string        `env:"CHINCHON_INVITE_ISSUER" envDefault:"chinchon"`
	InviteTTL      time.Duration `env:"CHINCHON_INVITE_TTL"    envDefault:"24h"`
	RedisAddr      string        `env:"CHINCHON_REDIS_ADDR"`
	RedisPassword  string        `env:"CHINCHON_REDIS_PASSWORD"`
	RedisDB        int           `env:"CHINCHON_REDIS_DB"      envDefault:"0"`
	LogLevel       string        `env:"CHINCHON_LOG_LEVEL"     envDefault:"info"`
}

// StatsEnabled reports whether a Redis endpoint was configured.
func (e RuntimeEnv) StatsEnabled() bool { return e.RedisAddr != "" }

// InvitesEnabled reports whether invite tokens can be signed.
func (e RuntimeEnv) InvitesEnabled() bool { return e.InviteSecret != "" }

// ParseRuntimeEnv decodes vars into a RuntimeEnv. A nil map reads the process
// environment instead.
func ParseRuntimeEnv(vars map[string]string) (RuntimeEnv, error) {
	var out RuntimeEnv
	opts := env.Options{}
	if vars != nil {
		opts.Environment = vars
	}
	if err := env.ParseWithOptions(&out, opts); err != nil {
		return RuntimeEnv{}, fmt.Errorf("parse env: %w", err)
	}
	out.InviteSecret = strings.TrimSpace(out.InviteSecret)
	if out.InviteTTL <= 0 {
		return RuntimeEnv{}, fmt.Errorf("CHINCHON_INVITE_TTL must be positive")
	}
	return out, nil
}

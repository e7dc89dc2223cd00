package nakama

import (
	"context"
	"database/sql"

	"chinchon/internal/app"
	"chinchon/internal/bot"
	"chinchon/internal/config"
	"chinchon/internal/ports"
	"chinchon/internal/ports/redis"
	"chinchon/internal/render"

	"github.com/heroiclabs/nakama-common/runtime"
)

// module holds the services shared by every match and RPC of the runtime module.
type module struct {
	cfg     *config.GameConfig
	store   ports.MatchStorePort
	stats   *app.StatsService
	invites *app.InviteService
	cache   *bot.SolverCache
	glyphs  render.Glyphs
}

// InitModule wires RPCs and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	vars, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	env, err := config.ParseRuntimeEnv(vars)
	if err != nil {
		return err
	}

	if err := config.LoadGameConfig(env.GameConfigPath); err != nil {
		logger.Warn("Using default game config: %v", err)
	}
	cfg := config.GetGameConfig()

	if err := bot.LoadIdentities(env.BotsPath); err != nil {
		logger.Warn("No bot identities loaded, bots will be anonymous: %v", err)
	}
	bot.ProvisionBots(ctx, nk, logger)

	m := &module{
		cfg:   cfg,
		store: NewNakamaMatchStore(nk),
	}

	if env.StatsEnabled() {
		cli, err := redis.Connect(ctx, env.RedisAddr, env.RedisPassword, env.RedisDB)
		if err != nil {
			logger.Warn("Stats disabled, Redis unreachable: %v", err)
		} else {
			m.stats = app.NewStatsService(redis.NewStatsStore(cli))
		}
	}
	if env.InvitesEnabled() {
		m.invites = app.NewInviteService(env.InviteSecret, env.InviteIssuer, env.InviteTTL)
	} else {
		logger.Warn("CHINCHON_INVITE_SECRET not set, invite tokens disabled.")
	}

	if m.cache, err = bot.NewSolverCache(cfg.SolverCacheSize); err != nil {
		return err
	}
	if m.glyphs, err = render.ParseGlyphs(cfg.Glyphs); err != nil {
		return err
	}

	if err := m.registerRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameChinchon, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return &matchHandler{m: m}, nil
	}); err != nil {
		return err
	}

	logger.Info("Chinchón Go module loaded.")
	return nil
}

// registerRPCs registers Nakama RPC endpoints.
func (m *module) registerRPCs(initializer runtime.Initializer) error {
	rpcs := map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		RpcQuickMatch:   m.rpcQuickMatch,
		RpcCreateMatch:  m.rpcCreateMatch,
		RpcInvite:       m.rpcInvite,
		RpcStats:        m.rpcStats,
		RpcRestoreMatch: m.rpcRestoreMatch,
	}
	for id, fn := range rpcs {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return err
		}
	}
	return nil
}

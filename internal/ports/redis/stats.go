package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"chinchon/internal/ports"
)

// Counters is the subset of the go-redis client the stats store needs.
type Counters interface {
	Incr(ctx context.Context, key string) *goredis.IntCmd
	MGet(ctx context.Context, keys ...string) *goredis.SliceCmd
}

// StatsStore keeps win/loss counters as plain Redis integers.
type StatsStore struct {
	cli Counters
}

var _ ports.StatsPort = (*StatsStore)(nil)

func NewStatsStore(cli Counters) *StatsStore {
	return &StatsStore{cli: cli}
}

// Connect opens a client and checks it answers within ten seconds.
func Connect(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	cli := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return cli, nil
}

func winsKey(scope, userID string) string   { return "wins:" + scope + ":" + userID }
func lossesKey(scope, userID string) string { return "losses:" + scope + ":" + userID }

func (s *StatsStore) IncrementWin(ctx context.Context, scope, userID string) error {
	return s.cli.Incr(ctx, winsKey(scope, userID)).Err()
}

func (s *StatsStore) IncrementLoss(ctx context.Context, scope, userID string) error {
	return s.cli.Incr(ctx, lossesKey(scope, userID)).Err()
}

func (s *StatsStore) Get(ctx context.Context, scope, userID string) (ports.StatsRecord, error) {
	vals, err := s.cli.MGet(ctx, winsKey(scope, userID), lossesKey(scope, userID)).Result()
	if err != nil {
		return ports.StatsRecord{}, err
	}
	if len(vals) != 2 {
		return ports.StatsRecord{}, fmt.Errorf("redis returned %d values for 2 keys", len(vals))
	}
	wins, err := counter(vals[0])
	if err != nil {
		return ports.StatsRecord{}, err
	}
	losses, err := counter(vals[1])
	if err != nil {
		return ports.StatsRecord{}, err
	}
	return ports.StatsRecord{Wins: wins, Losses: losses}, nil
}

// counter reads one MGET value; missing keys come back as nil.
func counter(v interface{}) (int64, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bad counter %q: %w", val, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected counter type %T", v)
	}
}

package data

import (
	"context"
	"fmt"
	"time"

	"roulette/internal/biz/history"
	"roulette/internal/biz/wheel"
	"roulette/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

const (
	historyKeyPrefix = "roulette_history:"
	defaultClient    = "default"
	historyTimeout   = 3 * time.Second
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// historyKey 每个客户端一个列表
func historyKey(client string) string {
	if client == "" {
		client = defaultClient
	}
	return historyKeyPrefix + client
}

// NewHistoryStore 有 Redis 用 Redis 列表，否则进程内存储
func NewHistoryStore(rdb redis.UniversalClient, c *conf.Roulette, logger log.Logger) history.Store {
	if rdb == nil {
		return history.NewMemoryStore()
	}
	key := historyKey(c.GetHistory().GetClient())
	log.NewHelper(logger).Infof("outcome history stored in redis list %s", key)
	return &redisHistory{rdb: rdb, key: key}
}

// redisHistory 最新在前，LPUSH + LTRIM 保持上限
type redisHistory struct {
	rdb redis.UniversalClient
	key string
}

func (r *redisHistory) Load(ctx context.Context) ([]wheel.Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, historyTimeout)
	defer cancel()

	raw, err := r.rdb.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", r.key, err)
	}
	return decodeOutcomes(raw)
}

func (r *redisHistory) Push(ctx context.Context, o wheel.Outcome, limit int) error {
	b, err := json.Marshal(o)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, historyTimeout)
	defer cancel()

	pipe := r.rdb.TxPipeline()
	pipe.LPush(ctx, r.key, b)
	if limit > 0 {
		pipe.LTrim(ctx, r.key, 0, int64(limit-1))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push %s: %w", r.key, err)
	}
	return nil
}

func (r *redisHistory) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, historyTimeout)
	defer cancel()
	return r.rdb.Del(ctx, r.key).Err()
}

// decodeOutcomes 任一条目损坏则整体视为损坏
func decodeOutcomes(raw []string) ([]wheel.Outcome, error) {
	out := make([]wheel.Outcome, 0, len(raw))
	for i, s := range raw {
		var o wheel.Outcome
		if err := json.UnmarshalFromString(s, &o); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", history.ErrCorrupt, i, err)
		}
		if o.Number < 0 || o.Number >= wheel.PocketCount {
			return nil, fmt.Errorf("%w: entry %d: number %d out of range", history.ErrCorrupt, i, o.Number)
		}
		out = append(out, o)
	}
	return out, nil
}

package data

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const batchCounterPrefix = "roulette_batch:count:"

// NextBatchID 实现 DataRepo：Redis Hash roulette_batch:count:YYYYMMDD，field=batch，次日 0 点过期；
// 无 Redis 或计数失败时退化为 uuid 短串
func (r *dataRepo) NextBatchID(ctx context.Context) string {
	now := time.Now()
	date := now.Format("20060102")
	if r.data.rdb == nil {
		return fmt.Sprintf("%s-%s", date, uuid.NewString()[:8])
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	key := batchCounterPrefix + date
	count, err := r.data.rdb.HIncrBy(ctx, key, "batch", 1).Result()
	if err != nil {
		r.log.Warnf("batch counter failed, fallback to uuid: %v", err)
		return fmt.Sprintf("%s-%s", date, uuid.NewString()[:8])
	}
	if count == 1 {
		tomorrow := now.AddDate(0, 0, 1)
		midnight := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, now.Location())
		_ = r.data.rdb.ExpireAt(ctx, key, midnight).Err()
	}
	return fmt.Sprintf("%s-%d", date, count)
}

package data

import (
	"context"
	"time"

	"roulette/internal/biz"
	"roulette/internal/conf"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"xorm.io/xorm"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(NewData, NewRedis, NewMysql, NewS3Bucket, NewDataRepo, NewHistoryStore)

type dataRepo struct {
	data *Data
	log  *log.Helper
}

func NewDataRepo(data *Data, logger log.Logger) biz.DataRepo {
	return &dataRepo{
		data: data,
		log:  log.NewHelper(log.With(logger, "module", "data")),
	}
}

// Data 各存储均可为空，未配置时对应功能降级
type Data struct {
	db       *xorm.Engine
	rdb      redis.UniversalClient
	s3Bucket *S3Bucket
}

// NewData .
func NewData(logger log.Logger, db *xorm.Engine, rdb redis.UniversalClient, s3 *S3Bucket) (*Data, func(), error) {
	l := log.NewHelper(logger)
	if db != nil {
		if err := db.Sync(new(BatchReport)); err != nil {
			return nil, nil, errors.Newf(500, "DB_SYNC_FAILED", "sync batch_report table: %v", err)
		}
	}
	l.Infof("data resources: mysql=%v redis=%v s3=%v", db != nil, rdb != nil, s3 != nil)
	cleanup := func() {
		l.Info("closing the data resources")
	}
	return &Data{db: db, rdb: rdb, s3Bucket: s3}, cleanup, nil
}

// NewRedis 创建并配置 Redis 客户端；未配置地址或无法连通时返回 nil，历史退化为进程内存储
func NewRedis(c *conf.Data, logger log.Logger) (redis.UniversalClient, func(), error) {
	l := log.NewHelper(logger)

	rc := c.GetRedis()
	if rc == nil || len(rc.Addr) == 0 {
		l.Warn("redis not configured, outcome history stays in memory")
		return nil, func() {}, nil
	}

	rdb := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        rc.Addr,
		Password:     rc.Password,
		DB:           int(rc.Db),
		ReadTimeout:  rc.ReadTimeout.AsDuration(),
		WriteTimeout: rc.WriteTimeout.AsDuration(),
		// 连接池配置
		PoolSize:        16,
		MinIdleConns:    2,
		PoolTimeout:     5 * time.Second,
		ConnMaxLifetime: 10 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		MaxRetries:      3,
		MinRetryBackoff: 100 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		l.Warnf("failed pinging redis, outcome history stays in memory: %v", err)
		_ = rdb.Close()
		return nil, func() {}, nil
	}

	cleanup := func() {
		l.Infof("closing redis connection")
		if err := rdb.Close(); err != nil {
			l.Error(err)
		}
	}

	l.Info("Redis connection established successfully")
	return rdb, cleanup, nil
}

// NewMysql 创建报告库连接；未配置时返回 nil，报告只保留在内存
func NewMysql(c *conf.Data, logger log.Logger) (*xorm.Engine, func(), error) {
	l := log.NewHelper(logger)
	dc := c.GetDatabase()
	if dc == nil || dc.Source == "" {
		l.Warn("mysql not configured, batch reports are not persisted")
		return nil, func() {}, nil
	}
	driver := dc.Driver
	if driver == "" {
		driver = "mysql"
	}
	db, err := xorm.NewEngine(driver, dc.Source)
	if err != nil {
		l.Errorf("failed opening db: %v", err)
		return nil, nil, errors.Newf(500, "DB_OPEN_FAILED", "failed opening db: %v", err)
	}

	// 设置连接池参数
	db.SetMaxIdleConns(defaultInt(dc.MaxIdleConns, 2))
	db.SetMaxOpenConns(defaultInt(dc.MaxOpenConns, 10))
	if db.DB() != nil {
		db.DB().SetConnMaxLifetime(3 * time.Minute)
		db.DB().SetConnMaxIdleTime(1 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		l.Errorf("failed pinging db: %v", err)
		_ = db.Close()
		return nil, nil, errors.Newf(500, "DB_PING_FAILED", "failed pinging db: %v", err)
	}
	cleanup := func() {
		l.Info("closing mysql connection")
		if err := db.Close(); err != nil {
			l.Error(err)
		}
	}
	l.Info("MySQL connection established successfully")
	return db, cleanup, nil
}

// defaultInt 返回配置值或默认值
func defaultInt(value int32, defaultValue int) int {
	if v := int(value); v > 0 {
		return v
	}
	return defaultValue
}

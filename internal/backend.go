package internal

import (
	"context"
	"fmt"
	"net"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/storage"
)

// Backend is the opened persisted storage with whatever it holds open.
type Backend struct {
	Kind        storage.Backend
	KV          storage.KV
	RedisClient *redis.Client
	DBPool      *pgxpool.Pool
	Collectors  []prometheus.Collector

	sqliteKV *storage.SqliteKV
}

type OpenBackendParams struct {
	Config         *config.Config
	RedisPassword  string
	TracingEnabled bool
}

// OpenBackend opens the configured storage backend and runs its
// migrations. A redis client is opened for the redis backend and also
// serves rate limiting.
func OpenBackend(ctx context.Context, params OpenBackendParams) (*Backend, error) {
	cfg := params.Config
	kind, err := storage.ParseBackend(cfg.StorageBackend)
	if err != nil {
		return nil, err
	}

	b := &Backend{Kind: kind}
	switch kind {
	case storage.BackendMemory:
		log.Warnln("using in-memory storage, data is lost on restart")
		b.KV = storage.NewMemoryKV()

	case storage.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})
		if params.TracingEnabled {
			rdb.AddHook(redisotel.NewTracingHook())
		}
		rdbStatus := rdb.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		log.Debugf("redis ping: %s", rdbStatus.Val())
		b.RedisClient = rdb
		b.KV = storage.NewRedisKV(rdb)

	case storage.BackendPostgres:
		dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			TracingEnabled: params.TracingEnabled,
		})
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		if err := dbPool.Ping(ctx); err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("ping db: %w", err)
		}
		sqlDB := db.SQLDB(dbPool)
		err = storage.RunPsqlMigrations(ctx, sqlDB)
		_ = sqlDB.Close()
		if err != nil {
			dbPool.Close()
			return nil, err
		}
		b.DBPool = dbPool
		b.KV = storage.NewPsqlKV(dbPool)
		b.Collectors = append(b.Collectors, pgxpoolprometheus.NewCollector(
			dbPool,
			map[string]string{"db_name": cfg.PostgresDBName},
		))

	case storage.BackendSqlite:
		gormDB, err := storage.OpenSqlite(cfg.SqlitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite [%s]: %w", cfg.SqlitePath, err)
		}
		sqliteKV := storage.NewSqliteKV(gormDB)
		if err := storage.RunSqliteMigrations(ctx, gormDB); err != nil {
			_ = sqliteKV.Close()
			return nil, err
		}
		b.sqliteKV = sqliteKV
		b.KV = sqliteKV
	}

	log.Infof("storage backend: %s", kind)
	return b, nil
}

func (b *Backend) Close() {
	if b.RedisClient != nil {
		if err := b.RedisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}
	if b.DBPool != nil {
		log.Debugln("closing db pool ...")
		b.DBPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}
	if b.sqliteKV != nil {
		if err := b.sqliteKV.Close(); err != nil {
			log.Errorf("failed to close sqlite db: %s", err)
		}
	}
}

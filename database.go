package main

import (
	"comicApi/models"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/RediSearch/redisearch-go/redisearch"
	"github.com/glebarez/sqlite"
	goredis "github.com/go-redis/redis/v8"
	"github.com/lib/pq"
	"github.com/nitishm/go-rejson/v4"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const SearchIndexName = "explanationSearch"

var DatabaseConnection *gorm.DB
var RedisConnection *goredis.Client
var ReJsonClient *rejson.Handler
var RediSearchClient *redisearch.Client

func SetupDatabaseConnection() error {
	databaseConfig := ServiceConfig.Database

	var dialector gorm.Dialector

	switch databaseConfig.Driver {
	case "sqlite":
		dialector = sqlite.Open(databaseConfig.Path)
	case "postgres", "":
		dsn := databaseConfig.Dsn
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=Etc/UTC",
				databaseConfig.Host,
				databaseConfig.User,
				databaseConfig.Password,
				databaseConfig.Database,
				databaseConfig.Port)
		}

		// lib/pq registers itself as "postgres" in database/sql.
		dialector = postgres.New(postgres.Config{DriverName: "postgres", DSN: dsn})
	default:
		return fmt.Errorf("unsupported database driver %q", databaseConfig.Driver)
	}

	dbLogger := gormLogger.New(slog.NewLogLogger(slog.Default().Handler(), slog.LevelInfo), gormLogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormLogLevel(ServiceConfig.Logging.Level),
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         dbLogger,
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		return err
	}

	sqlDb.SetMaxIdleConns(databaseConfig.MaxIdleConnections)
	sqlDb.SetMaxOpenConns(databaseConfig.MaxOpenConnections)

	if err = MigrateDatabase(db); err != nil {
		return err
	}

	slog.Info("connected to database", "driver", databaseConfig.Driver)

	DatabaseConnection = db
	return nil
}

func MigrateDatabase(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Comic{},
		&models.Preferences{},
		&models.Explanation{},
		&models.ComicView{},
	)
}

// SetupRedisConnection wires the explanation search index. Without a
// configured host the index stays disabled.
func SetupRedisConnection() {
	redisConfig := ServiceConfig.Redis

	if redisConfig.Host == "" {
		SearchIndex = disabledIndex{}
		slog.Info("redis not configured, explanation search disabled")
		return
	}

	host := fmt.Sprintf("%s:%d", redisConfig.Host, redisConfig.Port)

	rh := rejson.NewReJSONHandler()
	client := goredis.NewClient(&goredis.Options{Addr: host})
	rs := redisearch.NewClient(host, SearchIndexName)

	rh.SetGoRedisClient(client)

	RedisConnection = client
	ReJsonClient = rh
	RediSearchClient = rs
	SearchIndex = &redisIndex{json: rh, search: rs, redis: client}
}

func CloseConnections() {
	if DatabaseConnection != nil {
		if sqlDb, err := DatabaseConnection.DB(); err == nil {
			if err = sqlDb.Close(); err != nil {
				slog.Warn("failed to close database", "error", err)
			}
		}
	}

	if RedisConnection != nil {
		if err := RedisConnection.Close(); err != nil {
			slog.Warn("failed to close redis", "error", err)
		}
	}
}

// isUniqueViolation reports whether err is a unique key violation. The sqlite
// dialector only reports it as gorm.ErrDuplicatedKey when TranslateError is set.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

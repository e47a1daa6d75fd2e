package app

import (
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zbd0329/money-distributor/internal/api"
	"github.com/zbd0329/money-distributor/internal/config"
	"github.com/zbd0329/money-distributor/internal/db"
	"github.com/zbd0329/money-distributor/internal/logger"
	"github.com/zbd0329/money-distributor/internal/repository/dao"
	"github.com/zbd0329/money-distributor/internal/token"
)

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	if err = dao.InitTables(postgresDB); err != nil {
		return fmt.Errorf("failed to migrate tables -> %w", err)
	}

	redisClient, err := openRedis(conf.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize redis -> %w", err)
	}

	allocator := token.NewAllocator(redisClient)

	s := api.NewServer(conf, postgresDB, allocator)
	defer s.Close()

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}

func openRedis(conf *config.RedisConfig) (*redis.Client, error) {
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("redis.ParseURL -> %w", err)
		}

		return redis.NewClient(opts), nil
	}

	return redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%v:%v", conf.Host, conf.Port),
		DB:   conf.DB,
	}), nil
}

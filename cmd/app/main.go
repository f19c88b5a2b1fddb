package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BloggingApp/blog-service/internal/config"
	"github.com/BloggingApp/blog-service/internal/handler"
	"github.com/BloggingApp/blog-service/internal/logger"
	"github.com/BloggingApp/blog-service/internal/rabbitmq"
	"github.com/BloggingApp/blog-service/internal/repository"
	"github.com/BloggingApp/blog-service/internal/repository/mongorepo"
	"github.com/BloggingApp/blog-service/internal/server"
	"github.com/BloggingApp/blog-service/internal/service"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx := context.Background()

	bootLogger, _ := zap.NewProduction()

	if err := loadEnv(); err != nil {
		bootLogger.Sugar().Panicf("failed to load environment variables: %s", err.Error())
	}

	if err := initConfig(); err != nil {
		bootLogger.Sugar().Panicf("failed to initialize yaml config: %s", err.Error())
	}

	logger, err := logger.New(config.LoadLogConfig())
	if err != nil {
		bootLogger.Sugar().Panicf("failed to initialize logger: %s", err.Error())
	}
	defer logger.Sync() //nolint:errcheck

	authConfig := config.LoadAuthConfig()
	if len(authConfig.Secret) == 0 {
		logger.Panic("JWT_SECRET is not set")
	}

	mongoClient, db, err := mongorepo.DB(ctx, config.LoadDBConfig())
	if err != nil {
		logger.Sugar().Panicf("failed to connect to mongo: %s", err.Error())
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		logger.Sugar().Panicf("failed to ping mongo: %s", err.Error())
	}
	logger.Info("Successfully connected to MongoDB")

	redisConfig := config.LoadRedisConfig()
	rdb := redis.NewClient(&redis.Options{
		Addr:     redisConfig.Addr,
		Password: redisConfig.Password,
	})
	pong, err := rdb.Ping(ctx).Result()
	if err != nil {
		logger.Sugar().Panicf("failed to ping redis: %s", err.Error())
	}
	logger.Sugar().Infof("Successfully connected to Redis: %s", pong)

	var (
		mq        *rabbitmq.MQConn
		publisher service.Publisher
	)
	if connString := os.Getenv("RABBITMQ_CONN_STRING"); connString != "" {
		mq, err = rabbitmq.New(connString)
		if err != nil {
			logger.Sugar().Panicf("failed to connect to rabbitmq: %s", err.Error())
		}
		publisher = mq
		logger.Info("Successfully connected to RabbitMQ")
	} else {
		logger.Warn("RABBITMQ_CONN_STRING is not set, post events will not be published")
	}

	repos := repository.New(db, rdb)
	if err := repos.Mongo.User.EnsureIndexes(ctx); err != nil {
		logger.Sugar().Panicf("failed to create user indexes: %s", err.Error())
	}

	services := service.New(logger, repos, publisher, service.Options{
		CacheTTL: config.CacheTTL(),
		Auth:     authConfig,
	})
	handlers := handler.New(services, logger, config.LoadHTTPConfig())

	srv := server.New()
	serverConfig := config.ServerConfig{
		Port:           viper.GetString("app.port"),
		Handler:        handlers.InitRoutes(),
		MaxHeaderBytes: 1 << 20,
		ReadTimeout:    time.Second * 10,
		WriteTimeout:   time.Second * 10,
	}
	go func() {
		if err := srv.Run(serverConfig); err != nil {
			logger.Sugar().Panicf("failed to run http server: %s", err.Error())
		}
	}()

	logger.Sugar().Infof("Server started on port %s", serverConfig.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("failed to shut down http server: %s", err.Error())
	}

	if mq != nil {
		if err := mq.Close(); err != nil {
			logger.Sugar().Errorf("failed to close rabbitmq connection: %s", err.Error())
		}
	}

	if err := rdb.Close(); err != nil {
		logger.Sugar().Errorf("failed to close redis client: %s", err.Error())
	}

	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		logger.Sugar().Errorf("failed to disconnect from mongo: %s", err.Error())
	}
}

// loadEnv reads .env when present. Deployments may pass the environment directly.
func loadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func initConfig() error {
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.SetConfigType("yaml")
	viper.SetConfigName("app")
	return viper.ReadInConfig()
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aniladanir/portfolio-contact-service/internal/domain"
	httpHandler "github.com/aniladanir/portfolio-contact-service/internal/handler/http"
	"github.com/aniladanir/portfolio-contact-service/internal/persistant/postgresql"
	redisConn "github.com/aniladanir/portfolio-contact-service/internal/persistant/redis"
	messageRepo "github.com/aniladanir/portfolio-contact-service/internal/repository/message"
	"github.com/aniladanir/portfolio-contact-service/internal/service"
	"github.com/gin-gonic/gin"
)

var (
	configFile = flag.String("config", "config.json", "config file path")
	dotenvFile = flag.String("env-file", ".env", "dotenv file path")
)

func main() {
	// create root context
	appCtx, appCtxCancel := context.WithCancel(context.Background())
	defer appCtxCancel()

	// listen for terminate signal
	notifyCtx, stop := signal.NotifyContext(appCtx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// parse flags
	flag.Parse()

	// parse config
	config, err := ReadConfig(*configFile, *dotenvFile)
	if err != nil {
		log.Fatalf("failed to read config: %v", err)
	}

	// setup logger
	logger := config.NewLogger()
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	// initialize message store
	msgRepo, closeStore, err := initMessageStore(notifyCtx, config)
	if err != nil {
		log.Fatalf("failed to initialize message store: %v", err)
	}
	logger.Info("message store ready", "driver", config.StoreDriver)

	// init contact service
	contactSvc := service.NewContactService(
		msgRepo,
		logger.With(slog.String("component", "contactService")),
	)

	// init http handler
	httpHandler := httpHandler.NewHttpHandler(
		fmt.Sprintf(":%d", config.HttpPort),
		contactSvc,
		logger.With(slog.String("component", "http")),
		config.CorsOrigins,
	)

	wg := sync.WaitGroup{}
	// run http handler
	wg.Go(func() {
		logger.Info("http server listening", "port", config.HttpPort)
		if err := httpHandler.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server encountered with an error and closed", "error", err.Error())
		}
		// cancel app context if http handler fails
		appCtxCancel()
	})

	// graceful shutdown
	wg.Go(func() {
		<-notifyCtx.Done()
		logger.Info("application shutting down...")

		shutDownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := httpHandler.Shutdown(shutDownCtx); err != nil {
			logger.Error("failed to shutdown http server", "error", err.Error())
		}
		if err := closeStore(); err != nil {
			logger.Error("failed to close message store", "error", err.Error())
		}
	})

	wg.Wait()
	os.Exit(0)
}

// initMessageStore connects the configured backend and returns the store with its closer
func initMessageStore(ctx context.Context, config *Config) (messageRepo.Repository, func() error, error) {
	switch config.StoreDriver {
	case StoreDriverRedis:
		client, err := redisConn.Connect(ctx, config.RedisAddr, config.ConnectMaxRetry)
		if err != nil {
			return nil, nil, err
		}
		return messageRepo.NewRedisMessageRepository(client), func() error {
			return redisConn.Close(client)
		}, nil
	case StoreDriverMemory:
		return messageRepo.NewMemoryMessageRepository(), func() error { return nil }, nil
	default:
		db, err := postgresql.Initialize(ctx, config.DbConnString, config.ConnectMaxRetry, []any{&domain.ContactMessage{}})
		if err != nil {
			return nil, nil, err
		}
		return messageRepo.NewMessageRepository(db), func() error {
			return postgresql.Close(db)
		}, nil
	}
}

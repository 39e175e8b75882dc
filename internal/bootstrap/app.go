package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"warbler/internal/app"
	"warbler/internal/cache"
	"warbler/internal/config"
	"warbler/internal/logger"
	"warbler/internal/platform/database"
	rabbitmqClient "warbler/internal/platform/rabbitmq"
	redisClient "warbler/internal/platform/redis"
	"warbler/internal/repository"
	"warbler/internal/worker"
)

type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	Redis       *redis.Client
	MQConn      *amqp.Connection
	Publisher   *rabbitmqClient.EventPublisher
	EventWorker *worker.EventWorker
	Revocations *cache.TokenRevocationList
	Store       *repository.Store
	Services    *app.Services

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	log := logger.New(cfg.App.LogLevel, cfg.App.LogFormat)

	a := &App{Config: cfg, Log: log, StartedAt: time.Now()}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	db, err := OpenDatabase(ctx, a.Config)
	if err != nil {
		return err
	}
	a.DB = db
	if err := database.Migrate(db); err != nil {
		return err
	}

	a.Redis, err = redisClient.New(ctx, redisClient.Options{
		Addr:     a.Config.Redis.Addr,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	})
	if err != nil {
		return err
	}
	a.Revocations = cache.NewTokenRevocationList(a.Redis, a.Config.Redis.RevokedPrefix)

	a.MQConn, err = rabbitmqClient.New(ctx, a.Config.RabbitMQ.URL, a.Config.RabbitMQ.EventQueue)
	if err != nil {
		return err
	}
	a.Publisher = rabbitmqClient.NewEventPublisher(a.MQConn, a.Config.RabbitMQ.EventQueue)

	a.EventWorker = worker.NewEventWorker(a.MQConn, a.Config.RabbitMQ.EventQueue, a.Log.WithField("component", "event_worker"))
	if err := a.EventWorker.Start(ctx); err != nil {
		return fmt.Errorf("start event worker failed: %w", err)
	}

	a.Store = repository.NewStore(db)
	a.Services = app.NewServices(a.Store, AuthConfig(a.Config), a.Revocations, a.Publisher, a.Log)

	a.Log.WithFields(logrus.Fields{
		"driver": a.Config.Database.Driver,
		"queue":  a.Config.RabbitMQ.EventQueue,
	}).Info("resources ready")
	return nil
}

// OpenDatabase connects to the configured database without migrating it.
func OpenDatabase(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	dsn, err := cfg.DatabaseDSN()
	if err != nil {
		return nil, err
	}
	return database.New(ctx, database.Options{
		Driver: cfg.Database.Driver,
		DSN:    dsn,
	})
}

// AuthConfig maps the auth section of cfg onto the service settings.
func AuthConfig(cfg *config.Config) app.AuthConfig {
	return app.AuthConfig{
		JWTSecret:     cfg.Auth.JWTSecret,
		JWTExpiration: time.Duration(cfg.Auth.JWTExpireMinute) * time.Minute,
		BcryptCost:    cfg.Auth.BcryptCost,
	}
}

func (a *App) Close() error {
	var errs []error
	if a.EventWorker != nil {
		a.EventWorker.Close()
	}
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.DB != nil {
		if err := database.Close(a.DB); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

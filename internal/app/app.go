package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"feeltrack/config"
	"feeltrack/internal/api"
	"feeltrack/internal/repository"
	"feeltrack/internal/service/auth"
	"feeltrack/internal/service/conversation"
	"feeltrack/internal/service/generator"
	"feeltrack/internal/service/notification"
	"feeltrack/internal/service/user"
	pkgdb "feeltrack/pkg/db"
	"feeltrack/pkg/mq"
	"feeltrack/pkg/otel"
	"feeltrack/pkg/outbox"
	"feeltrack/pkg/redis"
	"feeltrack/pkg/util"
)

const redeliveryGrace = time.Minute

// App owns every long-lived resource of a process and the services built on them.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	DB        *pgxpool.Pool
	Redis     *goredis.Client
	Publisher *mq.Publisher // nil when no broker is configured or reachable

	Users         *repository.UserRepository
	Conversations *repository.ConversationRepository
	Messages      *repository.MessageRepository
	Supportive    *repository.SupportiveMessageRepository
	Preferences   *repository.PreferencesRepository

	Auth        *auth.Service
	UserService *user.Service
	Chat        *conversation.Service
	Generator   *generator.Generator
	Scheduler   *notification.Scheduler
	Trigger     notification.BackgroundTrigger
	Outbox      *outbox.Dispatcher // nil without a publisher

	shutdownTracing func()
}

// New connects to every backing service and wires the object graph. Redis and the
// broker are optional unless the configuration requires the broker.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	// 1. Tracing
	shutdown, err := otel.Init(cfg.OTel, logger)
	if err != nil {
		logger.Warn("OpenTelemetry init failed, tracing disabled", zap.Error(err))
		shutdown = func() {}
	}
	a.shutdownTracing = shutdown

	// 2. DB
	pool, err := pkgdb.NewConnection(cfg.DB, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("db: %w", err)
	}
	a.DB = pool

	// 3. Redis
	a.Redis = redis.NewRedisClient(cfg.Redis)
	if err := redis.Ping(ctx, a.Redis); err != nil {
		logger.Warn("Redis unreachable, per-user sweep locks will fail open",
			zap.String("addr", cfg.Redis.Addr),
			zap.Error(err),
		)
	}

	// 4. MQ Publisher
	if cfg.MQ.URL != "" {
		pub, err := mq.NewPublisher(cfg.MQ.URL)
		switch {
		case err == nil:
			a.Publisher = pub
		case cfg.Notification.Dispatch == config.DispatchMQ:
			a.Close()
			return nil, fmt.Errorf("mq: %w", err)
		default:
			logger.Warn("RabbitMQ unreachable, supportive message events disabled", zap.Error(err))
		}
	}

	// 5. Repositories
	a.Users = repository.NewUserRepository(pool)
	a.Conversations = repository.NewConversationRepository(pool)
	a.Messages = repository.NewMessageRepository(pool)
	a.Supportive = repository.NewSupportiveMessageRepository(pool)
	a.Preferences = repository.NewPreferencesRepository(pool)

	// 6. Generator
	var client generator.TextClient
	if cfg.LLM.APIKey != "" {
		c, err := generator.NewOpenAIClient(generator.ClientConfig{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("llm: %w", err)
		}
		client = c
	} else {
		logger.Warn("No LLM API key configured, every generation will use fallback text")
	}
	a.Generator = generator.New(client, cfg.LLM.Timeout, logger)

	// 7. Notification scheduler
	var publisher notification.EventPublisher
	if a.Publisher != nil {
		publisher = a.Publisher
	}
	a.Scheduler = notification.NewScheduler(
		a.Supportive,
		a.Conversations,
		a.Messages,
		a.Generator,
		util.NewDeduper(a.Redis, cfg.Notification.LockTTL, logger),
		publisher,
		logger,
	)

	if a.Publisher != nil {
		unsent := notification.NewUnsentMessages(a.Supportive, redeliveryGrace)
		a.Outbox = outbox.NewDispatcher(unsent, a.Publisher, logger).WithInterval(cfg.Notification.SweepInterval)
	}

	if cfg.Notification.Dispatch == config.DispatchMQ {
		a.Trigger = notification.NewMQTrigger(a.Publisher, logger)
	} else {
		a.Trigger = notification.NewAsyncTrigger(a.Scheduler, cfg.Notification.TriggerTimeout, logger)
	}

	// 8. Services
	a.Auth = auth.NewService(a.Users, cfg.JWT.Secret, cfg.JWT.TTL, logger)
	a.UserService = user.NewService(a.Users, a.Preferences, logger)
	a.Chat = conversation.NewService(a.Conversations, a.Messages, a.Supportive, a.Generator, a.Trigger, logger)

	return a, nil
}

// Router builds the HTTP surface over the app's services.
func (a *App) Router() *api.Router {
	return api.NewRouter(
		api.NewAuthHandler(a.Auth, a.Logger),
		api.NewUserHandler(a.UserService, a.Logger),
		api.NewConversationHandler(a.Chat, a.Logger),
		a.Auth,
		a.Users,
		a.Logger,
	)
}

// Close releases resources in reverse order of acquisition. It is safe on a partly built App.
func (a *App) Close() {
	if a.Publisher != nil {
		a.Publisher.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
	if a.shutdownTracing != nil {
		a.shutdownTracing()
	}
}

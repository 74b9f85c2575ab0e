package main

import (
	"context"
	"log"
	"os"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	mongolib "go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskdesk/api/handler"
	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/internal/config"
	"github.com/fastygo/taskdesk/internal/infrastructure/mailer"
	mongoInfra "github.com/fastygo/taskdesk/internal/infrastructure/mongo"
	"github.com/fastygo/taskdesk/internal/infrastructure/monitor"
	natsInfra "github.com/fastygo/taskdesk/internal/infrastructure/nats"
	"github.com/fastygo/taskdesk/internal/infrastructure/outbox"
	"github.com/fastygo/taskdesk/internal/infrastructure/ratelimit"
	redisInfra "github.com/fastygo/taskdesk/internal/infrastructure/redis"
	"github.com/fastygo/taskdesk/internal/middleware"
	"github.com/fastygo/taskdesk/internal/router"
	"github.com/fastygo/taskdesk/internal/services"
	"github.com/fastygo/taskdesk/internal/services/lifecycle"
	"github.com/fastygo/taskdesk/pkg/httpcontext"
	"github.com/fastygo/taskdesk/pkg/logger"
	"github.com/fastygo/taskdesk/repository"
	"github.com/fastygo/taskdesk/repository/memory"
	mongoRepo "github.com/fastygo/taskdesk/repository/mongo"
	redisRepo "github.com/fastygo/taskdesk/repository/redis"
	"github.com/fastygo/taskdesk/usecase"
	adminUC "github.com/fastygo/taskdesk/usecase/admin"
	authUC "github.com/fastygo/taskdesk/usecase/auth"
	preferencesUC "github.com/fastygo/taskdesk/usecase/preferences"
	reminderUC "github.com/fastygo/taskdesk/usecase/reminder"
	taskUC "github.com/fastygo/taskdesk/usecase/task"
)

type repositories struct {
	users    repository.UserRepository
	tasks    repository.TaskRepository
	comments repository.CommentRepository
	sessions repository.SessionRepository
	tx       repository.Transactor
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	var (
		repos       repositories
		mongoClient *mongolib.Client
		redisClient *redislib.Client
	)

	switch cfg.Database.Driver {
	case config.DriverMongo:
		mongoClient, err = mongoInfra.NewClient(appCtx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("mongodb connection failed", zap.Error(err))
		}
		manager.Register("mongodb", func(ctx context.Context) error {
			return mongoInfra.Close(ctx, mongoClient, zapLogger)
		})

		if cfg.Migrations.Enabled {
			if err := mongoInfra.RunMigrations(mongoClient, cfg, zapLogger); err != nil {
				zapLogger.Fatal("migrations failed", zap.Error(err))
			}
		}

		db := mongoClient.Database(cfg.Database.Name)
		repos = repositories{
			users:    mongoRepo.NewUserRepository(db),
			tasks:    mongoRepo.NewTaskRepository(db),
			comments: mongoRepo.NewCommentRepository(db),
			tx:       mongoRepo.NewTransactor(mongoClient, cfg.Database.UseTransactions),
		}
	default:
		zapLogger.Warn("using in-memory store; data is lost on restart")
		store := memory.NewStore()
		repos = repositories{
			users:    store.Users(),
			tasks:    store.Tasks(),
			comments: store.Comments(),
			sessions: store.Sessions(),
			tx:       store,
		}
	}

	if cfg.Redis.Enabled {
		redisClient, err = redisInfra.NewClient(appCtx, cfg.Redis)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
		repos.sessions = redisRepo.NewSessionRepository(redisClient, cfg.JWT.TTL)
	} else if repos.sessions == nil {
		zapLogger.Warn("redis disabled; sessions are kept in process memory")
		repos.sessions = memory.NewStore().Sessions()
	}

	outboxStore, err := outbox.Open(cfg.Outbox.Path)
	if err != nil {
		zapLogger.Fatal("failed to open outbox store", zap.Error(err))
	}
	manager.Register("outbox", func(ctx context.Context) error {
		return outboxStore.Close()
	})

	mon := monitor.New(cfg.Monitor.Interval, zapLogger).
		WithMongo(mongoClient).
		WithRedis(redisClient).
		WithOutbox(outboxStore)

	events := usecase.NewDispatcher()
	events.Subscribe(usecase.AllEvents, "audit", func(ctx context.Context, event domain.Event) error {
		logger.WithRequestID(ctx, zapLogger).Info("domain event",
			zap.String("event", event.Name),
			zap.String("subject_id", event.SubjectID),
			zap.String("actor_id", event.ActorID))
		return nil
	})

	if cfg.NATS.Enabled {
		publisher, err := natsInfra.Connect(cfg.NATS, cfg.AppName, zapLogger)
		if err != nil {
			zapLogger.Fatal("nats connection failed", zap.Error(err))
		}
		manager.Register("nats", publisher.Close)
		mon.Register(monitor.ComponentNATS, publisher.Ping, false)
		events.Subscribe(usecase.AllEvents, "nats", publisher.Publish)
	}

	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	mail, err := mailer.New(cfg.Mailer, zapLogger)
	if err != nil {
		zapLogger.Fatal("mailer setup failed", zap.Error(err))
	}
	notifier := services.NewNotifier(outboxStore, cfg.Mailer.AppURL, zapLogger)
	processor := services.NewOutboxProcessor(outboxStore, mail, mon, zapLogger, services.ProcessorConfig{
		BatchSize:  cfg.Outbox.BatchSize,
		MaxRetries: cfg.Outbox.MaxRetry,
		Retention:  time.Duration(cfg.Outbox.RetentionHours) * time.Hour,
	})

	authUseCase := authUC.New(repos.users, repos.sessions, authUC.Config{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		SessionTTL: cfg.JWT.TTL,
	}, zapLogger)
	adminUseCase := adminUC.New(repos.users, repos.tasks, repos.tx, notifier, zapLogger, adminUC.WithEvents(events), adminUC.WithSessions(repos.sessions))
	preferencesUseCase := preferencesUC.New(repos.users, zapLogger)
	taskUseCase := taskUC.New(repos.tasks, repos.comments, repos.users, events, zapLogger)
	reminderUseCase := reminderUC.New(repos.tasks, repos.users, notifier, cfg.Reminders.BatchSize, zapLogger)

	adminLimiter, authLimiter := newLimiters(cfg, redisClient)

	scheduler := services.NewScheduler(zapLogger)
	mustSchedule(zapLogger, scheduler.Every("outbox_drain", cfg.Outbox.Interval, func(ctx context.Context) error {
		_, err := processor.Drain(ctx)
		return err
	}))
	mustSchedule(zapLogger, scheduler.Every("outbox_cleanup", time.Hour, processor.Cleanup))
	if cfg.Reminders.Enabled {
		mustSchedule(zapLogger, scheduler.Every("overdue_reminders", cfg.Reminders.Interval, func(ctx context.Context) error {
			_, err := reminderUseCase.Sweep(ctx, time.Now())
			return err
		}))
	}
	for _, l := range []ratelimit.Limiter{adminLimiter, authLimiter} {
		if mem, ok := l.(*ratelimit.MemoryLimiter); ok {
			mustSchedule(zapLogger, scheduler.Every("ratelimit_prune", 5*time.Minute, func(ctx context.Context) error {
				mem.Prune()
				return nil
			}))
		}
	}
	scheduler.Start()
	manager.Register("scheduler", scheduler.Stop)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:        apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Admin:       apiHandler.NewAdminHandler(adminUseCase, ctxAdapter, zapLogger),
		Preferences: apiHandler.NewPreferencesHandler(preferencesUseCase, ctxAdapter, zapLogger),
		Task:        apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health:      apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	r := router.New(handlers, router.Gates{
		Authenticated: middleware.JWTAuth(authUseCase, ctxAdapter, zapLogger),
		Admin:         middleware.RequireRole(repos.users, ctxAdapter, zapLogger, domain.RoleAdmin),
		AuthLimit:     middleware.RateLimit(authLimiter, "Too many authentication attempts, please try again later", zapLogger),
		AdminLimit:    middleware.RateLimit(adminLimiter, "Too many admin requests, please try again later", zapLogger),
	})

	server := &fasthttp.Server{
		Handler:            r.Handler,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		Concurrency:        cfg.HTTP.MaxConn,
		Name:               cfg.AppName,
		MaxRequestBodySize: 1 << 20,
	}

	zapLogger.Info("server started", zap.String("address", cfg.Address()))
	manager.Go("http_server", func() error {
		return server.ListenAndServe(cfg.Address())
	})
	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
	if err := manager.Err(); err != nil {
		zapLogger.Sync()
		os.Exit(1)
	}
}

func newLimiters(cfg *config.Config, client *redislib.Client) (admin, auth ratelimit.Limiter) {
	if cfg.RateLimit.Backend == config.RateLimitRedis && client != nil {
		return ratelimit.NewRedis(client, "admin", cfg.RateLimit.AdminRequests, cfg.RateLimit.AdminWindow),
			ratelimit.NewRedis(client, "auth", cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthWindow)
	}
	return ratelimit.NewMemory(cfg.RateLimit.AdminRequests, cfg.RateLimit.AdminWindow),
		ratelimit.NewMemory(cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthWindow)
}

func mustSchedule(log *zap.Logger, err error) {
	if err != nil {
		log.Fatal("scheduler setup failed", zap.Error(err))
	}
}

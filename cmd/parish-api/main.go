package main

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/stkyrillos/parish-api/internal/booking"
	"github.com/stkyrillos/parish-api/internal/events"
	"github.com/stkyrillos/parish-api/internal/handlers"
	"github.com/stkyrillos/parish-api/internal/livestream"
	"github.com/stkyrillos/parish-api/internal/notify"
	"github.com/stkyrillos/parish-api/internal/slots"
	"github.com/stkyrillos/parish-api/internal/storage"
	"github.com/stkyrillos/parish-api/libs/config"
	"github.com/stkyrillos/parish-api/libs/db"
	"github.com/stkyrillos/parish-api/libs/httpx"
	"github.com/stkyrillos/parish-api/libs/kafkax"
	otelx "github.com/stkyrillos/parish-api/libs/otel"
	"github.com/stkyrillos/parish-api/libs/runtime"
)

func parseDays(raw []string, logger *slog.Logger) []int {
	var days []int
	for _, part := range raw {
		d, err := strconv.Atoi(part)
		if err != nil || d < 0 || d > 6 {
			logger.Warn("invalid available day", "value", part)
			continue
		}
		days = append(days, d)
	}
	return days
}

func schedulerConfig(logger *slog.Logger) (slots.Config, error) {
	return slots.NewConfig(
		config.Int("CONFESSION_DURATION_MINUTES", 20),
		parseDays(config.List("CONFESSION_AVAILABLE_DAYS", []string{"0", "5", "6"}), logger),
		config.List("CONFESSION_TIME_SLOTS", []string{"18:00", "18:30", "19:00", "19:30", "20:00"}),
		config.String("CONFESSION_TIMEZONE", "America/Chicago"),
	)
}

func main() {
	service := config.String("SERVICE_NAME", "parish-api")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	schedCfg, err := schedulerConfig(logger)
	if err != nil {
		logger.Error("invalid scheduler configuration", "err", err)
		panic(err)
	}

	// Stores: Postgres when DATABASE_URL is set, in-memory otherwise.
	var (
		store        storage.BookingStore
		scheduleRepo events.Repository
	)
	dbURL := config.String("DATABASE_URL", "")
	var pool *db.Pool
	if dbURL != "" {
		pool, err = db.Open(ctx, dbURL)
		if err != nil {
			logger.Error("db connection failed", "err", err)
			panic(err)
		}
		defer pool.Close()

		pg := storage.NewPostgresStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Error("booking schema setup failed", "err", err)
			panic(err)
		}
		pgEvents := events.NewPostgresRepository(pool)
		if err := pgEvents.EnsureSchema(ctx); err != nil {
			logger.Error("schedule schema setup failed", "err", err)
			panic(err)
		}
		store = pg
		scheduleRepo = pgEvents
	} else {
		logger.Warn("DATABASE_URL not set, bookings will not survive restarts")
		store = storage.NewMemoryStore()
		scheduleRepo = events.NewMemoryRepository()
	}

	var rdb *redis.Client
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr})
		defer rdb.Close()
	}

	// Notification sinks are all optional; the dispatcher fans out to
	// whichever are configured.
	var sinks []notify.Sink
	kafkaBrokers := config.String("KAFKA_BROKERS", "")
	kafkaSink := notify.NewKafkaSink(kafkaBrokers)
	if kafkaSink != nil {
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
	}
	if emailSink := notify.NewEmailSink(
		config.String("SMTP_HOST", ""),
		config.String("SMTP_PORT", "25"),
		config.String("SMTP_FROM", ""),
	); emailSink != nil {
		sinks = append(sinks, emailSink)
	}
	dispatcher := notify.NewDispatcher(logger, sinks...)
	defer dispatcher.Wait()

	engine := booking.NewEngine(
		store,
		schedCfg,
		config.String("CONFESSION_CLERGY_NAME", "Fr. Bishoy"),
		config.String("CONFESSION_LOCATION", "St. Kyrillos Coptic Orthodox Church"),
		dispatcher,
		logger,
	)

	adminUsers, err := handlers.ParseAdminUsers(config.String("ADMIN_USERS", ""))
	if err != nil {
		logger.Error("invalid ADMIN_USERS", "err", err)
		panic(err)
	}
	adminSecret := config.String("ADMIN_JWT_SECRET", "")
	if adminSecret == "" {
		adminSecret = uuid.NewString()
		logger.Warn("ADMIN_JWT_SECRET not set, admin sessions will not survive restarts")
	}
	loginLimiter := httpx.NewRateLimiter(config.Int("LOGIN_RATE_LIMIT", 5), time.Minute)

	liveClient := livestream.NewClient(
		config.String("YOUTUBE_API_KEY", ""),
		config.String("YOUTUBE_CHANNEL_HANDLE", "@SaintKyrillosTN"),
	)
	liveSvc := livestream.NewService(liveClient, rdb, config.Seconds("LIVE_CACHE_TTL_SECONDS", time.Minute), logger)

	confessionHandler := handlers.NewConfessionHandler(engine)
	scheduleHandler := handlers.NewScheduleHandler(scheduleRepo, adminSecret, logger)
	adminHandler := handlers.NewAdminHandler(adminUsers, adminSecret, loginLimiter, logger)
	liveHandler := handlers.NewLiveHandler(liveSvc, logger)

	var checks []runtime.ReadyCheck
	if pool != nil {
		checks = append(checks, runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)})
	}
	if rdb != nil {
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	if kafkaBrokers != "" {
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(kafkaBrokers)})
	}
	mux := runtime.NewBaseMuxWithReady(checks...)

	// Booking submissions get their own limiter so an availability-polling
	// client cannot be locked out of booking.
	bookLimit := config.Int("BOOKING_RATE_LIMIT", 10)
	bookWindow := config.Seconds("BOOKING_RATE_WINDOW_SECONDS", time.Minute)
	var bookLimited httpx.Middleware
	if rdb != nil {
		bookLimited = httpx.NewRedisRateLimiter(rdb, bookLimit, bookWindow, "book").Middleware(logger, true)
	} else {
		bookLimited = httpx.NewRateLimiter(bookLimit, bookWindow).Middleware()
	}

	mux.HandleFunc("/api/v1/confession/availability", confessionHandler.Availability)
	mux.Handle("/api/v1/confession/book", bookLimited(http.HandlerFunc(confessionHandler.Book)))
	mux.HandleFunc("/api/v1/confession/booking", confessionHandler.Lookup)
	mux.HandleFunc("/api/v1/confession/cancel", confessionHandler.Cancel)
	mux.HandleFunc("/api/v1/schedule", scheduleHandler.Collection)
	mux.HandleFunc("/api/v1/schedule/", scheduleHandler.Item)
	mux.HandleFunc("/api/v1/youtube-live", liveHandler.Status)
	mux.HandleFunc("/api/v1/admin/login", adminHandler.Login)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithRecover(logger),
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: config.List("CORS_ALLOWED_ORIGINS", nil),
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAge:         10 * time.Minute,
		}),
		httpx.WithBodyLimit(1<<20),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "parish-api")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

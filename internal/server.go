package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"

	"github.com/Motzart/exercises-app/internal/auth"
	"github.com/Motzart/exercises-app/internal/config"
	"github.com/Motzart/exercises-app/internal/db"
	"github.com/Motzart/exercises-app/internal/middleware"
	"github.com/Motzart/exercises-app/internal/practice/exercises"
	"github.com/Motzart/exercises-app/internal/practice/notes"
	"github.com/Motzart/exercises-app/internal/practice/playlists"
	"github.com/Motzart/exercises-app/internal/practice/sessions"
	"github.com/Motzart/exercises-app/internal/practice/stats"
	"github.com/Motzart/exercises-app/internal/practice/timer"
	"github.com/Motzart/exercises-app/internal/telemetry/metrics"
	"github.com/Motzart/exercises-app/internal/telemetry/tracing"
	"github.com/Motzart/exercises-app/pkg"
)

const queryCacheExpiration = 5 * time.Minute

type tokenResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config *config.Config
	loc    *time.Location
	dbPool *pgxpool.Pool

	redisClient *redis.Client
	tokens      tokenResolver
	rateLimiter middleware.RequestRateLimiter

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	DBUser                  string
	DBPassword              string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	loc, err := params.Config.Location()
	if err != nil {
		return nil, err
	}

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		DBUser:         params.DBUser,
		DBPassword:     params.DBPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	} else if err := db.Migrate(ctx, dbPool); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("practice", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "practice-service", rdb)
	if err != nil {
		return nil, err
	}

	return &Server{
		config:      params.Config,
		loc:         loc,
		dbPool:      dbPool,
		versionInfo: params.VersionInfo,

		redisClient: rdb,
		tokens:      auth.NewTokens(auth.DefaultTTL, rdb),
		rateLimiter: redis_rate.NewLimiter(rdb),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("practice-router"))

	sessionsRepo := sessions.NewRepo(s.dbPool)
	exercisesRepo := exercises.NewRepo(s.dbPool)
	statsEngine := stats.NewEngine(
		sessionsRepo,
		stats.WithLocation(s.loc),
		stats.WithMetrics(s.metricsManager),
	)

	r.HandleFunc("/health", s.handleHealth).Methods("GET").Name("health")
	r.HandleFunc("/version", s.handleVersion).Methods("GET").Name("version")

	sessionsHandler := sessions.NewHandler(sessionsRepo, s.metricsManager, s.loc)
	sessionsRateLimit := middleware.RateLimit(
		s.rateLimiter,
		"sessions",
		s.config.RateLimitSessionsPerMin,
		s.metricsManager,
	)
	r.Handle("/sessions", sessionsRateLimit(http.HandlerFunc(sessionsHandler.HandleAdd))).Methods("POST", "OPTIONS").Name("new-session")
	r.HandleFunc("/sessions", sessionsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-sessions")

	timerHandler := timer.NewHandler(timer.NewRegistry(sessionsRepo, s.metricsManager, time.Now))
	r.HandleFunc("/timers", timerHandler.HandleOpen).Methods("POST", "OPTIONS").Name("open-timer")
	r.HandleFunc("/timers/{id}", timerHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-timer")
	r.HandleFunc("/timers/{id}/start", timerHandler.HandleStart).Methods("POST", "OPTIONS").Name("start-timer")
	r.HandleFunc("/timers/{id}/pause", timerHandler.HandlePause).Methods("POST", "OPTIONS").Name("pause-timer")
	r.HandleFunc("/timers/{id}/resume", timerHandler.HandleResume).Methods("POST", "OPTIONS").Name("resume-timer")
	r.HandleFunc("/timers/{id}/finish", timerHandler.HandleFinish).Methods("POST", "OPTIONS").Name("finish-timer")
	r.HandleFunc("/timers/{id}", timerHandler.HandleDiscard).Methods("DELETE", "OPTIONS").Name("discard-timer")

	statsHandler := stats.NewHandler(statsEngine)
	r.HandleFunc("/stats/summary", statsHandler.HandleSummary).Methods("GET", "OPTIONS")
	r.HandleFunc("/stats/range", statsHandler.HandleRange).Methods("GET", "OPTIONS")
	r.HandleFunc("/stats/weekdays", statsHandler.HandleWeekdays).Methods("GET", "OPTIONS")
	r.HandleFunc("/stats/daily", statsHandler.HandleDaily).Methods("GET", "OPTIONS")
	r.HandleFunc("/stats/history", statsHandler.HandleHistory).Methods("GET", "OPTIONS")
	r.HandleFunc("/stats/top", statsHandler.HandleTop).Methods("GET", "OPTIONS")
	r.HandleFunc("/stats/average", statsHandler.HandleAverage).Methods("GET", "OPTIONS")
	r.HandleFunc("/stats/practice-days", statsHandler.HandlePracticeDays).Methods("GET", "OPTIONS")
	r.HandleFunc("/stats/streak", statsHandler.HandleStreak).Methods("GET", "OPTIONS")
	r.HandleFunc("/stats/heatmap", statsHandler.HandleHeatmap).Methods("GET", "OPTIONS")
	r.HandleFunc("/stats/week-exercises", statsHandler.HandleWeekExercises).Methods("GET", "OPTIONS")

	exercisesHandler := exercises.NewHandler(
		exercises.NewService(
			exercisesRepo,
			sessionsRepo,
			exercises.NewQueryCache(s.config.QueryCacheSizeMB, queryCacheExpiration, s.metricsManager),
			s.metricsManager,
		),
		statsEngine,
	)
	r.HandleFunc("/exercises", exercisesHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-exercise")
	r.HandleFunc("/exercises", exercisesHandler.HandleList).Methods("GET", "OPTIONS").Name("list-exercises")
	r.HandleFunc("/exercises/count", exercisesHandler.HandleCount).Methods("GET", "OPTIONS").Name("count-exercises")
	r.HandleFunc("/exercises/status", exercisesHandler.HandleStatus).Methods("GET", "OPTIONS").Name("exercises-status")
	r.HandleFunc("/exercises/{id}", exercisesHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-exercise")
	r.HandleFunc("/exercises/{id}", exercisesHandler.HandleUpdate).Methods("PATCH", "OPTIONS").Name("update-exercise")
	r.HandleFunc("/exercises/{id}/favorite", exercisesHandler.HandleFavorite).Methods("PUT", "OPTIONS").Name("favorite-exercise")
	r.HandleFunc("/exercises/{id}", exercisesHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-exercise")

	notesHandler := notes.NewHandler(notes.NewRepo(s.dbPool), s.metricsManager)
	r.HandleFunc("/notes", notesHandler.HandleList).Methods("GET", "OPTIONS").Name("list-notes")
	r.HandleFunc("/notes", notesHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-note")
	r.HandleFunc("/notes/{id}", notesHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("remove-note")

	playlistsHandler := playlists.NewHandler(playlists.NewRepo(s.dbPool), exercisesRepo)
	r.HandleFunc("/playlists", playlistsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-playlist")
	r.HandleFunc("/playlists", playlistsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-playlists")
	r.HandleFunc("/playlists/{id}", playlistsHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-playlist")
	r.HandleFunc("/playlists/{id}", playlistsHandler.HandleUpdate).Methods("PATCH", "OPTIONS").Name("update-playlist")
	r.HandleFunc("/playlists/{id}", playlistsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-playlist")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.tokens, s.metricsManager)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.dbPool != nil {
		if err := s.dbPool.Ping(r.Context()); err != nil {
			log.Errorf("health: ping db: %s", err)
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	pkg.WriteTextResponseOK(w, "ok")
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, s.versionInfo)
}

func (s *Server) Serve(host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      otelhttp.NewHandler(s.routerSetup(), "practice-server"),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{Registry: s.promRegistry},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() error {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	var err error
	if s.httpServer != nil {
		if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown http server: %w", shutdownErr))
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if shutdownErr := s.metricsHttpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown metrics server: %w", shutdownErr))
		}
		log.Warnln("metrics server shut down")
	}

	if s.redisClient != nil {
		if closeErr := s.redisClient.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("close redis client: %w", closeErr))
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	return err
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}

package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/middleware"
	"github.com/2beens/fittrack/internal/misc"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/theme"
	"github.com/2beens/fittrack/internal/tracker"
	"github.com/2beens/fittrack/internal/tracker/mcp"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config  *config.Config
	env     *config.Env
	backend *Backend

	store        *tracker.Store
	seeder       *tracker.Seeder
	resetter     *tracker.Resetter
	sessions     *auth.SessionHolder
	loginChecker *auth.LoginChecker
	rateLimiter  middleware.RequestRateLimiter

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()

	unsubscribe []func()
}

type NewServerParams struct {
	Config      *config.Config
	Env         *config.Env
	VersionInfo string
	// Backend overrides the configured storage, used in tests.
	Backend *Backend
	// HTTPClient for the auth service; a traced client when nil.
	HTTPClient *http.Client
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.Env.HoneycombEnabled, "fittrack-backend")
	if err != nil {
		return nil, err
	}

	backend := params.Backend
	if backend == nil {
		backend, err = OpenBackend(ctx, OpenBackendParams{
			Config:         params.Config,
			RedisPassword:  params.Env.RedisPassword,
			TracingEnabled: params.Env.HoneycombEnabled,
		})
		if err != nil {
			otelShutdown()
			return nil, fmt.Errorf("open storage: %w", err)
		}
	}

	promRegistry := metrics.SetupPrometheus(backend.Collectors...)
	metricsManager := metrics.NewManager("fittrack", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		}
	}
	authClient, err := auth.NewClient(params.Env.AuthAPIURL, params.Env.AuthAnonKey, httpClient)
	if err != nil {
		backend.Close()
		otelShutdown()
		return nil, fmt.Errorf("auth client: %w", err)
	}

	s := &Server{
		versionInfo:  params.VersionInfo,
		config:       params.Config,
		env:          params.Env,
		backend:      backend,
		sessions:     auth.NewSessionHolder(authClient, backend.KV),
		loginChecker: auth.NewLoginChecker(authClient, params.Config.SessionCacheTTL()),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}
	if backend.RedisClient != nil {
		s.rateLimiter = redis_rate.NewLimiter(backend.RedisClient)
	}

	s.store = tracker.NewStore(backend.KV)
	s.seeder = tracker.NewSeeder(s.store, time.Now)
	s.resetter = tracker.NewResetter(s.store, func(ctx context.Context) error {
		_, err := s.bootstrap(ctx)
		return err
	})

	s.unsubscribe = append(s.unsubscribe,
		s.store.Subscribe(s.recordsMetrics),
		s.sessions.Subscribe(func(event auth.Event, session *auth.Session) {
			metricsManager.CounterAuthEvents.WithLabelValues(string(event)).Inc()
			if session != nil {
				log.Debugf("auth event [%s] for user %s", event, session.User.ID)
			} else {
				log.Debugf("auth event [%s]", event)
			}
		}),
	)

	if _, err := s.bootstrap(ctx); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("bootstrap store: %w", err)
	}
	s.recordsMetrics(s.store.State())

	if err := s.sessions.Init(ctx); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("init session: %w", err)
	}

	return s, nil
}

func (s *Server) bootstrap(ctx context.Context) (tracker.SeedResult, error) {
	res, err := tracker.Bootstrap(ctx, s.store, s.seeder)
	if err != nil {
		return res, err
	}
	if res.Seeded {
		s.metricsManager.CounterSeeds.Inc()
	} else {
		log.Debugf("seeding skipped: %s", res.Reason)
	}
	return res, nil
}

func (s *Server) recordsMetrics(state tracker.State) {
	summary := state.Summary()
	s.metricsManager.GaugeRecords.WithLabelValues("workout").Set(float64(summary.Workouts))
	s.metricsManager.GaugeRecords.WithLabelValues("diet").Set(float64(summary.DietEntries))
	s.metricsManager.GaugeRecords.WithLabelValues("progress").Set(float64(summary.ProgressEntries))
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	miscHandler := misc.NewHandler(s.versionInfo)
	r.HandleFunc("/", miscHandler.HandleRoot).Methods("GET", "POST", "OPTIONS").Name("root")
	r.HandleFunc("/version", miscHandler.HandleGetVersionInfo).Methods("GET").Name("version")

	authHandler := auth.NewHandler(s.sessions, s.loginChecker)
	r.HandleFunc("/auth/session", authHandler.HandleGetSession).Methods("GET").Name("get-session")
	authSubrouter := r.PathPrefix("/auth").Subrouter()
	authSubrouter.HandleFunc("/session", authHandler.HandleSignIn).Methods("POST", "OPTIONS").Name("sign-in")
	authSubrouter.HandleFunc("/signout", authHandler.HandleSignOut).Methods("POST", "OPTIONS").Name("sign-out")
	authSubrouter.Use(middleware.RateLimit(s.rateLimiter, s.metricsManager, "auth", s.config.AuthRateLimitAllowedPerMin))

	themeHandler := theme.NewHandler(s.backend.KV)
	r.HandleFunc("/theme", themeHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-theme")
	r.HandleFunc("/theme", themeHandler.HandlePut).Methods("PUT").Name("save-theme")

	trackerHandler := tracker.NewHandler(s.store, s.resetter, s.metricsManager)
	r.HandleFunc("/workouts", trackerHandler.HandleListWorkouts).Methods("GET").Name("list-workouts")
	r.HandleFunc("/workouts", trackerHandler.HandleAddWorkout).Methods("POST", "OPTIONS").Name("new-workout")
	r.HandleFunc("/diet", trackerHandler.HandleListDietEntries).Methods("GET").Name("list-diet")
	r.HandleFunc("/diet", trackerHandler.HandleAddDietEntry).Methods("POST", "OPTIONS").Name("new-diet")
	r.HandleFunc("/progress", trackerHandler.HandleListProgressEntries).Methods("GET").Name("list-progress")
	r.HandleFunc("/progress", trackerHandler.HandleAddProgressEntry).Methods("POST", "OPTIONS").Name("new-progress")
	r.HandleFunc("/summary", trackerHandler.HandleSummary).Methods("GET").Name("summary")

	mcpHandler := mcp.NewHandler(s.store)
	r.HandleFunc("/mcp", mcpHandler.HandleCall).Methods("POST", "OPTIONS").Name("mcp")

	adminSubrouter := r.PathPrefix("/admin").Subrouter()
	adminSubrouter.HandleFunc("/duplicates", trackerHandler.HandleDuplicates).Methods("GET").Name("duplicates")
	adminSubrouter.HandleFunc("/reset", trackerHandler.HandleReset).Methods("POST", "OPTIONS").Name("reset")
	adminSubrouter.Use(middleware.AdminBasicAuth(s.env.AdminUser, s.env.AdminPassHash))
	adminSubrouter.Use(middleware.RateLimit(s.rateLimiter, s.metricsManager, "admin", s.config.AuthRateLimitAllowedPerMin))

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.env.AppURL))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

// Serve starts the api and metrics listeners and the session watcher.
// The watcher stops with ctx.
func (s *Server) Serve(ctx context.Context, host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
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

	go s.sessions.Watch(ctx, s.config.SessionCheckInterval())

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	s.cleanup()
}

func (s *Server) cleanup() {
	for _, unsubscribe := range s.unsubscribe {
		unsubscribe()
	}
	s.sessions.Close()

	s.otelShutdown()
	log.Trace("otel shut down ...")

	s.backend.Close()
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

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AppProvider interface {
	Run() error
	Serve() func() error
	Stop(context.Context, context.Context) func() error
}

type App struct {
	logger      *zap.Logger
	config      *Config
	server      *http.Server
	redisClient *redis.Client
	cleanups    []func()
	workers     []func(context.Context) error
}

// NewApp provides an instance of App.
func NewApp() (AppProvider, error) {
	config, err := LoadAndInitConfigs(GitCommit, GitTag, BuildTime)
	if err != nil {
		return nil, fmt.Errorf("failed to setup app configuration: %s", err)
	}

	clock := NewClock(config.IsProduction)
	tickClock := NewTickClock(clock)
	logWriter := NewRSyncWriter(config, clock)
	logger, flusher := SetupLogging(config, logWriter, tickClock)
	cleanups := []func(){
		func() { _ = flusher() },
		func() {
			if cerr := logWriter.Close(); cerr != nil {
				fmt.Println("error during closing of log file: ", cerr)
			}
		},
	}

	// The reconcile queue lives on redis whatever the documents driver is.
	redisClient, err := GetRedisClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis server: %s", err)
	}

	store, closeStore, err := openDocumentStore(logger, config, redisClient)
	if err != nil {
		_ = redisClient.Close()
		return nil, err
	}
	if closeStore != nil {
		cleanups = append(cleanups, closeStore)
	}
	logger.Info("document store ready", zap.String("storage.driver", config.Storage.Driver))

	queue := NewRedisQueue(redisClient, config.Reconcile.PopTimeout)
	ids := NewIDsHandler()
	services := NewServices(logger, config, clock, ids, store, queue)

	apiService := NewAPIHandler(
		logger,
		config,
		&Statistics{
			version:   config.GitTag,
			container: IsAppRunningInDocker(),
			started:   clock.Now(),
			runtime:   runtime.Version(),
			platform:  runtime.GOOS + "/" + runtime.GOARCH,
		},
		clock,
		ids,
		services,
	)

	// Use git commit in case the tag is not set.
	if config.GitTag == "" {
		apiService.stats.version = config.GitCommit
	}

	middlewaresPublic, middlewaresOps := apiService.MiddlewaresStacks()
	router := apiService.SetupRoutes(httprouter.New(),
		&MiddlewareMap{
			public: middlewaresPublic.Chain,
			ops:    middlewaresOps.Chain,
		},
	)
	routerWithTimeout := http.TimeoutHandler(
		router,
		config.Server.RequestTimeout,
		"Timeout. Processing taking too long. Please reach out to support.")

	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
		Handler:        routerWithTimeout,
		ReadTimeout:    config.Server.ReadTimeout,
		WriteTimeout:   config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // Max headers size : 1MB
		ConnContext:    SaveConnInContext,
	}

	consumer := NewReconcileConsumer(logger, queue, services.Inventory)
	periodic := NewPeriodicReconciler(logger, tickClock, config.Reconcile.Interval, services.Inventory)

	return &App{
		logger:      logger,
		config:      config,
		server:      srv,
		redisClient: redisClient,
		cleanups:    cleanups,
		workers: []func(ctx context.Context) error{
			func(ctx context.Context) error {
				return consumer.Consume(ctx, config.Reconcile.QueueName)
			},
			periodic.Run,
		},
	}, nil
}

// openDocumentStore builds the store of the configured driver with its
// optional closer.
func openDocumentStore(logger *zap.Logger, config *Config, redisClient *redis.Client) (DocumentStore, func(), error) {
	if config.Storage.Driver != BoltDriver {
		return NewRedisDocumentStore(logger, config, redisClient), nil, nil
	}
	db, err := GetBoltDBClient(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to boltDB server: %s", err)
	}
	closer := func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("failed to close boltdb", zap.Error(cerr))
		}
	}
	return NewBoltDocumentStore(logger, db), closer, nil
}

// Run starts the api web server and a goroutine which is responsible to stop it.
func (app *App) Run() error {
	defer app.Clean()
	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(nCtx)

	g.Go(app.StartWorkers(gCtx, g))
	g.Go(app.Serve())
	g.Go(app.Stop(nCtx, gCtx))

	err := g.Wait()
	app.logger.Info("api server stopped",
		zap.String("app.host", app.config.Server.Host),
		zap.String("app.port", app.config.Server.Port),
		zap.Error(err),
	)
	return err
}

// Clean calls all registered cleanups functions in reverse order.
func (app *App) Clean() {
	for i := len(app.cleanups) - 1; i >= 0; i-- {
		app.cleanups[i]()
	}
}

// Serve starts the api web server. It uses TLS when both
// certificate and key files are configured.
func (app *App) Serve() func() error {
	return func() error {
		app.logger.Info("api server starting",
			zap.String("app.host", app.config.Server.Host),
			zap.String("app.port", app.config.Server.Port),
		)
		var err error
		if app.config.Server.CertsFile != "" && app.config.Server.KeyFile != "" {
			err = app.server.ListenAndServeTLS(app.config.Server.CertsFile, app.config.Server.KeyFile)
		} else {
			err = app.server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return err
	}
}

// Stop listens for the group context and triggers the server graceful shutdown.
// A brutal shutdown follows when the graceful one did not complete. It always
// returns nil so the group only reports the `Serve` result.
func (app *App) Stop(nCtx, gCtx context.Context) func() error {
	return func() error {
		<-gCtx.Done()

		if nCtx.Err() != nil {
			app.logger.Info("api server stopping. reason: requested to stop")
		} else {
			app.logger.Info("api server stopping. reason: errored at running")
		}

		sCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		defer cancel()
		err := app.server.Shutdown(sCtx)
		switch {
		case err == nil, errors.Is(err, http.ErrServerClosed):
			app.logger.Info("api server graceful shutdown succeeded")
		case errors.Is(err, context.DeadlineExceeded):
			app.logger.Info("api server graceful shutdown timed out")
		default:
			app.logger.Info("api server graceful shutdown failed", zap.Error(err))
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Info("api server going to force shutdown", zap.Error(app.server.Close()))
		}
		_ = app.redisClient.Close()
		return nil
	}
}

// StartWorkers runs the background workers into separate controlled goroutines.
func (app *App) StartWorkers(gCtx context.Context, g *errgroup.Group) func() error {
	return func() error {
		for _, work := range app.workers {
			work := work
			g.Go(func() error {
				return work(gCtx)
			})
		}
		return nil
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/Luismorlan/coursehub/aggregation"
	"github.com/Luismorlan/coursehub/app_config"
	"github.com/Luismorlan/coursehub/events"
	"github.com/Luismorlan/coursehub/relation"
	"github.com/Luismorlan/coursehub/server"
	"github.com/Luismorlan/coursehub/server/middlewares"
	"github.com/Luismorlan/coursehub/service"
	"github.com/Luismorlan/coursehub/store"
	. "github.com/Luismorlan/coursehub/utils"
	"github.com/Luismorlan/coursehub/utils/dotenv"
	. "github.com/Luismorlan/coursehub/utils/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
)

var (
	configPath string
	bypassAuth bool
	noTracing  bool

	rootCmd = &cobra.Command{
		Use:   "coursehub-server",
		Short: "Course forum api server",
		RunE:  runServer,
	}
)

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to a yaml config file. Environment variables override it.")
	rootCmd.Flags().BoolVar(&bypassAuth, "bypass-auth", false, "Trust the "+middlewares.BypassHeader+" header instead of verifying tokens. Development only.")
	rootCmd.Flags().BoolVar(&noTracing, "no-tracing", false, "Do not start the Datadog tracer and profiler.")
}

func cleanup() {
	if !noTracing {
		CloseProfiler()
		CloseTracer()
	}
	Log.Info("api server shutdown")
}

func main() {
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewDogStatsdClient(addr string) (*statsd.Client, error) {
	client, err := statsd.New(addr)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to create statsd client for %s", addr)
	}
	return client, nil
}

func newAuthMiddleware(ctx context.Context, conf *app_config.CoursehubAppConfig) (gin.HandlerFunc, error) {
	switch conf.AuthMode {
	case app_config.AuthBypass:
		Log.Warn("authentication bypassed, trusting " + middlewares.BypassHeader)
		return middlewares.BypassAuth(), nil
	case app_config.AuthCognito:
		client, err := middlewares.NewCognitoClient(ctx, conf.CognitoRegion)
		if err != nil {
			return nil, err
		}
		return middlewares.Auth(middlewares.NewCognitoAuthenticator(client)), nil
	default:
		return middlewares.Auth(middlewares.NewJWTAuthenticator(conf.JWTSecret)), nil
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	defer cleanup()

	opts := []app_config.Option{}
	if bypassAuth {
		opts = append(opts, app_config.WithAuthMode(app_config.AuthBypass))
	}
	conf, err := app_config.ParseCoursehubAppConfig(configPath, opts...)
	if err != nil {
		return err
	}
	if !noTracing {
		StartTracer(ServiceName)
		StartProfiler(ServiceName)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := store.Open(ctx, conf.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	bus := events.NewBus(events.NewLogrusAdapter(Log))
	defer bus.Close()

	engine := relation.NewEngine(s,
		relation.WithRetryPolicy(conf.Retry),
		relation.WithObserver(bus),
	)
	views := aggregation.NewBuilder(s, aggregation.WithMaxConcurrency(conf.ViewConcurrency))
	svc := service.New(s, engine, views, bus)

	// Relation changes are counted in Datadog alongside traces and profiles.
	var counter events.StatsdCounter
	if !noTracing {
		client, err := NewDogStatsdClient(conf.StatsdAddr)
		if err != nil {
			return err
		}
		defer client.Close()
		counter = client
	}

	janitor := events.NewJanitor(s, bus, conf.Retry)
	modules := events.NewEngine(ctx, janitor, events.NewReporter(bus, counter))
	modulesDone := make(chan struct{})
	go func() {
		defer close(modulesDone)
		modules.Run()
	}()
	// Deletions published before the janitor subscribes would be dropped.
	select {
	case <-janitor.Ready():
	case <-ctx.Done():
	}

	auth, err := newAuthMiddleware(ctx, conf)
	if err != nil {
		return err
	}

	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()
	router.Use(cors.Default())
	if !noTracing {
		router.Use(gintrace.Middleware(ServiceName))
	}
	server.NewHandlers(svc).Register(router, auth)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", conf.Port),
		Handler: router,
	}
	serveErr := make(chan error, 1)
	go func() {
		Log.WithField("port", conf.Port).Info("api server starts up")
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
	case <-ctx.Done():
		Log.Info("stop signal received, draining requests")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app_config.ShutdownGrace)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		Log.WithError(shutdownErr).Error("fail to shut down http server")
	}
	modules.Shutdown()
	<-modulesDone

	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

package main

import (
	"context"
	"flag"
	"net/http"
	_ "net/http/pprof"
	"strconv"
	"time"

	"github.com/armon/go-metrics"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/weaveworks/common/logging"
	"github.com/weaveworks/common/signals"
	"golang.org/x/sync/errgroup"

	"github.com/weaveworks/xltop/app"
	"github.com/weaveworks/xltop/common/middleware"
	"github.com/weaveworks/xltop/common/xfer"
	"github.com/weaveworks/xltop/config"
)

var version = "dev" // set at build time

const shutdownTimeout = 5 * time.Second

type stopFunc func()

func (f stopFunc) Stop() error {
	f()
	return nil
}

// router creates the mux for all the various app components.
func router(s *app.Server, prefix string) http.Handler {
	router := mux.NewRouter()
	app.RegisterInstrumentationRoutes(router)
	router.PathPrefix("/debug/pprof").Handler(http.DefaultServeMux)
	s.RegisterRoutes(router)
	return middleware.Merge(
		middleware.StripPrefix(prefix),
		middleware.Log{},
		middleware.Instrument{
			Router:   router,
			Duration: app.RequestDuration,
		},
	).Wrap(router)
}

func serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler}
	errc := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func appMain() {
	var (
		lf         logFlags
		configFile = flag.String("config", "xltop.yaml", "configuration file")
		listen     = flag.String("http.address", ":"+strconv.Itoa(xfer.AppPort), "webserver listen address")
		prefix     = flag.String("http.prefix", "", "path prefix the API is served below")
		opts       app.Options
	)
	lf.register("app")
	flag.IntVar(&opts.FollowBuffer, "follow.buffer", app.DefaultFollowBuffer, "events queued per follow connection before dropping")
	flag.IntVar(&opts.DefaultLimit, "top.limit", app.DefaultLimit, "number of entries returned by top queries without a limit")
	flag.Float64Var(&opts.BadLineLogRate, "log.bad-lines", 1, "malformed report lines logged per second")
	flag.Parse()
	lf.apply()

	// Setup in memory metrics sink
	inm := metrics.NewInmemSink(time.Minute, 2*time.Minute)
	sig := metrics.DefaultInmemSignal(inm)
	defer sig.Stop()
	metrics.NewGlobal(metrics.DefaultConfig("xltop"), inm)

	defer log.Info("app exiting")
	app.Version = version
	log.Infof("app starting, version %s", version)

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	e, err := cfg.Build()
	if err != nil {
		log.Fatalf("Error in configuration %s: %v", *configFile, err)
	}
	server := app.NewServer(e, opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return serve(ctx, *listen, router(server, *prefix)) })
	g.Go(func() error { return e.Run(ctx) })
	if cfg.Kafka.Enabled() {
		source, err := app.NewKafkaSource(server, cfg.Kafka)
		if err != nil {
			log.Fatalf("Error starting kafka consumer: %v", err)
		}
		defer source.Close()
		log.Infof("consuming %s from %v", cfg.Kafka.Topic, cfg.Kafka.Brokers)
		g.Go(func() error { return source.Run(ctx) })
	}

	go signals.SignalHandlerLoop(logging.Logrus(log.StandardLogger()), stopFunc(cancel))
	if err := g.Wait(); err != nil && err != http.ErrServerClosed {
		log.Errorf("app: %v", err)
	}
}

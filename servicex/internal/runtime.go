package internal

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/red2n/opentele/brokerx"
	"github.com/red2n/opentele/configx"
	"github.com/red2n/opentele/core/log"
	"github.com/red2n/opentele/httpx"
	"github.com/red2n/opentele/idlex"
	"github.com/red2n/opentele/logx"
	"github.com/red2n/opentele/obsx"
	"github.com/red2n/opentele/runtimex"
	"github.com/red2n/opentele/storex"
)

// redacted lists log fields that never appear in clear text.
var redacted = []string{"connection_string", "uri", storex.URIKey}

// Hooks replaces external collaborators, for tests. Zero values select the
// production implementations.
type Hooks struct {
	Sources       []configx.Source
	LogWriter     io.Writer
	StoreDialer   storex.Dialer
	BrokerFactory brokerx.Factory
	HomeDir       func() (string, error)
	Ready         func(rt *runtimex.Runtime)
}

// ServiceRuntime wires configuration, logging, metrics and the lifecycle
// orchestrator together.
type ServiceRuntime struct {
	hooks   Hooks
	cfg     Config
	logger  log.Logger
	metrics *obsx.Provider
	rt      *runtimex.Runtime
}

// NewServiceRuntime creates a new service runtime instance.
func NewServiceRuntime(hooks Hooks) *ServiceRuntime {
	if hooks.LogWriter == nil {
		hooks.LogWriter = os.Stderr
	}
	if hooks.Sources == nil {
		hooks.Sources = configx.DefaultSources(EnvFileFromEnvironment())
	}
	return &ServiceRuntime{hooks: hooks}
}

// Config returns the bound configuration.
func (r *ServiceRuntime) Config() Config {
	return r.cfg
}

// Run loads configuration, builds every component and hands them to the
// orchestrator. It returns the process exit code.
func (r *ServiceRuntime) Run(ctx context.Context) int {
	boot := logx.New(logx.WithWriter(r.hooks.LogWriter), logx.WithService("Service"), logx.WithSensitiveFields(redacted...))
	if err := r.initializeConfig(ctx, boot); err != nil {
		boot.Error(err, "configuration failed")
		return 1
	}

	r.initializeLogger()
	r.logger.Info("starting service",
		log.Str("version", r.cfg.ServiceVersion),
		log.Str("build", BuildTime),
	)

	if err := r.initializeObservability(ctx); err != nil {
		r.logger.Error(err, "metrics initialization failed")
		return 1
	}
	defer r.shutdownObservability()

	rt, err := r.build()
	if err != nil {
		r.logger.Error(err, "service assembly failed")
		return 1
	}
	r.rt = rt
	if r.hooks.Ready != nil {
		r.hooks.Ready(rt)
	}

	code := runtimex.Run(ctx, rt)
	r.logger.Info("service exited", log.Int("code", code), log.Str("state", rt.State().String()))
	return code
}

// initializeConfig loads and binds configuration.
func (r *ServiceRuntime) initializeConfig(ctx context.Context, logger log.Logger) error {
	mgr, err := configx.NewManager(ctx, configx.Options{
		Logger:  logger,
		Sources: r.hooks.Sources,
	})
	if err != nil {
		return err
	}

	var cfg Config
	if err := mgr.Bind(&cfg); err != nil {
		return err
	}
	if err := configx.Validate(&cfg); err != nil {
		return err
	}
	r.cfg = cfg
	return nil
}

// initializeLogger builds the one logger every component derives from.
func (r *ServiceRuntime) initializeLogger() {
	r.logger = logx.New(
		logx.WithWriter(r.hooks.LogWriter),
		logx.WithService(r.cfg.ServiceName),
		logx.WithLevel(logx.ParseLevel(r.cfg.LogLevel)),
		logx.WithFormat(logx.Format(r.cfg.LogFormat)),
		logx.WithColor(r.cfg.LogColor),
		logx.WithSensitiveFields(redacted...),
	)
}

// initializeObservability creates the metrics provider when the ops
// listener is enabled.
func (r *ServiceRuntime) initializeObservability(ctx context.Context) error {
	if r.cfg.MetricsPort == 0 {
		return nil
	}

	provider, err := obsx.NewProvider(ctx, obsx.Options{
		ServiceName:    r.cfg.ServiceName,
		ServiceVersion: r.cfg.ServiceVersion,
	})
	if err != nil {
		return err
	}
	r.metrics = provider

	if err := provider.EnableRuntimeMetrics(ctx); err != nil {
		return err
	}
	return nil
}

func (r *ServiceRuntime) shutdownObservability() {
	if r.metrics == nil {
		return
	}
	if err := r.metrics.Shutdown(context.Background()); err != nil {
		r.logger.Error(err, "metrics shutdown failed")
	}
}

// build assembles the orchestrator from the bound configuration.
func (r *ServiceRuntime) build() (*runtimex.Runtime, error) {
	cfg := r.cfg
	idle := idlex.NewState(time.Now())

	store := storex.NewDocumentStore(storex.DocumentOptions{
		URI:        cfg.MongoURI,
		Database:   cfg.DBName,
		Collection: cfg.MongoCollection,
		Timeout:    cfg.ConnectTimeout,
		Logger:     r.logger,
		Dialer:     r.hooks.StoreDialer,
	})

	var onMessage func(brokerx.Message)
	if r.metrics != nil {
		service, err := r.metrics.NewServiceMetrics(obsx.ServiceMetricsOptions{
			IdleSeconds: func() float64 { return idle.TotalIdle().Seconds() },
			LifecycleState: func() (int64, string) {
				if r.rt == nil {
					return int64(runtimex.StateIdle), runtimex.StateIdle.String()
				}
				s := r.rt.State()
				return int64(s), s.String()
			},
		})
		if err != nil {
			return nil, err
		}
		onMessage = func(msg brokerx.Message) {
			service.MessageReceived(context.Background(), msg.Topic)
		}
	}

	broker := brokerx.NewConnector(brokerx.Options{
		Brokers:        cfg.KafkaBrokers,
		ClientID:       cfg.KafkaClientID,
		GroupID:        cfg.KafkaGroupID,
		Topic:          cfg.KafkaTopic,
		ConnectTimeout: cfg.ConnectTimeout,
		Logger:         r.logger,
		Factory:        r.hooks.BrokerFactory,
		OnMessage:      onMessage,
	})

	monitor, err := idlex.NewMonitor(idlex.Options{
		Logger:    r.logger,
		State:     idle,
		Interval:  cfg.IdleCheckInterval,
		Threshold: cfg.IdleThreshold,
	})
	if err != nil {
		return nil, err
	}

	router := httpx.NewRouter(httpx.RouterOptions{
		Logger:   r.logger,
		Activity: idle,
		HomeDir:  r.hooks.HomeDir,
	})
	server := httpx.NewServer(httpx.ServerOptions{
		Name:    "http",
		Addr:    ListenAddr(cfg.Port),
		Handler: router,
		Routes:  router,
		Logger:  r.logger,
	})

	var extra []runtimex.Listener
	if r.metrics != nil {
		registry := storex.NewRegistry()
		if err := registry.Register("store", store); err != nil {
			return nil, err
		}
		if err := registry.Register("broker", broker); err != nil {
			return nil, err
		}
		extra = append(extra, httpx.NewServer(httpx.ServerOptions{
			Name: "ops",
			Addr: ListenAddr(cfg.MetricsPort),
			Handler: httpx.NewOpsRouter(httpx.OpsOptions{
				Logger:  r.logger,
				Metrics: r.metrics.PrometheusHandler(),
				Health:  registry,
			}),
			Logger: r.logger,
		}))
	}

	return runtimex.New(runtimex.Options{
		Logger:          r.logger,
		Store:           store,
		Broker:          broker,
		Listener:        server,
		Extra:           extra,
		Tasks:           []runtimex.Task{{Name: "idle monitor", Run: monitor.Run}},
		ShutdownTimeout: cfg.ShutdownTimeout,
	})
}

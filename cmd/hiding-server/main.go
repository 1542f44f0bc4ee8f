// Command hiding-server 提供 number、timelong、activation 编码的 HTTP 服务
package main

import (
	"context"
	"flag"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/kochabx/hiding/app"
	"github.com/kochabx/hiding/codec/activation"
	"github.com/kochabx/hiding/config"
	"github.com/kochabx/hiding/core/rate"
	"github.com/kochabx/hiding/core/util/id"
	"github.com/kochabx/hiding/core/validator"
	"github.com/kochabx/hiding/errors"
	"github.com/kochabx/hiding/log"
	middleware "github.com/kochabx/hiding/middleware/http"
	"github.com/kochabx/hiding/service"
	"github.com/kochabx/hiding/store/redis"
	khttp "github.com/kochabx/hiding/transport/http"
	"github.com/kochabx/hiding/transport/http/metrics"
)

var (
	configFile = flag.String("c", "config.yaml", "config file path")
	watch      = flag.Bool("watch", true, "reload codecs when the config file changes")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		log.Error().Err(err).Msg("hiding-server exited")
		os.Exit(1)
	}
}

func run() error {
	var cfg service.Config
	c := config.New(&cfg, config.WithFile(*configFile))
	if err := c.Load(); err != nil {
		return err
	}

	logger, err := log.NewFromConfig(cfg.Log)
	if err != nil {
		return err
	}
	log.SetGlobalLogger(logger)

	binding.Validator = validator.NewGin()
	gin.SetMode(gin.ReleaseMode)

	ctx := context.Background()
	closes := []app.Option{
		app.WithClose("logger", func(context.Context) error { return logger.Close() }, 0),
	}

	var (
		sequence id.Sequence
		limiter  rate.Limiter
	)
	if cfg.Rate.Limit > 0 {
		limiter = rate.NewLocal(cfg.Rate)
	}

	health := cfg.Server.Health
	if cfg.Redis.Enabled() {
		rdb, err := redis.New(ctx, cfg.Redis, redis.WithLogger(logger))
		if err != nil {
			return err
		}
		closes = append(closes, app.WithClose("redis", rdb.Close, 0))

		sequence = redis.NewSequence(rdb, cfg.Activation.SequenceKey, uint64(activation.MaxSerial))
		if cfg.Rate.Limit > 0 {
			limiter = rate.NewSlidingWindow(rdb.Universal(), cfg.Rate)
		}
		health.Checks = map[string]khttp.CheckFunc{
			"redis": func(ctx context.Context) (any, error) {
				st := rdb.Check(ctx)
				if !st.Healthy {
					return st, errors.ServiceUnavailable("redis unhealthy: %s", st.Error)
				}
				return st, nil
			},
		}
	}

	opts := []service.Option{service.WithRegisterer(metrics.Prom.Registry())}
	if sequence != nil {
		opts = append(opts, service.WithSequence(sequence))
	}
	svc, err := service.New(cfg, opts...)
	if err != nil {
		return err
	}
	closes = append(closes, app.WithClose("service", svc.Close, 0))

	if *watch {
		c.OnChange(func() {
			c.Read(func(target any) {
				if err := svc.Reload(*target.(*service.Config)); err != nil {
					log.Error().Err(err).Msg("codec reload failed, keeping previous codecs")
				}
			})
		})
		if err := c.Watch(); err != nil {
			return err
		}
	}

	skip := []string{health.Path, cfg.Server.Metrics.Path}
	engine := gin.New()
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(middleware.LoggerConfig{SkipPaths: skip}),
		middleware.Metrics(metrics.Prom, skip...),
	)
	service.NewHandler(svc, limiter, cfg.Admin).Register(engine)

	server := khttp.NewServer(cfg.Server.Addr, engine,
		khttp.WithMeta(khttp.Meta{Name: "hiding"}),
		khttp.WithMetricsOptions(cfg.Server.Metrics),
		khttp.WithHealthOptions(health),
		khttp.WithTimeoutOptions(cfg.Server.Timeout),
	)

	application := app.New(append(closes, app.WithServer(server))...)
	return application.Start()
}

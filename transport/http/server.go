package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kochabx/hiding/log"
	"github.com/kochabx/hiding/transport"
	"github.com/kochabx/hiding/transport/http/metrics"
)

var _ transport.Server = (*Server)(nil)

const (
	defaultName = "http"
	defaultAddr = ":8080"
)

// Meta is the metadata of the server.
type Meta struct {
	Name string
}

type Server struct {
	meta    Meta
	options Options
	prom    *metrics.Prometheus
	server  *http.Server
}

type Option func(*Server)

func WithMeta(meta Meta) Option {
	return func(s *Server) {
		s.meta = meta
	}
}

// WithPrometheus replaces the registry served on the metrics path, metrics.Prom by default.
func WithPrometheus(p *metrics.Prometheus) Option {
	return func(s *Server) {
		s.prom = p
	}
}

func WithMetricsOptions(metrics MetricsOption) Option {
	return func(s *Server) {
		if err := metrics.init(); err != nil {
			log.Error().Err(err).Send()
			return
		}
		s.options.Metrics = metrics
	}
}

func WithHealthOptions(health HealthOption) Option {
	return func(s *Server) {
		if err := health.init(); err != nil {
			log.Error().Err(err).Send()
			return
		}
		s.options.Health = health
	}
}

func WithTimeoutOptions(timeout TimeoutOption) Option {
	return func(s *Server) {
		if err := timeout.init(); err != nil {
			log.Error().Err(err).Send()
			return
		}
		s.options.Timeout = timeout
	}
}

func NewServer(addr string, handler http.Handler, opts ...Option) *Server {
	s := &Server{
		prom: metrics.Prom,
		server: &http.Server{
			Addr:    addr,
			Handler: handler,
		},
	}
	_ = s.options.Timeout.init()

	for _, opt := range opts {
		opt(s)
	}

	s.server.ReadHeaderTimeout = s.options.Timeout.ReadHeader
	s.server.ReadTimeout = s.options.Timeout.Read
	s.server.WriteTimeout = s.options.Timeout.Write
	s.server.IdleTimeout = s.options.Timeout.Idle

	additionalHandlers(s)

	return s
}

// Run 阻塞直到 Shutdown，正常关闭时返回 nil
func (s *Server) Run() error {
	if s.meta.Name == "" {
		s.meta.Name = defaultName
	}

	if ok := transport.ValidateAddress(s.server.Addr); !ok {
		log.Warn().Msgf("invalid address %s, using default address: %s", s.server.Addr, defaultAddr)
		s.server.Addr = defaultAddr
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve 在已有的 listener 上提供服务
func (s *Server) Serve(ln net.Listener) error {
	if s.meta.Name == "" {
		s.meta.Name = defaultName
	}
	log.Info().Msgf("%s server listening on %s", s.meta.Name, ln.Addr())

	if err := s.server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the root handler, with the additional routes mounted.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func additionalHandlers(s *Server) {
	if r, ok := s.server.Handler.(*gin.Engine); ok {
		handleMetrics(s, r)
		handleHealth(s, r)
	}
}

func handleMetrics(s *Server, r *gin.Engine) {
	if s.options.Metrics.Enabled {
		if s.options.Metrics.EnabledGoCollector {
			s.prom.WithGoCollectorRuntimeMetrics()
		}
		if s.options.Metrics.EnabledBuildInfoCollector {
			s.prom.WithBuildInfoCollector()
		}

		r.GET(s.options.Metrics.Path, gin.WrapH(promhttp.HandlerFor(s.prom.Registry(), promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		})))
	}
}

func handleHealth(s *Server, r *gin.Engine) {
	if !s.options.Health.Enabled {
		return
	}

	checks := s.options.Health.Checks
	r.GET(s.options.Health.Path, func(c *gin.Context) {
		if len(checks) == 0 {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		status, code := "ok", http.StatusOK
		results := make(map[string]any, len(checks))
		for name, check := range checks {
			v, err := check(ctx)
			if err != nil {
				status, code = "degraded", http.StatusServiceUnavailable
				results[name] = gin.H{"error": err.Error()}
				continue
			}
			results[name] = v
		}
		c.JSON(code, gin.H{"status": status, "checks": results})
	})
}

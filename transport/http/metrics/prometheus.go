// Package metrics 持有服务的 prometheus 注册表以及 http 请求指标
package metrics

import (
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const Namespace = "hiding"

var (
	Prom = New(Namespace)
)

type Prometheus struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec

	goOnce    sync.Once
	buildOnce sync.Once
}

func New(namespace string) *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of http requests",
			},
			[]string{"method", "route", "status"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Http request latency",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "route"},
		),
	}
	p.registry.MustRegister(p.requests, p.latency)

	return p
}

// WithGoCollectorRuntimeMetrics 注册 go 运行时指标，重复调用无副作用
func (p *Prometheus) WithGoCollectorRuntimeMetrics() {
	p.goOnce.Do(func() {
		p.registry.MustRegister(collectors.NewGoCollector(
			collectors.WithGoCollectorRuntimeMetrics(collectors.GoRuntimeMetricsRule{Matcher: regexp.MustCompile("/.*")}),
		))
	})
}

func (p *Prometheus) WithBuildInfoCollector() {
	p.buildOnce.Do(func() {
		p.registry.MustRegister(collectors.NewBuildInfoCollector())
	})
}

// ObserveRequest 记录一次请求，route 使用路由模板以控制基数
func (p *Prometheus) ObserveRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	p.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.latency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

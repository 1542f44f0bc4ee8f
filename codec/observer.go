package codec

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kochabx/hiding/errors"
	"github.com/kochabx/hiding/log"
)

// Metrics counts codec outcomes. A nil *Metrics records nothing.
type Metrics struct {
	Generated *prometheus.CounterVec // 生成次数
	Accepted  *prometheus.CounterVec // 解析成功次数
	Rejected  *prometheus.CounterVec // 解析失败次数（按原因）
}

// NewMetrics registers the codec counters on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Generated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "codes_generated_total",
				Help:      "Total number of generated codes",
			},
			[]string{"codec"},
		),
		Accepted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "codes_accepted_total",
				Help:      "Total number of codes that parsed or validated",
			},
			[]string{"codec"},
		),
		Rejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "codes_rejected_total",
				Help:      "Total number of rejected codes by reason",
			},
			[]string{"codec", "reason"},
		),
	}
}

// Observer reports the outcomes of one codec.
type Observer struct {
	name    string
	metrics *Metrics
}

func NewObserver(name string, m *Metrics) Observer {
	return Observer{name: name, metrics: m}
}

func (o Observer) Generated() {
	if o.metrics != nil {
		o.metrics.Generated.WithLabelValues(o.name).Inc()
	}
}

func (o Observer) Accepted() {
	if o.metrics != nil {
		o.metrics.Accepted.WithLabelValues(o.name).Inc()
	}
}

// Reject records the reason a code was refused and returns ErrInvalidCode.
// The reason stays in debug logs and metrics and is never returned.
func (o Observer) Reject(reason error) error {
	label := reasonLabel(reason)
	log.Debug().Str("codec", o.name).Str("reason", label).Err(reason).Msg("code rejected")
	if o.metrics != nil {
		o.metrics.Rejected.WithLabelValues(o.name, label).Inc()
	}
	return errors.ErrInvalidCode
}

func reasonLabel(err error) string {
	switch errors.Code(err) {
	case errors.CodeMalformed, errors.CodeValueTooWide:
		return "malformed"
	case errors.CodeExpired:
		return "expired"
	case errors.CodeTampered:
		return "tampered"
	default:
		return "unknown"
	}
}

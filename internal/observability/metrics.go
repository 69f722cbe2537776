package observability

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/wippyai/itm-bind/dispatch"
	"github.com/wippyai/itm-bind/itm"
)

// Call outcomes used as the "outcome" label.
const (
	OutcomeSuccess  = "success"
	OutcomeWarning  = "warning"
	OutcomeStatus   = "status_error"
	OutcomeRejected = "rejected"
)

// Collector bundles Prometheus metrics for ITM calls. It satisfies
// dispatch.Observer and can be handed to both the dispatcher and the
// binding host.
type Collector struct {
	gatherer prometheus.Gatherer

	Calls     *prometheus.CounterVec
	Durations *prometheus.HistogramVec
	Statuses  *prometheus.CounterVec
}

var _ dispatch.Observer = (*Collector)(nil)

// NewCollector registers ITM metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	calls, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "itm_calls_total",
		Help: "Total number of ITM calls, labeled by operation and outcome.",
	}, []string{"op", "outcome"}), "itm_calls_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "itm_call_duration_seconds",
		Help:    "ITM call latency in seconds.",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	}, []string{"op"}), "itm_call_duration_seconds")
	if err != nil {
		return nil, err
	}

	statuses, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "itm_status_codes_total",
		Help: "ITM engine status codes returned, labeled by operation and code.",
	}, []string{"op", "code"}), "itm_status_codes_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:  gatherer,
		Calls:     calls,
		Durations: durations,
		Statuses:  statuses,
	}, nil
}

// ObserveCall records one call. A non-nil err means the call never
// produced a status; it is counted as rejected and not timed.
func (c *Collector) ObserveCall(op string, status int, err error, elapsed time.Duration) {
	if c == nil {
		return
	}
	if err != nil {
		c.Calls.WithLabelValues(op, OutcomeRejected).Inc()
		return
	}
	c.Calls.WithLabelValues(op, Outcome(status)).Inc()
	c.Statuses.WithLabelValues(op, strconv.Itoa(status)).Inc()
	c.Durations.WithLabelValues(op).Observe(elapsed.Seconds())
}

// Outcome classifies an engine status code.
func Outcome(status int) string {
	switch {
	case status == itm.Success:
		return OutcomeSuccess
	case status == itm.SuccessWithWarnings:
		return OutcomeWarning
	default:
		return OutcomeStatus
	}
}

// WriteText dumps all gathered metrics in the Prometheus text format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

// Package metrics holds the Prometheus collectors of the matching engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "matching_engine"

// Metrics groups the engine's collectors. A nil *Metrics is valid and
// records nothing, so components can be built without instrumentation.
type Metrics struct {
	CommandsTotal         *prometheus.CounterVec
	CommandFailuresTotal  *prometheus.CounterVec
	EventsPublishedTotal  *prometheus.CounterVec
	EventsDispatchedTotal *prometheus.CounterVec
	ConsumerFailuresTotal prometheus.Counter
	InstrumentsAssigned   prometheus.Gauge
	gatherer              prometheus.Gatherer
}

// New creates the collectors and registers them with reg. Passing a fresh
// prometheus.NewRegistry() keeps tests isolated from the default registry.
func New(reg *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands executed by the executor, by command type.",
		}, []string{"command"}),
		CommandFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_failures_total",
			Help:      "Commands whose handler returned an error or panicked.",
		}, []string{"command"}),
		EventsPublishedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Events enqueued on the event broker, by event type.",
		}, []string{"event"}),
		EventsDispatchedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dispatched_total",
			Help:      "Events handed to the subscribed consumer, by event type.",
		}, []string{"event"}),
		ConsumerFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_consumer_failures_total",
			Help:      "Events whose consumer returned an error or panicked.",
		}),
		InstrumentsAssigned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "instruments_assigned",
			Help:      "Instruments pinned to an executor worker.",
		}),
		gatherer: reg,
	}

	for _, c := range []prometheus.Collector{
		m.CommandsTotal,
		m.CommandFailuresTotal,
		m.EventsPublishedTotal,
		m.EventsDispatchedTotal,
		m.ConsumerFailuresTotal,
		m.InstrumentsAssigned,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) CommandExecuted(command string) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(command).Inc()
}

func (m *Metrics) CommandFailed(command string) {
	if m == nil {
		return
	}
	m.CommandFailuresTotal.WithLabelValues(command).Inc()
}

func (m *Metrics) EventPublished(event string) {
	if m == nil {
		return
	}
	m.EventsPublishedTotal.WithLabelValues(event).Inc()
}

func (m *Metrics) EventDispatched(event string) {
	if m == nil {
		return
	}
	m.EventsDispatchedTotal.WithLabelValues(event).Inc()
}

func (m *Metrics) ConsumerFailed() {
	if m == nil {
		return
	}
	m.ConsumerFailuresTotal.Inc()
}

func (m *Metrics) InstrumentAssigned() {
	if m == nil {
		return
	}
	m.InstrumentsAssigned.Inc()
}

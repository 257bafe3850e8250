package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "crowdplay"

// Metrics bundles the process's collectors. All methods are nil-safe: a nil
// *Metrics records nothing.
type Metrics struct {
	reg *prometheus.Registry

	lines      prometheus.Counter
	messages   prometheus.Counter
	unknown    prometheus.Counter
	sends      prometheus.Counter
	reconnects prometheus.Counter
	votes      *prometheus.CounterVec

	connected      prometheus.Gauge
	messagesPerSec prometheus.Gauge
	commandsPerSec prometheus.Gauge
	commandRatio   prometheus.Gauge
	buckets        prometheus.Gauge
}

// New creates a Metrics with every collector registered on its own private
// registry.
func New() *Metrics {
	m := &Metrics{reg: prometheus.NewRegistry()}

	m.lines = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lines_total",
		Help:      "Protocol lines decoded.",
	})
	m.messages = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_total",
		Help:      "Chat messages observed.",
	})
	m.unknown = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unknown_lines_total",
		Help:      "Lines whose command token was not recognized.",
	})
	m.sends = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sends_total",
		Help:      "Crowd commands sent to the channel.",
	})
	m.reconnects = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconnects_total",
		Help:      "Sessions restarted after a connection loss.",
	})
	m.votes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_total",
		Help:      "Recognized crowd commands by name.",
	}, []string{"command"})

	m.connected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connected",
		Help:      "1 while a session is established.",
	})
	m.messagesPerSec = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "window_messages_per_second",
		Help:      "Chat messages per second over the long window.",
	})
	m.commandsPerSec = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "window_commands_per_second",
		Help:      "Crowd commands per second over the long window.",
	})
	m.commandRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "window_command_ratio",
		Help:      "Share of chat messages that are crowd commands, long window.",
	})
	m.buckets = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "window_buckets",
		Help:      "Buckets currently held in the window history.",
	})

	m.reg.MustRegister(
		m.lines, m.messages, m.unknown, m.sends, m.reconnects, m.votes,
		m.connected, m.messagesPerSec, m.commandsPerSec, m.commandRatio, m.buckets,
	)
	return m
}

// Handler serves the Prometheus exposition of the private registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Line counts one decoded protocol line.
func (m *Metrics) Line() {
	if m == nil {
		return
	}
	m.lines.Inc()
}

// Message counts one observed chat message; vote is the matched command
// name, or "" when the payload was not a command.
func (m *Metrics) Message(vote string) {
	if m == nil {
		return
	}
	m.messages.Inc()
	if vote != "" {
		m.votes.WithLabelValues(vote).Inc()
	}
}

// UnknownLine counts a line with an unrecognized command token.
func (m *Metrics) UnknownLine() {
	if m == nil {
		return
	}
	m.unknown.Inc()
}

// Send counts one crowd command sent to the channel.
func (m *Metrics) Send() {
	if m == nil {
		return
	}
	m.sends.Inc()
}

// Reconnect counts one session restart.
func (m *Metrics) Reconnect() {
	if m == nil {
		return
	}
	m.reconnects.Inc()
}

// SetConnected flips the connection gauge.
func (m *Metrics) SetConnected(up bool) {
	if m == nil {
		return
	}
	if up {
		m.connected.Set(1)
	} else {
		m.connected.Set(0)
	}
}

// SetWindow updates the long-window gauges after a rotation.
func (m *Metrics) SetWindow(messagesPerSec, commandsPerSec, ratio float64, buckets int) {
	if m == nil {
		return
	}
	m.messagesPerSec.Set(messagesPerSec)
	m.commandsPerSec.Set(commandsPerSec)
	m.commandRatio.Set(ratio)
	m.buckets.Set(float64(buckets))
}

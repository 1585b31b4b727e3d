// Package metrics exposes Prometheus collectors for the transport and
// simulation subsystems: package-level promauto collectors plus thin
// Inc/Set wrapper functions so call sites stay one-liners.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skycheckers_messages_sent_total",
		Help: "Total wire messages encoded and sent.",
	})
	MessagesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skycheckers_messages_received_total",
		Help: "Total wire messages successfully decoded.",
	})
	MessagesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skycheckers_messages_dropped_total",
		Help: "Datagrams or messages dropped, by reason.",
	}, []string{"reason"})
	Retransmits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skycheckers_retransmits_total",
		Help: "Reliable messages re-enqueued because no ack had arrived.",
	})
	ActivePeers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "skycheckers_active_peers",
		Help: "Current number of connected (non-dead) peers.",
	})
	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "skycheckers_tick_duration_seconds",
		Help:    "Wall time spent executing a single simulation tick.",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12),
	})
	LaggedOutTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skycheckers_lagged_out_total",
		Help: "Total peers declared dead by the liveness timeout.",
	})
)

// Drop reason label values, kept stable to bound cardinality.
const (
	DropReasonTruncated    = "truncated"
	DropReasonUnknownKind  = "unknown_kind"
	DropReasonInvalidEnum  = "invalid_enum"
	DropReasonQueueFull    = "queue_full"
	DropReasonDuplicateSeq = "duplicate_seq"
)

func IncDropped(reason string) { MessagesDropped.WithLabelValues(reason).Inc() }

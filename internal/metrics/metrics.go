package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "booking"

var (
	AppointmentsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "appointments_created_total", Help: "Create attempts by outcome."},
		[]string{"outcome"},
	)
	AppointmentsDeleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "appointments_deleted_total", Help: "Delete attempts by outcome."},
		[]string{"outcome"},
	)
	StatusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "status_transitions_total", Help: "Status transitions by source, target and result."},
		[]string{"from", "to", "result"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by transport."},
		[]string{"transport"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by transport."},
		[]string{"transport"},
	)
	RPCDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "rpc_duration_seconds", Help: "Unary RPC latency.", Buckets: prometheus.DefBuckets},
		[]string{"method", "code"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(AppointmentsCreated)
	reg.MustRegister(AppointmentsDeleted)
	reg.MustRegister(StatusTransitions)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(RPCDuration)
}

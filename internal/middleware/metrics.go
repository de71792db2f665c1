package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "porchlight_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CommentMutations counts comment add/remove operations.
	CommentMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "porchlight_comment_mutations_total",
		Help: "Total number of comment mutations by operation",
	}, []string{"operation"})

	// ReactionToggles counts reaction toggles by resulting state.
	ReactionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "porchlight_reaction_toggles_total",
		Help: "Total number of reaction toggles by resulting state",
	}, []string{"state"})

	// HeartbeatsTotal counts presence heartbeats received.
	HeartbeatsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "porchlight_presence_heartbeats_total",
		Help: "Total number of presence heartbeats received",
	})
)

// InitMetrics creates the Prometheus HTTP metrics middleware.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

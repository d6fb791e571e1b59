package sync

import "github.com/prometheus/client_golang/prometheus"

var (
	remoteCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sync_remote_requests_total", Help: "Remote attempts by outcome"},
		[]string{"entity", "op", "outcome"},
	)
	localFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sync_local_fallbacks_total", Help: "Writes applied locally after a remote failure"},
		[]string{"entity", "op"},
	)
	pendingFlushed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sync_pending_flush_total", Help: "Pending rows pushed to the remote"},
		[]string{"entity", "outcome"},
	)
)

func init() { prometheus.MustRegister(remoteCalls, localFallbacks, pendingFlushed) }

func observeRemote(entity, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	remoteCalls.WithLabelValues(entity, op, outcome).Inc()
}

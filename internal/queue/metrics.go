package queue

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EnqueuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kasir",
		Subsystem: "queue",
		Name:      "enqueued_total",
		Help:      "Total tasks enqueued per kind.",
	}, []string{"kind"})

	ProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kasir",
		Subsystem: "queue",
		Name:      "processed_total",
		Help:      "Total tasks processed per kind and outcome.",
	}, []string{"kind", "outcome"})
)

// MustRegister registers queue metrics on the given registerer, tolerating
// duplicate registration across tests.
func MustRegister(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{EnqueuedTotal, ProcessedTotal} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
	}
}

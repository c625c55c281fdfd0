package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "groupchat"

type Metrics struct {
	MessagesCommitted *prometheus.CounterVec
	AccessChecks      *prometheus.CounterVec
}

func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		MessagesCommitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_committed_total",
			Help:      "Messages appended to group logs, by content kind.",
		}, []string{"kind"}),
		AccessChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_checks_total",
			Help:      "Group password checks, by result.",
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{m.MessagesCommitted, m.AccessChecks} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering collector: %w", err)
		}
	}
	return m, nil
}

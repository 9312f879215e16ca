package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder counts ledger operations by name and outcome code.
type Recorder struct {
	operations *prometheus.CounterVec
}

func NewRecorder(registerer prometheus.Registerer) (*Recorder, error) {
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pollledger",
		Name:      "operations_total",
		Help:      "Ledger operations by operation and outcome.",
	}, []string{"operation", "outcome"})
	if registerer != nil {
		if err := registerer.Register(operations); err != nil {
			return nil, err
		}
	}
	return &Recorder{operations: operations}, nil
}

func (r *Recorder) RecordOperation(operation string, outcome string) {
	r.operations.WithLabelValues(operation, outcome).Inc()
}

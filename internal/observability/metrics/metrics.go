package metrics

import (
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "agrichar"

// Metrics exposes ledger-level instruments.
type Metrics struct {
	consumptions     *prometheus.CounterVec
	consumedQuantity *prometheus.CounterVec
	statusChanges    *prometheus.CounterVec
}

// New registers the ledger instruments on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		consumptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consumptions_total",
			Help:      "Consumption attempts against a ledger source, by outcome.",
		}, []string{"source_type", "outcome"}),
		consumedQuantity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consumed_quantity_kg_total",
			Help:      "Kilograms decremented from ledger sources.",
		}, []string{"source_type"}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_changes_total",
			Help:      "Derived status values written after a consumption.",
		}, []string{"source_type", "status"}),
	}

	var err error
	if m.consumptions, err = register(reg, m.consumptions); err != nil {
		return nil, err
	}
	if m.consumedQuantity, err = register(reg, m.consumedQuantity); err != nil {
		return nil, err
	}
	if m.statusChanges, err = register(reg, m.statusChanges); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordConsumption counts one consumption attempt.
func (m *Metrics) RecordConsumption(sourceType, outcome string) {
	if m == nil {
		return
	}
	m.consumptions.WithLabelValues(normalizeLabel(sourceType), normalizeLabel(outcome)).Inc()
}

// RecordConsumedQuantity adds the decremented quantity.
func (m *Metrics) RecordConsumedQuantity(sourceType string, quantity float64) {
	if m == nil || quantity <= 0 {
		return
	}
	m.consumedQuantity.WithLabelValues(normalizeLabel(sourceType)).Add(quantity)
}

// RecordStatus counts the status derived after a consumption.
func (m *Metrics) RecordStatus(sourceType, status string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(normalizeLabel(sourceType), normalizeLabel(status)).Inc()
}

// register returns the collector already known to reg when an identical one
// was registered before, so repeated construction shares series.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if reg == nil {
		return c, nil
	}
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func normalizeLabel(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "unknown"
	}
	return value
}

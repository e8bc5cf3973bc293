package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Issuance attempt outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// DeliveryMetrics counts what happens inside the download pipeline.
// A nil *DeliveryMetrics is valid and records nothing.
type DeliveryMetrics struct {
	Verdicts         *prometheus.CounterVec
	IssueAttempts    *prometheus.CounterVec
	CounterFailures  prometheus.Counter
	DependencyErrors *prometheus.CounterVec
}

// NewDeliveryMetrics registers the pipeline collectors with reg.
func NewDeliveryMetrics(reg prometheus.Registerer, namespace string) (*DeliveryMetrics, error) {
	reg, namespace = orDefaults(reg, namespace)

	verdicts, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verdicts_total",
		Help:      "Authorization verdicts partitioned by reason.",
	}, []string{"reason"}), "verdicts")
	if err != nil {
		return nil, err
	}

	attempts, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "url_issue_attempts_total",
		Help:      "Signed URL issuance attempts partitioned by outcome.",
	}, []string{"outcome"}), "issue attempts")
	if err != nil {
		return nil, err
	}

	counterFailures, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "counter_update_failures_total",
		Help:      "Download counter increments that failed.",
	}), "counter failures")
	if err != nil {
		return nil, err
	}

	depErrors, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dependency_errors_total",
		Help:      "Failed or timed out dependency calls partitioned by dependency.",
	}, []string{"dependency"}), "dependency errors")
	if err != nil {
		return nil, err
	}

	return &DeliveryMetrics{
		Verdicts:         verdicts,
		IssueAttempts:    attempts,
		CounterFailures:  counterFailures,
		DependencyErrors: depErrors,
	}, nil
}

func (m *DeliveryMetrics) ObserveVerdict(reason string) {
	if m == nil {
		return
	}
	m.Verdicts.WithLabelValues(reason).Inc()
}

func (m *DeliveryMetrics) ObserveIssueAttempt(outcome string) {
	if m == nil {
		return
	}
	m.IssueAttempts.WithLabelValues(outcome).Inc()
}

func (m *DeliveryMetrics) ObserveCounterFailure() {
	if m == nil {
		return
	}
	m.CounterFailures.Inc()
}

func (m *DeliveryMetrics) ObserveDependencyError(dependency string) {
	if m == nil {
		return
	}
	m.DependencyErrors.WithLabelValues(dependency).Inc()
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Enrollment results recorded on EnrollmentsTotal.
const (
	ResultRegistered        = "registered"
	ResultAlreadyRegistered = "already_registered"
	ResultInvalid           = "invalid"
	ResultCaptureFailed     = "capture_failed"
	ResultError             = "error"
)

// Metrics provides observability for the enrollment module.
type Metrics struct {
	EnrollmentsTotal     *prometheus.CounterVec
	VerificationsTotal   *prometheus.CounterVec
	AdminAlertsTotal     *prometheus.CounterVec
	SnapshotSaveDuration prometheus.Histogram
	SnapshotSaveFailures prometheus.Counter
	IdentityRecords      prometheus.Gauge
}

// New creates the enrollment metrics and registers them with reg.
// Tests pass a fresh prometheus.NewRegistry() to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EnrollmentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "biogate_enrollments_total",
			Help: "Enrollment attempts by result",
		}, []string{"result"}),
		VerificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "biogate_verifications_total",
			Help: "Verification attempts by outcome",
		}, []string{"outcome"}),
		AdminAlertsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "biogate_admin_alerts_total",
			Help: "Admin alerts raised by outcome",
		}, []string{"outcome"}),
		SnapshotSaveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "biogate_snapshot_save_duration_seconds",
			Help:    "Duration of full record-set snapshot writes",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		SnapshotSaveFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "biogate_snapshot_save_failures_total",
			Help: "Snapshot writes that failed and were rolled back",
		}),
		IdentityRecords: factory.NewGauge(prometheus.GaugeOpts{
			Name: "biogate_identity_records",
			Help: "Number of enrolled identity records",
		}),
	}
}

// IncrementEnrollment records one enrollment attempt.
func (m *Metrics) IncrementEnrollment(result string) {
	m.EnrollmentsTotal.WithLabelValues(result).Inc()
}

// IncrementVerification records one verification attempt.
func (m *Metrics) IncrementVerification(outcome string) {
	m.VerificationsTotal.WithLabelValues(outcome).Inc()
}

// IncrementAdminAlert records one raised alert.
func (m *Metrics) IncrementAdminAlert(outcome string) {
	m.AdminAlertsTotal.WithLabelValues(outcome).Inc()
}

// ObserveSnapshotSave records the duration of a snapshot write.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveSnapshotSave(start time.Time, err error) {
	m.SnapshotSaveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.SnapshotSaveFailures.Inc()
	}
}

// SetIdentityRecords publishes the current record count.
func (m *Metrics) SetIdentityRecords(n int) {
	m.IdentityRecords.Set(float64(n))
}

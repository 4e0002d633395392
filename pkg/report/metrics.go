package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsObserver exports solver progress as Prometheus metrics.
type MetricsObserver struct {
	iterations *prometheus.CounterVec
	residual   *prometheus.GaugeVec
	errors     prometheus.Counter
	messages   prometheus.Counter
}

func NewMetricsObserver(reg prometheus.Registerer) *MetricsObserver {
	factory := promauto.With(reg)
	return &MetricsObserver{
		iterations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "simwin_solver_iterations_total",
			Help: "Solver iterations by loop",
		}, []string{"loop"}),
		residual: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "simwin_solver_residual",
			Help: "Error of the latest iteration by loop",
		}, []string{"loop"}),
		errors: factory.NewCounter(prometheus.CounterOpts{
			Name: "simwin_solver_errors_total",
			Help: "Errors reported by the solver",
		}),
		messages: factory.NewCounter(prometheus.CounterOpts{
			Name: "simwin_solver_messages_total",
			Help: "Informational messages reported by the solver",
		}),
	}
}

func (m *MetricsObserver) observe(loop string, err float64) {
	m.iterations.WithLabelValues(loop).Inc()
	m.residual.WithLabelValues(loop).Set(err)
}

func (m *MetricsObserver) ElectConvergence(_ int, err float64) { m.observe("electrical", err) }
func (m *MetricsObserver) ThermConvergence(_ int, err float64) { m.observe("thermal", err) }
func (m *MetricsObserver) OpticConvergence(_ int, err float64) { m.observe("optical", err) }
func (m *MetricsObserver) ModeConvergence(_ int, err float64)  { m.observe("mode", err) }
func (m *MetricsObserver) ErrorMessage(error)                  { m.errors.Inc() }
func (m *MetricsObserver) Message(string)                      { m.messages.Inc() }

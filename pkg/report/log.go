package report

import "log/slog"

// LogObserver writes notifications to a structured logger. Iterations are
// logged at debug level.
type LogObserver struct {
	logger *slog.Logger
}

func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger.With(slog.String("component", "solver"))}
}

func (l *LogObserver) iteration(loop string, iteration int, err float64) {
	l.logger.Debug("iteration",
		slog.String("loop", loop),
		slog.Int("iteration", iteration),
		slog.Float64("error", err),
	)
}

func (l *LogObserver) ElectConvergence(iteration int, err float64) {
	l.iteration("electrical", iteration, err)
}

func (l *LogObserver) ThermConvergence(iteration int, err float64) {
	l.iteration("thermal", iteration, err)
}

func (l *LogObserver) OpticConvergence(iteration int, err float64) {
	l.iteration("optical", iteration, err)
}

func (l *LogObserver) ModeConvergence(iteration int, err float64) {
	l.iteration("mode", iteration, err)
}

func (l *LogObserver) ErrorMessage(err error) {
	l.logger.Error("solver error", slog.String("error", err.Error()))
}

func (l *LogObserver) Message(msg string) {
	l.logger.Info(msg)
}

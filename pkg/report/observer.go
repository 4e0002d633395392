package report

// Observer is notified by the solver loops. Notifications never influence
// control flow.
type Observer interface {
	ElectConvergence(iteration int, err float64)
	ThermConvergence(iteration int, err float64)
	OpticConvergence(iteration int, err float64)
	ModeConvergence(iteration int, err float64)
	ErrorMessage(err error)
	Message(msg string)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) ElectConvergence(int, float64) {}
func (Nop) ThermConvergence(int, float64) {}
func (Nop) OpticConvergence(int, float64) {}
func (Nop) ModeConvergence(int, float64)  {}
func (Nop) ErrorMessage(error)            {}
func (Nop) Message(string)                {}

// Multi fans notifications out to several observers in order.
type Multi []Observer

func (m Multi) ElectConvergence(iteration int, err float64) {
	for _, o := range m {
		o.ElectConvergence(iteration, err)
	}
}

func (m Multi) ThermConvergence(iteration int, err float64) {
	for _, o := range m {
		o.ThermConvergence(iteration, err)
	}
}

func (m Multi) OpticConvergence(iteration int, err float64) {
	for _, o := range m {
		o.OpticConvergence(iteration, err)
	}
}

func (m Multi) ModeConvergence(iteration int, err float64) {
	for _, o := range m {
		o.ModeConvergence(iteration, err)
	}
}

func (m Multi) ErrorMessage(err error) {
	for _, o := range m {
		o.ErrorMessage(err)
	}
}

func (m Multi) Message(msg string) {
	for _, o := range m {
		o.Message(msg)
	}
}

package app

// Signals carries events raised outside the Bubble Tea loop into it.
type Signals struct {
	unauthorized chan struct{}
}

// NewSignals creates an empty Signals.
func NewSignals() *Signals {
	return &Signals{unauthorized: make(chan struct{}, 1)}
}

// Unauthorized reports that the backend rejected the stored token. It never
// blocks; repeated reports before the app reacts collapse into one.
func (s *Signals) Unauthorized() {
	select {
	case s.unauthorized <- struct{}{}:
	default:
	}
}

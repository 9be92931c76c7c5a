package emgnet

// Trainable is implemented by layers whose behavior
// differs between training and evaluation.
type Trainable interface {
	SetTraining(training bool)
}

// SetTraining puts l, and every layer nested inside it,
// into training or evaluation mode.
// Layers without a mode are left alone.
func SetTraining(l Layer, training bool) {
	switch l := l.(type) {
	case Net:
		for _, sub := range l {
			SetTraining(sub, training)
		}
	case Trainable:
		l.SetTraining(training)
	}
}

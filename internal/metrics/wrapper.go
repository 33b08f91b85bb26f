package metrics

// Wrapper adapts Metrics to the narrow interfaces consumer packages
// declare for themselves, so core packages depend on capability rather
// than on this package's types.
type Wrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *Wrapper {
	return &Wrapper{m: m}
}

// Prediction-service view.

func (w *Wrapper) PredictionsInc(band string) {
	w.m.Predictions.WithLabelValues(band).Inc()
}

func (w *Wrapper) PredictionErrorsInc(band, reason string) {
	w.m.PredictionErrors.WithLabelValues(band, reason).Inc()
}

func (w *Wrapper) PredictionSecondsObserve(band string, seconds float64) {
	w.m.PredictionSeconds.WithLabelValues(band).Observe(seconds)
}

// Transport view.

func (w *Wrapper) ValidationFailuresInc() {
	w.m.ValidationFailures.Inc()
}

func (w *Wrapper) StreamSessionsAdd(delta float64) {
	w.m.StreamSessions.Add(delta)
}

// Emitter view.

func (w *Wrapper) PublishedInc() {
	w.m.EmitterPublished.Inc()
}

func (w *Wrapper) DroppedInc() {
	w.m.EmitterDropped.Inc()
}

func (w *Wrapper) QueueDepthSet(depth float64) {
	w.m.EmitterQueueDepth.Set(depth)
}

package telemetry

// PhaseRecord is one row of phases.csv.
type PhaseRecord struct {
	Tick       int32   `csv:"tick"`
	SimTimeSec float64 `csv:"sim_time"`
	From       string  `csv:"from"`
	To         string  `csv:"to"`
	Effects    string  `csv:"effects"`
	StarMass   float64 `csv:"star_mass"`
	Accretor   float64 `csv:"accretor_mass"`
}

// PhaseLog buffers phase transitions until they are written out.
type PhaseLog struct {
	pending []PhaseRecord
	total   int
}

// NewPhaseLog creates an empty log.
func NewPhaseLog() *PhaseLog {
	return &PhaseLog{}
}

// Record appends a transition.
func (l *PhaseLog) Record(r PhaseRecord) {
	l.pending = append(l.pending, r)
	l.total++
}

// Drain returns buffered records and clears the buffer.
func (l *PhaseLog) Drain() []PhaseRecord {
	out := l.pending
	l.pending = nil
	return out
}

// Total returns how many transitions were ever recorded.
func (l *PhaseLog) Total() int {
	return l.total
}

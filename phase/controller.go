package phase

// Transition describes a completed phase change. Enter carries the effects
// the caller must apply for the newly entered phase.
type Transition struct {
	From  Phase
	To    Phase
	Enter Effect
}

// Readout is the read-only phase state for UI labels.
type Readout struct {
	Phase     string
	StateTime float64
	Progress  float64
}

// Controller advances the encounter through its table.
type Controller struct {
	table     Table
	current   Phase
	stateTime float64
}

// NewController creates a controller in the approach phase. The caller
// should apply Reset's transition to run approach's enter effects.
func NewController(table Table) *Controller {
	return &Controller{table: table, current: Approach}
}

// Phase returns the active phase.
func (c *Controller) Phase() Phase {
	return c.current
}

// StateTime returns seconds since the active phase was entered.
func (c *Controller) StateTime() float64 {
	return c.stateTime
}

// Spec returns the table row of the active phase.
func (c *Controller) Spec() Spec {
	return c.table[c.current]
}

// Progress returns stateTime/duration clamped to [0, 1] for timed phases,
// 1 for the terminal phase and 0 for event-terminated phases.
func (c *Controller) Progress() float64 {
	spec := c.table[c.current]
	switch spec.Kind {
	case Timed:
		if spec.Duration <= 0 {
			return 1
		}
		return clamp01(c.stateTime / spec.Duration)
	case Terminal:
		return 1
	}
	return 0
}

// ProgressWith is like Progress but measures event-terminated phases
// against the caller's reference duration.
func (c *Controller) ProgressWith(reference float64) float64 {
	if c.table[c.current].Kind == OnEvent {
		if reference <= 0 {
			return 0
		}
		return clamp01(c.stateTime / reference)
	}
	return c.Progress()
}

// Readout returns the UI readout, using reference for event-terminated phases.
func (c *Controller) Readout(reference float64) Readout {
	return Readout{
		Phase:     c.current.String(),
		StateTime: c.stateTime,
		Progress:  c.ProgressWith(reference),
	}
}

// Update advances stateTime by dt. A timed phase whose duration has elapsed
// transitions to its successor; the returned transition carries the enter
// effects of the new phase.
func (c *Controller) Update(dt float64) (Transition, bool) {
	if dt > 0 {
		c.stateTime += dt
	}
	spec := c.table[c.current]
	if spec.Kind != Timed || c.stateTime < spec.Duration {
		return Transition{}, false
	}
	return c.enter(spec.Next), true
}

// Trigger fires an event. Events not declared by the active phase are ignored.
func (c *Controller) Trigger(ev Event) (Transition, bool) {
	spec := c.table[c.current]
	if spec.Kind != OnEvent {
		return Transition{}, false
	}
	next, ok := spec.On[ev]
	if !ok {
		return Transition{}, false
	}
	return c.enter(next), true
}

// Reset re-enters approach from any state.
func (c *Controller) Reset() Transition {
	return c.enter(Approach)
}

// CanRestart reports whether the terminal phase has been reached.
func (c *Controller) CanRestart() bool {
	return c.table[c.current].Kind == Terminal
}

func (c *Controller) enter(next Phase) Transition {
	t := Transition{From: c.current, To: next, Enter: c.table[next].Enter}
	c.current = next
	c.stateTime = 0
	return t
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

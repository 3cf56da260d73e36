// Package phase sequences the encounter timeline as a table-driven state machine.
package phase

import (
	"fmt"
	"strings"
)

// Phase identifies one stage of the encounter.
type Phase uint8

const (
	Approach Phase = iota
	Stretch
	Disrupt
	Accrete
	Flare
	Stable

	numPhases
)

var phaseNames = [numPhases]string{
	Approach: "approach",
	Stretch:  "stretch",
	Disrupt:  "disrupt",
	Accrete:  "accrete",
	Flare:    "flare",
	Stable:   "stable",
}

// String returns the lowercase phase name.
func (p Phase) String() string {
	if p < numPhases {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// Parse returns the phase with the given name, ignoring case.
func Parse(name string) (Phase, error) {
	for p, n := range phaseNames {
		if strings.EqualFold(n, name) {
			return Phase(p), nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", name)
}

// Event is an external trigger that can end an event-terminated phase.
type Event uint8

const (
	EventDisruptionComplete Event = iota
)

// String returns the event name.
func (e Event) String() string {
	switch e {
	case EventDisruptionComplete:
		return "disruption_complete"
	}
	return fmt.Sprintf("event(%d)", uint8(e))
}

// Effect is a set of side effects requested when a phase is entered.
type Effect uint16

const (
	EffectAwaken       Effect = 1 << iota // reset accretor awakening
	EffectFlash                           // one-shot flash overlay
	EffectActivateDisk                    // disk starts accepting captures
	EffectFeed                            // disk self-spawning to full rate
	EffectActivateJets                    // polar jets switch on
	EffectStabilize                       // accretor and jets ease to rest
)

var effectNames = []struct {
	effect Effect
	name   string
}{
	{EffectAwaken, "awaken"},
	{EffectFlash, "flash"},
	{EffectActivateDisk, "activate_disk"},
	{EffectFeed, "feed"},
	{EffectActivateJets, "activate_jets"},
	{EffectStabilize, "stabilize"},
}

// String lists the set effects joined by "|", or "none".
func (e Effect) String() string {
	if e == 0 {
		return "none"
	}
	var names []string
	for _, n := range effectNames {
		if e.Has(n.effect) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// Has reports whether all bits of other are set.
func (e Effect) Has(other Effect) bool {
	return e&other == other
}

// Kind distinguishes how a phase ends.
type Kind uint8

const (
	Timed    Kind = iota // ends after Duration
	OnEvent              // ends when a declared event fires
	Terminal             // never ends
)

// Spec declares one row of the transition table.
type Spec struct {
	Kind     Kind
	Duration float64         // Timed only
	Next     Phase           // Timed only
	On       map[Event]Phase // OnEvent only
	Enter    Effect
}

// Table maps every phase to its spec.
type Table [numPhases]Spec

// Durations configures the timed phases of the default table.
type Durations struct {
	Approach float64
	Stretch  float64
	Accrete  float64
	Flare    float64
}

// DefaultTable builds the encounter table:
// approach -> stretch -> disrupt -(disruption complete)-> accrete -> flare -> stable.
func DefaultTable(d Durations) Table {
	return Table{
		Approach: {Kind: Timed, Duration: d.Approach, Next: Stretch, Enter: EffectAwaken},
		Stretch:  {Kind: Timed, Duration: d.Stretch, Next: Disrupt},
		Disrupt: {
			Kind:  OnEvent,
			On:    map[Event]Phase{EventDisruptionComplete: Accrete},
			Enter: EffectFlash | EffectActivateDisk,
		},
		Accrete: {Kind: Timed, Duration: d.Accrete, Next: Flare, Enter: EffectFeed},
		Flare:   {Kind: Timed, Duration: d.Flare, Next: Stable, Enter: EffectFlash | EffectActivateJets},
		Stable:  {Kind: Terminal, Enter: EffectStabilize},
	}
}

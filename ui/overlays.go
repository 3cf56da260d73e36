package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayStarfield OverlayID = "starfield"
	OverlayStream    OverlayID = "stream"
	OverlayDisk      OverlayID = "disk"
	OverlayJets      OverlayID = "jets"
	OverlayHalo      OverlayID = "halo"
	OverlayLensRing  OverlayID = "lens_ring"
	OverlayBodies    OverlayID = "bodies_panel"
	OverlayPerf      OverlayID = "perf_panel"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID // Unique identifier
	Name        string    // Display name
	Description string    // What this overlay shows
	Key         int32     // Keyboard key to toggle (0 = no key)
	KeyLabel    string    // Key label for display (e.g., "S", "V")
	Category    string    // Grouping (e.g., "layers", "panels")
	Default     bool      // Enabled on registration
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
	order       []OverlayID // Maintains insertion order for display
}

// NewOverlayRegistry creates a registry with default overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds standard overlays.
func (r *OverlayRegistry) registerDefaults() {
	// Render layers
	r.Register(OverlayDescriptor{
		ID:          OverlayStarfield,
		Name:        "Starfield",
		Description: "Procedural background stars",
		Key:         rl.KeyOne,
		KeyLabel:    "1",
		Category:    "layers",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayStream,
		Name:        "Tidal Stream",
		Description: "Debris torn from the star",
		Key:         rl.KeyTwo,
		KeyLabel:    "2",
		Category:    "layers",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayDisk,
		Name:        "Accretion Disk",
		Description: "Orbiting disk particles",
		Key:         rl.KeyThree,
		KeyLabel:    "3",
		Category:    "layers",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayJets,
		Name:        "Jets",
		Description: "Polar outflow",
		Key:         rl.KeyFour,
		KeyLabel:    "4",
		Category:    "layers",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayHalo,
		Name:        "Halos",
		Description: "Glow around the accretor and the star",
		Key:         rl.KeyFive,
		KeyLabel:    "5",
		Category:    "layers",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayLensRing,
		Name:        "Photon Ring",
		Description: "Ring drawn at the lensing radius",
		Key:         rl.KeySix,
		KeyLabel:    "6",
		Category:    "layers",
		Default:     true,
	})

	// Panels
	r.Register(OverlayDescriptor{
		ID:          OverlayBodies,
		Name:        "Bodies",
		Description: "Accretor, star and pool readout",
		Key:         rl.KeyB,
		KeyLabel:    "B",
		Category:    "panels",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayPerf,
		Name:        "Performance",
		Description: "Per-stage tick timing",
		Key:         rl.KeyP,
		KeyLabel:    "P",
		Category:    "panels",
	})
}

// Register adds an overlay to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.order = append(r.order, desc.ID)
	r.enabled[desc.ID] = desc.Default
}

// Toggle switches an overlay on/off.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	r.enabled[id] = !r.enabled[id]
	return r.enabled[id]
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	if _, ok := r.byID[id]; !ok {
		return
	}
	r.enabled[id] = enabled
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// ByCategory returns overlays filtered by category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeyPress checks if a key corresponds to an overlay toggle.
// Returns the overlay ID and new state if a toggle occurred.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key == key {
			newState := r.Toggle(desc.ID)
			return desc.ID, newState, true
		}
	}
	return "", false, false
}

// EnabledOverlays returns a list of currently enabled overlay IDs.
func (r *OverlayRegistry) EnabledOverlays() []OverlayID {
	var result []OverlayID
	for _, id := range r.order {
		if r.enabled[id] {
			result = append(result, id)
		}
	}
	return result
}

// Keys returns every key bound to an overlay.
func (r *OverlayRegistry) Keys() []int32 {
	keys := make([]int32, 0, len(r.descriptors))
	for _, desc := range r.descriptors {
		if desc.Key != 0 {
			keys = append(keys, desc.Key)
		}
	}
	return keys
}

package systems

// IDs hands out particle identities shared by every pool, so an identity
// stays unique when a particle moves between pools.
type IDs struct {
	next uint64
}

// Next returns a fresh identity. Zero is never returned.
func (g *IDs) Next() uint64 {
	g.next++
	return g.next
}

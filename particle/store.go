/*package particle contains the disk type and the authoritative mapping from
particle IDs to disk state.

A Store has a single writer, the simulation loop. Every other component reads
copies through Get and hands back updated copies for the loop to Set.
*/
package particle

import (
	"fmt"
	"sort"
)

// Store is the particle map. Particles are kept in ID order and located
// through slot, so sparse IDs cost nothing.
type Store struct {
	ps   []Particle
	slot map[int]int
	ids  []int
}

// NewStore copies ps into a new Store. IDs must be non-negative and unique.
func NewStore(ps []Particle) (*Store, error) {
	s := &Store{
		ps:   make([]Particle, len(ps)),
		slot: make(map[int]int, len(ps)),
		ids:  make([]int, len(ps)),
	}
	copy(s.ps, ps)
	sort.SliceStable(s.ps, func(i, j int) bool { return s.ps[i].ID < s.ps[j].ID })

	for i := range s.ps {
		id := s.ps[i].ID
		if id < 0 {
			return nil, fmt.Errorf("Particle ID %d is negative.", id)
		}
		if _, ok := s.slot[id]; ok {
			return nil, fmt.Errorf("Particle ID %d is used more than once.", id)
		}
		s.slot[id] = i
		s.ids[i] = id
	}

	return s, nil
}

// Len returns the number of particles.
func (s *Store) Len() int { return len(s.ids) }

// IDs returns the particle IDs in increasing order. The slice must not be
// modified.
func (s *Store) IDs() []int { return s.ids }

// Get returns a copy of the particle with the given ID.
func (s *Store) Get(id int) (Particle, bool) {
	i, ok := s.slot[id]
	if !ok {
		return Particle{}, false
	}
	return s.ps[i], true
}

// Set overwrites the state of an existing particle. It returns false if no
// particle with p's ID exists.
func (s *Store) Set(p Particle) bool {
	i, ok := s.slot[p.ID]
	if !ok {
		return false
	}
	s.ps[i] = p
	return true
}

// Advance moves every particle forward by dt.
func (s *Store) Advance(dt float64) {
	for i := range s.ps {
		s.ps[i].Advance(dt)
	}
}

// Snapshot appends copies of every particle, in ID order, to buf and returns
// the result.
func (s *Store) Snapshot(buf []Particle) []Particle {
	return append(buf, s.ps...)
}

// KineticEnergy returns the total kinetic energy of the system.
func (s *Store) KineticEnergy() float64 {
	sum := 0.0
	for i := range s.ps {
		sum += s.ps[i].KineticEnergy()
	}
	return sum
}

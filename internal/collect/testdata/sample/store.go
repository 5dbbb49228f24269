package sample

// Store holds three values.
type Store struct {
	a, b int
	c    string
}

// GetA returns a.
func (s *Store) GetA() int { return s.a }

// GetB returns b.
func (s *Store) GetB() int { return s.b }

// SetA sets a.
func (s *Store) SetA(v int) { s.a = v }

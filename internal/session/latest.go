package session

import "sync"

// Sequencer hands out increasing sequence numbers and tells whether a number
// is still the latest one issued.
type Sequencer struct {
	mu  sync.Mutex
	seq uint64
}

func (s *Sequencer) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

func (s *Sequencer) IsCurrent(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return seq == s.seq
}

// Latest is a render slot that only accepts the value of the most recently
// started fetch.
type Latest[T any] struct {
	mu    sync.Mutex
	seq   uint64
	value T
	set   bool
}

func (l *Latest[T]) Begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	return l.seq
}

// Commit stores v if seq is still the latest. Otherwise it returns false
// and the slot keeps its value.
func (l *Latest[T]) Commit(seq uint64, v T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.seq {
		return false
	}
	l.value = v
	l.set = true
	return true
}

func (l *Latest[T]) IsCurrent(seq uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return seq == l.seq
}

// Value returns the last committed value.
func (l *Latest[T]) Value() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.set
}

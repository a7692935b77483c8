package chat

import "sync"

// Memory is an append-only conversation buffer for one session. Appends are
// serialized by the mutex so concurrent turns cannot interleave a partial
// exchange. When maxTurns > 0 the buffer keeps only the newest maxTurns
// exchanges, dropping oldest-first.
type Memory struct {
	mu       sync.Mutex
	turns    []Turn
	maxTurns int
}

// NewMemory constructs a Memory. maxTurns <= 0 means unbounded.
func NewMemory(maxTurns int) *Memory {
	return &Memory{maxTurns: maxTurns}
}

// AppendTurn records one completed exchange. The user message and assistant
// reply are committed together; a turn that fails mid-flight never reaches
// this method, so memory always holds whole exchanges.
func (m *Memory) AppendTurn(user, assistant string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = append(m.turns, Turn{User: user, Assistant: assistant})
	if m.maxTurns > 0 && len(m.turns) > m.maxTurns {
		overflow := len(m.turns) - m.maxTurns
		m.turns = append([]Turn(nil), m.turns[overflow:]...)
	}
}

// History returns a copy of the recorded turns, oldest first. Mutating the
// returned slice does not affect the buffer.
func (m *Memory) History() []Turn {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Len returns the number of recorded turns.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.turns)
}

// Clear discards all recorded turns.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = nil
}

package serialsink

import (
	"bytes"
	"sync"
)

// MockPort implements Porter for testing. Writes are captured in memory.
type MockPort struct {
	mu sync.Mutex

	buf bytes.Buffer

	// WriteError is returned by every Write call if set.
	WriteError error
	// CloseError is returned by Close if set.
	CloseError error

	closed bool
}

// NewMockPort returns an empty MockPort.
func NewMockPort() *MockPort {
	return &MockPort{}
}

func (m *MockPort) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteError != nil {
		return 0, m.WriteError
	}
	return m.buf.Write(p)
}

func (m *MockPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.CloseError
}

// Written returns a copy of everything written so far.
func (m *MockPort) Written() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.buf.Bytes()...)
}

// IsClosed reports whether Close was called.
func (m *MockPort) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

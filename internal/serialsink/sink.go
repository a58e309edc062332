// Package serialsink writes encoded frames to a serial device, one text line
// per frame:
//
//	FRAME <hex-encoded wire bytes>\n
package serialsink

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"

	"github.com/banshee-data/sensorframe/internal/frame"
	"github.com/banshee-data/sensorframe/internal/monitoring"
	"github.com/banshee-data/sensorframe/internal/wire"
)

// LinePrefix starts every frame line.
const LinePrefix = "FRAME "

var (
	// ErrSinkClosed is returned by Send after Close.
	ErrSinkClosed = errors.New("serial sink closed")
	// ErrWriteFailed wraps port write errors.
	ErrWriteFailed = errors.New("failed to write to serial port")
)

var logf = monitoring.Prefixed("serialsink")

// Porter is the part of a serial port the sink needs.
type Porter interface {
	io.Writer
	io.Closer
}

// Sink serialises frames onto a Porter. It is safe for concurrent use.
type Sink struct {
	mu     sync.Mutex
	port   Porter
	closed bool
	sent   int
}

// NewSink wraps an already-open port.
func NewSink(port Porter) *Sink {
	return &Sink{port: port}
}

// OpenSink opens the serial device at path with opts.
func OpenSink(path string, opts PortOptions) (*Sink, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", path, err)
	}
	logf("opened %s at %d baud", path, mode.BaudRate)
	return NewSink(port), nil
}

// FormatLine renders f as a single sink line including the trailing newline.
func FormatLine(f *frame.Frame) []byte {
	encoded := wire.Encode(f)
	line := make([]byte, 0, len(LinePrefix)+hex.EncodedLen(len(encoded))+1)
	line = append(line, LinePrefix...)
	line = hex.AppendEncode(line, encoded)
	return append(line, '\n')
}

// Send writes one frame line.
func (s *Sink) Send(f *frame.Frame) error {
	line := FormatLine(f)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	if _, err := s.port.Write(line); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	s.sent++
	return nil
}

// Sent returns how many frames were written.
func (s *Sink) Sent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}

// Close closes the underlying port. Closing twice is a no-op.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	logf("closing after %d frames", s.sent)
	return s.port.Close()
}

package source

import (
	"context"
	"io"
)

// MockSource is a Source implementation for testing.
type MockSource struct {
	Frames  []Frame
	NextErr error
	Closed  bool
}

// NewMockSource creates a new MockSource yielding frames in order.
func NewMockSource(frames ...Frame) *MockSource {
	return &MockSource{Frames: frames}
}

// Next returns the next configured frame, then NextErr or io.EOF.
func (m *MockSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if len(m.Frames) == 0 {
		if m.NextErr != nil {
			return Frame{}, m.NextErr
		}
		return Frame{}, io.EOF
	}
	f := m.Frames[0]
	m.Frames = m.Frames[1:]
	return f, nil
}

// Close marks the source as closed.
func (m *MockSource) Close() error {
	m.Closed = true
	return nil
}

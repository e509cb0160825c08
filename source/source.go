// Package source provides the Ethernet frames the monitor decodes.
package source

import (
	"context"
	"time"
)

// Frame is a captured Ethernet frame.
type Frame struct {
	Data      []byte
	Timestamp time.Time
	// Origin names where the frame came from (interface or file).
	Origin string
}

// Source yields captured frames.
type Source interface {
	// Next blocks until a frame is available. It returns io.EOF when the
	// source is exhausted and ctx.Err() when ctx is done.
	Next(ctx context.Context) (Frame, error)

	// Close releases any resources held by the source.
	Close() error
}

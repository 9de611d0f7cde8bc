// Package capture acquires raw encoded images from a file or a camera device.
package capture

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
)

var (
	ErrNoImage           = errors.New("no image captured")
	ErrCameraUnavailable = errors.New("camera unavailable")
	ErrNoFrame           = errors.New("camera returned no frame")
)

// Camera is the device capability: availability check plus a frame grab.
// Implementations may prompt the user for device permission.
type Camera interface {
	Available(ctx context.Context) bool
	GrabFrame(ctx context.Context) ([]byte, error)
}

// FromFile reads an encoded image from disk.
func FromFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrNoImage
	}
	if len(b) == 0 {
		return nil, ErrNoImage
	}
	return b, nil
}

// FromReader reads an encoded image from r until EOF.
func FromReader(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrNoImage
	}
	if len(b) == 0 {
		return nil, ErrNoImage
	}
	return b, nil
}

// Prober wraps a Camera and probes device access exactly once per session.
// After a failed probe every Capture fails fast without a grab attempt.
type Prober struct {
	cam       Camera
	once      sync.Once
	available bool
}

func NewProber(cam Camera) *Prober {
	return &Prober{cam: cam}
}

func (p *Prober) Available(ctx context.Context) bool {
	p.once.Do(func() {
		if p.cam == nil {
			return
		}
		p.available = p.cam.Available(ctx)
	})
	return p.available
}

// Capture grabs the current frame from the probed camera.
func (p *Prober) Capture(ctx context.Context) ([]byte, error) {
	if !p.Available(ctx) {
		return nil, ErrCameraUnavailable
	}
	frame, err := p.cam.GrabFrame(ctx)
	if err != nil {
		return nil, err
	}
	if len(frame) == 0 {
		return nil, ErrNoFrame
	}
	return frame, nil
}

package capture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCamera struct {
	available      bool
	availableCalls int
	frame          []byte
	grabErr        error
	grabCalls      int
}

func (c *fakeCamera) Available(ctx context.Context) bool {
	c.availableCalls++
	return c.available
}

func (c *fakeCamera) GrabFrame(ctx context.Context) ([]byte, error) {
	c.grabCalls++
	return c.frame, c.grabErr
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img.jpg")
	require.NoError(t, os.WriteFile(path, []byte{0xFF, 0xD8, 0x01}, 0o600))

	b, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8, 0x01}, b)
}

func TestFromFileMissingOrEmpty(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "nope.jpg"))
	assert.ErrorIs(t, err, ErrNoImage)

	empty := filepath.Join(t.TempDir(), "empty.jpg")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, err = FromFile(empty)
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestProberProbesOnce(t *testing.T) {
	cam := &fakeCamera{available: true, frame: []byte{1, 2, 3}}
	p := NewProber(cam)
	ctx := context.Background()

	assert.True(t, p.Available(ctx))
	assert.True(t, p.Available(ctx))
	assert.Equal(t, 1, cam.availableCalls, "availability must be probed once per session")

	frame, err := p.Capture(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, frame)
}

func TestProberFailedProbeFailsFast(t *testing.T) {
	cam := &fakeCamera{available: false}
	p := NewProber(cam)
	ctx := context.Background()

	assert.False(t, p.Available(ctx))

	// A later change in the device state must not matter: the probe result
	// is cached for the whole session.
	cam.available = true
	_, err := p.Capture(ctx)
	assert.ErrorIs(t, err, ErrCameraUnavailable)
	assert.Equal(t, 0, cam.grabCalls, "no grab attempt after a failed probe")
}

func TestProberNilCamera(t *testing.T) {
	p := NewProber(nil)
	_, err := p.Capture(context.Background())
	assert.ErrorIs(t, err, ErrCameraUnavailable)
}

func TestProberEmptyFrame(t *testing.T) {
	cam := &fakeCamera{available: true, frame: nil}
	p := NewProber(cam)
	_, err := p.Capture(context.Background())
	assert.ErrorIs(t, err, ErrNoFrame)
}

func TestProberGrabError(t *testing.T) {
	grabErr := errors.New("device wedged")
	cam := &fakeCamera{available: true, grabErr: grabErr}
	p := NewProber(cam)
	_, err := p.Capture(context.Background())
	assert.ErrorIs(t, err, grabErr)
}

// ABOUTME: Resampler context holding conversion options for one decoded stream
// ABOUTME: Validates layout, rate and sample format before playback starts
package resample

import (
	"errors"
	"fmt"

	"github.com/NotCompsky/playwav/pkg/audio"
)

var ErrInvalidOptions = errors.New("invalid resampler options")

// Options describes a conversion between two stream formats
type Options struct {
	InLayout  audio.ChannelLayout
	OutLayout audio.ChannelLayout
	InRate    int
	OutRate   int
	InFormat  audio.SampleFormat
	OutFormat audio.SampleFormat
}

// Context is reused across streams: SetOptions then Init for each one
type Context struct {
	opts        Options
	initialized bool
}

// NewContext creates an empty resampler context
func NewContext() *Context {
	return &Context{}
}

// SetOptions replaces the options and marks the context uninitialized
func (c *Context) SetOptions(opts Options) {
	c.opts = opts
	c.initialized = false
}

// Init checks the options
func (c *Context) Init() error {
	o := c.opts
	switch {
	case o.InLayout == 0 || o.OutLayout == 0:
		return fmt.Errorf("%w: channel layout %#x -> %#x", ErrInvalidOptions, uint64(o.InLayout), uint64(o.OutLayout))
	case o.InRate < 1 || o.OutRate < 1:
		return fmt.Errorf("%w: sample rate %d -> %d", ErrInvalidOptions, o.InRate, o.OutRate)
	case !o.InFormat.Valid() || !o.OutFormat.Valid():
		return fmt.Errorf("%w: sample format %v -> %v", ErrInvalidOptions, o.InFormat, o.OutFormat)
	}
	c.initialized = true
	return nil
}

// Close forgets the options
func (c *Context) Close() {
	c.opts = Options{}
	c.initialized = false
}

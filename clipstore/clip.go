// Package clipstore loads a directory of short video clips
// into memory and samples clips for training.
//
// Clips are stored as frame-major tensors of RGB pixels in
// [0, 1], where each frame is row-major depth-minor.
package clipstore

import (
	"math/rand"

	"github.com/unixpickle/anyvec"
)

// Channels is the number of color channels in every clip.
const Channels = 3

// A Clip is a decoded video clip.
type Clip struct {
	Frames int
	Width  int
	Height int

	// Data stores Frames*Height*Width*Channels pixels.
	Data anyvec.Vector
}

// FrameSize returns the number of components per frame.
func (c *Clip) FrameSize() int {
	return c.Width * c.Height * Channels
}

// A Corpus is an ordered collection of clips.
type Corpus struct {
	Clips []*Clip
}

// Len returns the number of clips.
func (c *Corpus) Len() int {
	return len(c.Clips)
}

// SampleClip returns a uniformly random clip.
func (c *Corpus) SampleClip(rng *rand.Rand) *Clip {
	return c.Clips[rng.Intn(len(c.Clips))]
}

// Lengths returns the frame count of every clip, in corpus
// order.
func (c *Corpus) Lengths() []int {
	res := make([]int, len(c.Clips))
	for i, clip := range c.Clips {
		res[i] = clip.Frames
	}
	return res
}

// SampleLength draws a frame count from the empirical
// distribution of clip lengths.
func (c *Corpus) SampleLength(rng *rand.Rand) int {
	return c.SampleClip(rng).Frames
}

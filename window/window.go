// Package window crops fixed-length temporal windows out
// of frame-major tensors.
//
// A frame-major tensor stores one frame after another,
// where every frame has the same number of components.
// Both video clips and per-frame latent codes use this
// layout.
package window

import (
	"fmt"
	"math/rand"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/vidgan/vidnet"
)

// An InvalidWindowError is returned when a sequence is
// too short to hold a window.
type InvalidWindowError struct {
	Frames int
	Window int
}

// Error returns the error message.
func (i *InvalidWindowError) Error() string {
	return fmt.Sprintf("invalid window: %d frames cannot hold a window of %d (need %d)",
		i.Frames, i.Window, i.Window+1)
}

// Offset picks a uniformly random start frame for a
// window of length size in a sequence of total frames.
//
// The start is drawn from [0, total-size-1], so at least
// one frame always follows the window.
// Sequences shorter than size+1 frames are rejected.
func Offset(rng *rand.Rand, total, size int) (int, error) {
	if size <= 0 || total < size+1 {
		return 0, &InvalidWindowError{Frames: total, Window: size}
	}
	return rng.Intn(total - size), nil
}

// Trim crops a random window out of a frame-major vector
// with total frames of frameSize components each.
//
// The result is a new vector of size*frameSize
// components.
func Trim(rng *rand.Rand, vec anyvec.Vector, frameSize, size int) (anyvec.Vector, error) {
	if vec.Len()%frameSize != 0 {
		panic("frame size must divide vector length")
	}
	total := vec.Len() / frameSize
	start, err := Offset(rng, total, size)
	if err != nil {
		return nil, err
	}
	return vec.Slice(start*frameSize, (start+size)*frameSize), nil
}

// TrimRes crops the same window out of every sample in a
// batch of frame-major tensors.
//
// Each sample in the batch has total frames, and the
// window covers frames [start, start+size).
// Gradients flow back into the cropped frames only.
func TrimRes(in anydiff.Res, batch, total, frameSize, start, size int) anydiff.Res {
	if in.Output().Len() != batch*total*frameSize {
		panic("incorrect input size")
	}
	if start < 0 || start+size > total {
		panic("window out of bounds")
	}
	table := make([]int, 0, batch*size*frameSize)
	for b := 0; b < batch; b++ {
		offset := (b*total + start) * frameSize
		for i := 0; i < size*frameSize; i++ {
			table = append(table, offset+i)
		}
	}
	return vidnet.Gather(in, table)
}
